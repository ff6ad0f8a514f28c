// Copyright © 2023 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"

	humanize "github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

// default reference library directory and file names
const (
	defaultDBDir = "~/.mytaxa/db"

	defaultNodesFile    = "ncbiNodes.lib"
	defaultNamesFile    = "ncbiSciNames.lib"
	defaultTaxonMapFile = "geneTaxon.lib"
	defaultClustersFile = "geneInfo.lib"
)

// LibFiles are paths of reference library files.
type LibFiles struct {
	Nodes    string
	Names    string
	TaxonMap string
	Clusters string
}

// Labels and paths in a fixed order.
func (l *LibFiles) list() [][2]string {
	return [][2]string{
		{"nodes", l.Nodes},
		{"names", l.Names},
		{"gene-taxid", l.TaxonMap},
		{"gene-cluster", l.Clusters},
	}
}

func addLibFlags(cmd *cobra.Command, all bool) {
	cmd.Flags().StringP("db-dir", "d", defaultDBDir, "directory of reference library files")
	cmd.Flags().StringP("nodes", "", "", `taxonomy nodes file (default "<db-dir>/`+defaultNodesFile+`")`)
	cmd.Flags().StringP("names", "", "", `scientific names file (default "<db-dir>/`+defaultNamesFile+`")`)
	if all {
		cmd.Flags().StringP("taxid-map", "", "", `reference gene ID to taxid file (default "<db-dir>/`+defaultTaxonMapFile+`")`)
		cmd.Flags().StringP("clusters", "", "", `gene cluster file (default "<db-dir>/`+defaultClustersFile+`")`)
	}
}

// getLibFiles returns library files from flags added by addLibFlags.
func getLibFiles(cmd *cobra.Command) *LibFiles {
	dir, err := homedir.Expand(getFlagNonEmptyString(cmd, "db-dir"))
	checkError(errors.Wrap(err, "expanding --db-dir"))

	file := func(flag string, name string) string {
		if cmd.Flags().Lookup(flag) == nil {
			return ""
		}
		if f := getFlagString(cmd, flag); f != "" {
			return f
		}
		return filepath.Join(dir, name)
	}

	return &LibFiles{
		Nodes:    file("nodes", defaultNodesFile),
		Names:    file("names", defaultNamesFile),
		TaxonMap: file("taxid-map", defaultTaxonMapFile),
		Clusters: file("clusters", defaultClustersFile),
	}
}

// checkLibFile exits if a library file does not exist.
func checkLibFile(file string) {
	existed, err := pathutil.Exists(file)
	checkError(errors.Wrap(err, file))
	if !existed {
		checkError(fmt.Errorf("library file not found: %s", file))
	}
}

// loadDirectory loads the taxonomy nodes and names concurrently.
func loadDirectory(opt *Options, lib *LibFiles) *taxon.Directory {
	checkLibFile(lib.Nodes)
	checkLibFile(lib.Names)

	if opt.Verbose || opt.Log2File {
		log.Info("loading NCBI taxonomy information ...")
	}

	d := taxon.NewDirectory()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := d.LoadNodes(lib.Nodes, opt.NumCPUs)
		if err != nil {
			checkError(errors.Wrap(err, "loading taxonomy nodes"))
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("  %s nodes in %d ranks loaded", humanize.Comma(int64(d.NumNodes())), len(d.Ranks))
		}
	}()

	go func() {
		defer wg.Done()
		err := d.LoadNames(lib.Names)
		if err != nil {
			checkError(errors.Wrap(err, "loading taxonomy names"))
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("  %s names loaded", humanize.Comma(int64(d.NumNames())))
		}
	}()

	wg.Wait()

	return d
}
