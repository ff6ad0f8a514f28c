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
	"os"
	"path/filepath"
	"regexp"
	"sync"

	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/forest"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/hits"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Assign query sequences to species, genus or phylum",
	Long: `Assign query sequences to species, genus or phylum

Input:
  Blast-like tab-delimited hits of genes of query sequences, at least 15
  columns (0-based):
     2. percent identity
    11. bitscore
    12. query sequence name
    13. gene name
    14. reference gene ID
  Consecutive lines of the same query belong to one query sequence, and
  consecutive lines of the same gene belong to one gene.

Steps:
  1. Keeping the first N hits of each gene (-n/--max-hits).
  2. Curating hits of each gene: the hit with the lowest bitscore is
     removed if the largest relative bitscore gap between adjacent hits
     exceeds -g/--max-gap. Disable with --no-curation.
  3. Scoring hits with identity histograms and substitution matrix
     scores of the gene clusters of reference genes, weighted by
     -w/--weights.
  4. Normalizing scores of taxa of each rank into likelihoods.
  5. Calling the deepest rank of species, genus and phylum whose best
     likelihood is greater than -t/--threshold.

Output (two lines per query):
  query  rank  likelihood  taxid
  lineage
  Unclassified queries are "Unknown" with "NA" fields.

Weights file (YAML), weights of phylum, genus and species:
  histogram: [1, 1, 1]
  substitution: [1, 1, 1]

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startLog(opt)()

		var err error

		threshold := getFlagFloat64(cmd, "threshold")
		maxHits := getFlagPositiveInt(cmd, "max-hits")
		maxGap := getFlagNonNegativeFloat64(cmd, "max-gap")
		noCuration := getFlagBool(cmd, "no-curation")
		weightsFile := getFlagString(cmd, "weights")
		chunkSize := getFlagPositiveInt(cmd, "chunk-size")
		outFile := getFlagString(cmd, "out-file")
		inDir := getFlagString(cmd, "in-dir")
		pattern := getFlagString(cmd, "file-regexp")
		noProgress := getFlagBool(cmd, "no-progress")

		lib := getLibFiles(cmd)

		weights := forest.DefaultWeights()
		if weightsFile != "" {
			weights, err = forest.WeightsFromFile(weightsFile)
			checkError(errors.Wrap(err, weightsFile))
		}

		// ---------------------------------------------------------------

		if opt.Verbose || opt.Log2File {
			log.Infof("mytaxa v%s", VERSION)
			log.Info("  https://github.com/shenwei356/mytaxa")
			log.Info()

			log.Info("checking input files ...")
		}

		var files []string
		if inDir != "" {
			re, err := regexp.Compile(pattern)
			checkError(errors.Wrapf(err, "invalid --file-regexp: %s", pattern))
			files, err = getFileListFromDir(inDir, re, opt.NumCPUs)
			checkError(errors.Wrapf(err, "walking dir: %s", inDir))
			if len(files) == 0 {
				checkError(fmt.Errorf("no files matching %s found in %s", pattern, inDir))
			}
			if len(args) > 0 {
				log.Warningf("files from cli arguments ignored when -I/--in-dir given")
			}
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		}
		logInputFiles(opt, files)

		outFileClean := filepath.Clean(outFile)
		for _, file := range files {
			if !isStdin(file) && filepath.Clean(file) == outFileClean {
				checkError(fmt.Errorf("out file should not be one of the input file"))
			}
		}

		checkLibFile(lib.TaxonMap)
		checkLibFile(lib.Clusters)

		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("hits: ")
			log.Infof("  maximal hits per gene: %d", maxHits)
			if noCuration {
				log.Infof("  curation: disabled")
			} else {
				log.Infof("  maximal bitscore gap for curation: %f", maxGap)
			}
			log.Infof("scoring: ")
			log.Infof("  weights: %s", weights)
			log.Infof("  likelihood threshold: %f", threshold)
			log.Infof("reference library:")
			for _, item := range lib.list() {
				log.Infof("  %s: %s", item[0], item[1])
			}
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
		}

		// ---------------------------------------------------------------

		taxdb := loadDirectory(opt, lib)

		if opt.Verbose || opt.Log2File {
			log.Info("reading hits ...")
		}
		queries := make([]*hits.QuerySequence, 0, 1024)
		var nHits int
		for _, file := range files {
			_queries, err := hits.ReadQueries(file, maxHits, opt.NumCPUs, chunkSize)
			checkError(errors.Wrap(err, file))
			for _, q := range _queries {
				nHits += q.NumHits()
			}
			queries = append(queries, _queries...)
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("  %s hits of %s queries loaded", humanize.Comma(int64(nHits)), humanize.Comma(int64(len(queries))))
		}

		if !noCuration {
			n := hits.Curate(queries, maxGap)
			if opt.Verbose || opt.Log2File {
				log.Infof("  %s hits removed by curation", humanize.Comma(int64(n)))
			}
		}

		if opt.Verbose || opt.Log2File {
			log.Info("mapping reference genes to taxids ...")
		}
		n, err := hits.LoadTaxids(lib.TaxonMap, queries, opt.NumCPUs)
		checkError(errors.Wrap(err, lib.TaxonMap))
		if opt.Verbose || opt.Log2File {
			log.Infof("  %s reference genes mapped", humanize.Comma(int64(n)))
			log.Info("loading gene clusters ...")
		}
		n, err = hits.LoadClusters(lib.Clusters, queries)
		checkError(errors.Wrap(err, lib.Clusters))
		if opt.Verbose || opt.Log2File {
			log.Infof("  %s reference genes in gene clusters", humanize.Comma(int64(n)))
			log.Info()
			log.Info("classifying ...")
		}

		// ---------------------------------------------------------------

		outfh, closeOut := openOutput(opt, outFile)
		defer closeOut()

		showProgress := opt.Verbose && !noProgress && len(queries) > 0

		var pbs *mpb.Progress
		var bar *mpb.Bar
		if showProgress {
			pbs = mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(queries)),
				mpb.BarStyle("[=>-]<+"),
				mpb.PrependDecorators(
					decor.Name("classified queries: ", decor.WC{W: len("classified queries: "), C: decor.DidentRight}),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncWidth),
				),
			)
		}

		aggregator := forest.NewAggregator(taxdb, weights)
		classifier := forest.NewClassifier(taxdb, threshold)

		var counts [forest.CategorySpecies + 1]int
		warned := make(map[uint32]struct{}, 8)

		ch := make(chan classifyResult, opt.NumCPUs)
		done := make(chan int)

		go func() {
			var id int // for keeping order
			buf := make(map[int]classifyResult, 128)
			var r classifyResult
			var ok bool
			var taxid uint32

			for r = range ch {
				buf[r.id] = r

				for {
					if r, ok = buf[id]; !ok {
						break
					}

					for _, taxid = range r.missing {
						if _, ok = warned[taxid]; !ok {
							log.Warningf("taxid not found in taxonomy: %d", taxid)
							warned[taxid] = struct{}{}
						}
					}
					if r.err != nil {
						log.Warningf("%s: %s", r.call.Query, r.err)
					}

					r.call.Write(outfh)
					counts[r.call.Category]++

					if showProgress {
						bar.Increment()
					}

					delete(buf, id)
					id++
				}
			}
			done <- 1
		}()

		chIdx := make(chan int, opt.NumCPUs)
		var wg sync.WaitGroup
		for i := 0; i < opt.NumCPUs; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var q *hits.QuerySequence
				var f *forest.Forest
				for i := range chIdx {
					q = queries[i]
					f = aggregator.Aggregate(q)
					call, err := classifier.Classify(q.Name, f)
					ch <- classifyResult{id: i, call: call, missing: f.Missing, err: err}
				}
			}()
		}

		for i := range queries {
			chIdx <- i
		}
		close(chIdx)
		wg.Wait()
		close(ch)
		<-done

		if showProgress {
			pbs.Wait()
		}

		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("%s queries classified:", humanize.Comma(int64(len(queries))))
			for _, c := range []forest.Category{forest.CategorySpecies, forest.CategoryGenus, forest.CategoryPhylum, forest.CategoryRoot} {
				label := c.Label()
				if c == forest.CategoryRoot {
					label = "Unknown"
				}
				log.Infof("  %-7s: %s (%s)", label, humanize.Comma(int64(counts[c])), percentage(counts[c], len(queries)))
			}
			if len(warned) > 0 {
				log.Warningf("%d taxids of reference genes not found in taxonomy", len(warned))
			}
		}
	},
}

// classifyResult is the result of a query, id is its index in input.
type classifyResult struct {
	id      int
	call    forest.Call
	missing []uint32
	err     error
}

// percentage formats n/total as a percentage.
func percentage(n int, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}

func init() {
	RootCmd.AddCommand(classifyCmd)

	addLibFlags(classifyCmd, true)

	classifyCmd.Flags().StringP("out-file", "o", "-", `out file, supports and recommends a ".gz" suffix ("-" for stdout)`)
	classifyCmd.Flags().StringP("in-dir", "I", "", "directory containing hit files, searched recursively, files from cli arguments are ignored")
	classifyCmd.Flags().StringP("file-regexp", "r", `\.(blast|m8|tsv|txt)(\.gz)?$`, "regular expression for matching hit files in -I/--in-dir")
	classifyCmd.Flags().IntP("chunk-size", "", 5000, "number of lines to process for each thread, and 4 threads is fast enough")

	classifyCmd.Flags().IntP("max-hits", "n", 10, "maximal number of hits kept for each gene")
	classifyCmd.Flags().Float64P("max-gap", "g", 0.5, "maximal relative bitscore gap between adjacent hits of a gene, above which the weakest hit is removed")
	classifyCmd.Flags().BoolP("no-curation", "", false, "do not curate hits")
	classifyCmd.Flags().StringP("weights", "w", "", "YAML file of weights of identity histogram scores and substitution matrix scores")
	classifyCmd.Flags().Float64P("threshold", "t", 0.5, "minimal likelihood (exclusive) of a call")
	classifyCmd.Flags().BoolP("no-progress", "", false, "do not show progress bar")
}
