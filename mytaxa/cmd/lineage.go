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
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
	"github.com/spf13/cobra"
)

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Query lineages of taxids",
	Long: `Query lineages of taxids

Input:
  One taxid per line, only the first column (whitespace-delimited) is used.

Output (tab-delimited):
  taxid, rank, phylum taxid, genus taxid, species taxid, lineage
  Ranks missing in the lineage are empty. Taxids not found in the taxonomy
  are reported and have empty fields.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startLog(opt)()

		outFile := getFlagString(cmd, "out-file")
		noHeaderRow := getFlagBool(cmd, "no-header-row")
		lib := getLibFiles(cmd)

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		logInputFiles(opt, files)

		taxdb := loadDirectory(opt, lib)

		outfh, closeOut := openOutput(opt, outFile)
		defer closeOut()

		if !noHeaderRow {
			outfh.WriteString("taxid\trank\tphylum\tgenus\tspecies\tlineage\n")
		}

		fn := func(line string) (interface{}, bool, error) {
			items := strings.Fields(line)
			if len(items) == 0 || items[0][0] == '#' {
				return nil, false, nil
			}
			return items[0], true, nil
		}

		var s string
		var taxid uint32
		var node taxon.Node
		var ok bool
		var ranks [taxon.NumRanks]uint32
		var lineage string
		var r int
		for _, file := range files {
			reader, err := breader.NewBufferedReader(file, opt.NumCPUs, 1000, fn)
			checkError(errors.Wrap(err, file))

			for chunk := range reader.Ch {
				checkError(errors.Wrap(chunk.Err, file))

				for _, data := range chunk.Data {
					s = data.(string)
					taxid = taxon.ParseTaxid(s)
					if node, ok = taxdb.Node(taxid); !ok {
						log.Warningf("taxid not found in taxonomy: %s", s)
						outfh.WriteString(s + "\t\t\t\t\t\n")
						continue
					}

					ranks, err = taxdb.RanksAtThreeLevels(taxid)
					checkError(err)
					lineage, err = taxdb.RenderLineage(taxid)
					checkError(err)

					outfh.WriteString(s)
					outfh.WriteByte('\t')
					outfh.WriteString(node.Rank)
					for r = 0; r < taxon.NumRanks; r++ {
						outfh.WriteByte('\t')
						if ranks[r] > 0 {
							outfh.WriteString(strconv.FormatUint(uint64(ranks[r]), 10))
						}
					}
					outfh.WriteByte('\t')
					outfh.WriteString(lineage)
					outfh.WriteByte('\n')
				}
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(lineageCmd)

	addLibFlags(lineageCmd, false)

	lineageCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)
	lineageCmd.Flags().BoolP("no-header-row", "H", false, "do not print header row")
}
