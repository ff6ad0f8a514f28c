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
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
	"github.com/spf13/cobra"
)

var lcaCmd = &cobra.Command{
	Use:   "lca",
	Short: "Compute lowest common ancestors of pairs of taxids",
	Long: `Compute lowest common ancestors of pairs of taxids

Input:
  Two whitespace-delimited taxids per line.

Output (tab-delimited):
  taxid1, taxid2, lca
  The root (1) is the LCA of pairs sharing no ancestor, or containing
  taxids not found in the taxonomy.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startLog(opt)()

		outFile := getFlagString(cmd, "out-file")
		lib := getLibFiles(cmd)

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		logInputFiles(opt, files)

		taxdb := loadDirectory(opt, lib)

		outfh, closeOut := openOutput(opt, outFile)
		defer closeOut()

		fn := func(line string) (interface{}, bool, error) {
			items := strings.Fields(line)
			if len(items) == 0 || items[0][0] == '#' {
				return nil, false, nil
			}
			if len(items) < 2 {
				return nil, false, fmt.Errorf("two taxids needed: %s", line)
			}
			return [2]string{items[0], items[1]}, true, nil
		}

		var pair [2]string
		var lca uint32
		for _, file := range files {
			reader, err := breader.NewBufferedReader(file, opt.NumCPUs, 1000, fn)
			checkError(errors.Wrap(err, file))

			for chunk := range reader.Ch {
				checkError(errors.Wrap(chunk.Err, file))

				for _, data := range chunk.Data {
					pair = data.([2]string)
					lca, err = taxdb.LCA(taxon.ParseTaxid(pair[0]), taxon.ParseTaxid(pair[1]))
					if err != nil {
						log.Warning(err)
					}

					outfh.WriteString(pair[0])
					outfh.WriteByte('\t')
					outfh.WriteString(pair[1])
					outfh.WriteByte('\t')
					outfh.WriteString(strconv.FormatUint(uint64(lca), 10))
					outfh.WriteByte('\n')
				}
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(lcaCmd)

	addLibFlags(lcaCmd, false)

	lcaCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)
}
