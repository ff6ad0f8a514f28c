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
	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize ranks of calls in classify results",
	Long: `Summarize ranks of calls in classify results

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startLog(opt)()

		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		logInputFiles(opt, files)

		counter := newRankCounter()
		for _, file := range files {
			checkError(errors.Wrap(readCallRecords(file, counter.Add), file))
		}

		outfh, closeOut := openOutput(opt, outFile)
		defer closeOut()

		tbl, err := prettytable.NewTable([]prettytable.Column{
			{Header: "rank"},
			{Header: "queries", AlignRight: true},
			{Header: "percentage", AlignRight: true},
		}...)
		checkError(err)
		tbl.Separator = "  "

		for _, label := range rankLabels {
			tbl.AddRow(label, humanize.Comma(int64(counter.counts[label])), percentage(counter.counts[label], counter.total))
		}
		tbl.AddRow("total", humanize.Comma(int64(counter.total)), percentage(counter.total, counter.total))
		outfh.Write(tbl.Bytes())
	},
}

// labels of calls in classify output, in the order of output
var rankLabels = []string{"Species", "Genus", "Phylum", "Unknown"}

type rankCounter struct {
	counts map[string]int
	total  int
}

func newRankCounter() *rankCounter {
	return &rankCounter{counts: make(map[string]int, len(rankLabels))}
}

// Add counts the call label of a record, unexpected labels count as Unknown.
func (c *rankCounter) Add(r *callRecord) {
	c.total++
	switch r.Label {
	case "Species", "Genus", "Phylum":
		c.counts[r.Label]++
	default:
		c.counts["Unknown"]++
	}
}

func init() {
	RootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)
}
