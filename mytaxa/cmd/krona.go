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
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
	"github.com/zeebo/wyhash"
)

var kronaCmd = &cobra.Command{
	Use:   "krona",
	Short: "Convert classify results to the input of Krona",
	Long: `Convert classify results to the input of Krona

Identical lineages are counted, and rank tags (e.g., "<genus>") are removed.
Output is tab-delimited: count, then names of the lineage from root to leaf,
sorted by count in descending order. Unclassified queries are counted as "NA".

Create the chart with ktImportText of KronaTools:
    ktImportText -o result.html result.krona.tsv

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startLog(opt)()

		outFile := getFlagString(cmd, "out-file")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		logInputFiles(opt, files)

		counter := newLineageCounter()
		for _, file := range files {
			checkError(errors.Wrap(readCallRecords(file, counter.Add), file))
		}
		records := counter.Records()

		if opt.Verbose || opt.Log2File {
			log.Infof("%d distinct lineages of %d queries", len(records), counter.total)
		}

		outfh, closeOut := openOutput(opt, outFile)
		defer closeOut()

		for _, r := range records {
			outfh.WriteString(strconv.Itoa(r.Count))
			for _, col := range kronaColumns(r.Lineage) {
				outfh.WriteByte('\t')
				outfh.WriteString(col)
			}
			outfh.WriteByte('\n')
		}
	},
}

// lineageCount is the number of queries sharing a lineage.
type lineageCount struct {
	Lineage string
	Count   int
}

// lineageCounts are sorted by count in descending order, then by lineage.
type lineageCounts []*lineageCount

func (s lineageCounts) Len() int { return len(s) }
func (s lineageCounts) Less(i, j int) bool {
	if s[i].Count == s[j].Count {
		return s[i].Lineage < s[j].Lineage
	}
	return s[i].Count > s[j].Count
}
func (s lineageCounts) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

type lineageCounter struct {
	counts map[uint64]*lineageCount
	total  int
}

func newLineageCounter() *lineageCounter {
	return &lineageCounter{counts: make(map[uint64]*lineageCount, 1024)}
}

// Add counts the lineage of a record.
func (c *lineageCounter) Add(r *callRecord) {
	c.total++
	h := wyhash.HashString(r.Lineage, 1)
	if lc, ok := c.counts[h]; ok {
		lc.Count++
		return
	}
	c.counts[h] = &lineageCount{Lineage: r.Lineage, Count: 1}
}

// Records returns sorted lineage counts.
func (c *lineageCounter) Records() lineageCounts {
	records := make(lineageCounts, 0, len(c.counts))
	for _, lc := range c.counts {
		records = append(records, lc)
	}
	sorts.Quicksort(records)
	return records
}

// kronaColumns splits a lineage and removes rank tags.
func kronaColumns(lineage string) []string {
	cols := strings.Split(lineage, ";")
	for i, col := range cols {
		cols[i] = stripRankTag(col)
	}
	return cols
}

// stripRankTag removes the text from the first '<' to the last '>'
// if at least one character is enclosed.
func stripRankTag(s string) string {
	i := strings.IndexByte(s, '<')
	if i < 0 {
		return s
	}
	j := strings.LastIndexByte(s, '>')
	if j <= i+1 {
		return s
	}
	return s[:i] + s[j+1:]
}

func init() {
	RootCmd.AddCommand(kronaCmd)

	kronaCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)
}
