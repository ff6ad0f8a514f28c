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
	"io"
	"strings"

	"github.com/shenwei356/xopen"
)

// callRecord is a record of classify output.
type callRecord struct {
	Query      string
	Label      string
	Likelihood string
	Taxid      string
	Lineage    string
}

// readCallRecords reads two-line records of classify output and calls fn
// for every record. Blank lines between records are skipped.
func readCallRecords(file string, fn func(r *callRecord)) error {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return err
	}
	defer fh.Close()

	var line string
	var items []string
	var r callRecord
	var header bool // header line read, waiting for the lineage line
	var lineNum int
	for {
		line, err = fh.ReadString('\n')
		if line != "" {
			lineNum++
			line = strings.TrimRight(line, "\r\n")

			if header {
				r.Lineage = line
				fn(&r)
				header = false
			} else if line != "" {
				items = strings.Split(line, "\t")
				if len(items) < 4 {
					return fmt.Errorf("invalid record at line %d, 4 tab-delimited columns needed: %s", lineNum, line)
				}
				r = callRecord{Query: items[0], Label: items[1], Likelihood: items[2], Taxid: items[3]}
				header = true
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}

	if header {
		return fmt.Errorf("truncated record of query: %s", r.Query)
	}
	return nil
}
