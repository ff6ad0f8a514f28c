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
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"
	"github.com/zeebo/xxh3"
)

var dbInfoCmd = &cobra.Command{
	Use:   "db-info",
	Short: "Print information of reference library files",
	Long: `Print information of reference library files

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		defer startLog(opt)()

		outFile := getFlagString(cmd, "out-file")
		checksum := getFlagBool(cmd, "checksum")
		lib := getLibFiles(cmd)

		outfh, closeOut := openOutput(opt, outFile)
		defer closeOut()

		columns := []prettytable.Column{
			{Header: "file"},
			{Header: "path"},
			{Header: "existed", AlignRight: true},
			{Header: "size", AlignRight: true},
		}
		if checksum {
			columns = append(columns, prettytable.Column{Header: "xxh3", AlignRight: true})
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "

		var info libFileInfo
		for _, item := range lib.list() {
			info = statLibFile(item[1], checksum)
			if info.err != nil {
				checkError(fmt.Errorf("%s: %s", item[1], info.err))
			}

			row := []interface{}{item[0], item[1], boolStr("yes", "no", info.existed), "-"}
			if info.existed {
				row[3] = humanize.Bytes(uint64(info.size))
			}
			if checksum {
				if info.existed {
					row = append(row, fmt.Sprintf("%016x", info.digest))
				} else {
					row = append(row, "-")
				}
			}
			tbl.AddRow(row...)
		}
		outfh.Write(tbl.Bytes())
	},
}

type libFileInfo struct {
	existed bool
	size    int64
	digest  uint64
	err     error
}

// statLibFile returns the size and the optional xxh3 digest of a file.
func statLibFile(file string, checksum bool) libFileInfo {
	var info libFileInfo

	fi, err := os.Stat(file)
	if err != nil {
		if !os.IsNotExist(err) {
			info.err = err
		}
		return info
	}
	info.existed = true
	info.size = fi.Size()

	if !checksum {
		return info
	}

	fh, err := os.Open(file)
	if err != nil {
		info.err = err
		return info
	}
	defer fh.Close()

	h := xxh3.New()
	if _, err = io.Copy(h, fh); err != nil {
		info.err = err
		return info
	}
	info.digest = h.Sum64()
	return info
}

func boolStr(sTrue, sFalse string, v bool) string {
	if v {
		return sTrue
	}
	return sFalse
}

func init() {
	RootCmd.AddCommand(dbInfoCmd)

	addLibFlags(dbInfoCmd, true)

	dbInfoCmd.Flags().StringP("out-file", "o", "-", `out file ("-" for stdout)`)
	dbInfoCmd.Flags().BoolP("checksum", "c", false, "compute xxh3 digests of files")
}
