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

package hits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shenwei356/breader"
)

// ErrInvalidFormat means a hit line has too few columns.
var ErrInvalidFormat = errors.New("hits: invalid input format, at least 15 tab-delimited columns needed")

// columns of the blast-like input, 0-based.
const (
	colIdentity = 2
	colBitscore = 11
	colQuery    = 12
	colGene     = 13
	colRefID    = 14

	numFields = 15
)

type hitRecord struct {
	query string
	gene  string
	hit   Hit
}

// parseFloat returns 0 for malformed values.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRefID returns 0 for malformed or non-positive values.
func parseRefID(s string) uint64 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadQueries reads query sequences from a blast-like tabular file
// (blast -m 8/-outfmt 6, plus three columns: query name, gene name
// and reference identifier).
// Consecutive lines of the same query belong to one query sequence,
// consecutive lines of the same gene belong to one gene, and only
// the first maxHits hits of a gene are kept.
func ReadQueries(file string, maxHits int, threads int, chunkSize int) ([]*QuerySequence, error) {
	pool := &sync.Pool{New: func() interface{} {
		tmp := make([]string, numFields+1)
		return &tmp
	}}

	parseFunc := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}

		items := pool.Get().(*[]string)
		defer pool.Put(items)

		stringSplitNByByte(line, '\t', numFields+1, items)
		if len(*items) < numFields {
			return nil, false, fmt.Errorf("%w: %s", ErrInvalidFormat, line)
		}

		r := hitRecord{
			query: (*items)[colQuery],
			gene:  (*items)[colGene],
			hit: Hit{
				Identity: parseFloat((*items)[colIdentity]),
				Bitscore: parseFloat((*items)[colBitscore]),
				RefID:    parseRefID((*items)[colRefID]),
			},
		}
		return r, true, nil
	}

	if threads < 1 {
		threads = 1
	}
	reader, err := breader.NewBufferedReader(file, threads, chunkSize, parseFunc)
	if err != nil {
		return nil, fmt.Errorf("hits: %s", err)
	}

	queries := make([]*QuerySequence, 0, 1024)
	var q *QuerySequence
	var g *Gene
	var r hitRecord
	var data interface{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}

		for _, data = range chunk.Data {
			r = data.(hitRecord)

			if q == nil || q.Name != r.query { // new query
				q = &QuerySequence{Name: r.query, Genes: make([]*Gene, 0, 8)}
				queries = append(queries, q)
				g = nil
			}
			if g == nil || g.Name != r.gene { // new gene
				g = &Gene{Name: r.gene, Hits: make([]Hit, 0, maxHits)}
				q.Genes = append(q.Genes, g)
			}
			if len(g.Hits) < maxHits {
				g.Hits = append(g.Hits, r.hit)
			}
		}
	}

	return queries, nil
}

// stringSplitNByByte splits s into at most n fields, reusing a.
func stringSplitNByByte(s string, sep byte, n int, a *[]string) {
	*a = (*a)[:cap(*a)]
	n--
	i := 0
	for i < n {
		m := strings.IndexByte(s, sep)
		if m < 0 {
			break
		}
		(*a)[i] = s[:m]
		s = s[m+1:]
		i++
	}
	(*a)[i] = s

	(*a) = (*a)[:i+1]
}
