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

// Package hits holds homology hits of query sequences, and loads them
// from blast-like tabular files and the reference libraries.
package hits

import (
	"fmt"
	"strings"

	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
)

// Hit is a match of a gene against a reference protein.
type Hit struct {
	RefID    uint64 // identifier of the reference, e.g., GI number
	Identity float64
	Bitscore float64

	Taxid   uint32 // 0 for unknown
	Cluster uint32 // 0 for unmapped

	// scores at phylum, genus and species
	DualHist [taxon.NumRanks]float64
	SubMTX   [taxon.NumRanks]float64
}

// Gene is a predicted gene of a query sequence, with its hits
// in the order of the input.
type Gene struct {
	Name string
	Hits []Hit
}

// QuerySequence is a query sequence with its genes.
type QuerySequence struct {
	Name  string
	Genes []*Gene
}

// NumHits returns the number of hits of all genes.
func (q *QuerySequence) NumHits() int {
	var n int
	for _, g := range q.Genes {
		n += len(g.Hits)
	}
	return n
}

func (q QuerySequence) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "query: %s\n", q.Name)
	for i, g := range q.Genes {
		fmt.Fprintf(&buf, "  gene %d: %s\n", i, g.Name)
		for _, h := range g.Hits {
			fmt.Fprintf(&buf, "    %d %g %g %d %g:%g:%g %g:%g:%g\n",
				h.RefID, h.Identity, h.Bitscore, h.Taxid,
				h.DualHist[0], h.DualHist[1], h.DualHist[2],
				h.SubMTX[0], h.SubMTX[1], h.SubMTX[2])
		}
	}
	return buf.String()
}

// refIDs returns the set of reference identifiers of all hits.
func refIDs(queries []*QuerySequence) map[uint64]uint32 {
	ids := make(map[uint64]uint32, 1024)
	for _, q := range queries {
		for _, g := range q.Genes {
			for _, h := range g.Hits {
				if h.RefID > 0 {
					ids[h.RefID] = 0
				}
			}
		}
	}
	return ids
}
