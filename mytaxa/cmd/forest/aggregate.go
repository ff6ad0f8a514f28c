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

package forest

import (
	"github.com/shenwei356/mytaxa/mytaxa/cmd/hits"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
)

// LineageResolver resolves lineage paths of taxids.
// *taxon.Directory implements it.
type LineageResolver interface {
	AncestorPath(taxid uint32) ([]taxon.Ancestor, error)
}

// Aggregator builds forests of query sequences.
// It only reads the resolver, so one Aggregator can serve many goroutines.
type Aggregator struct {
	resolver LineageResolver
	weights  Weights
}

// NewAggregator creates an Aggregator.
func NewAggregator(resolver LineageResolver, weights Weights) *Aggregator {
	return &Aggregator{resolver: resolver, weights: weights}
}

// Aggregate builds the forest of a query sequence with likelihoods
// normalized per rank.
func (a *Aggregator) Aggregate(q *hits.QuerySequence) *Forest {
	f := NewForest()

	paths := make(map[uint32][]taxon.Ancestor, 8)
	var path []taxon.Ancestor
	var ok bool
	var err error

	// taxa
	for _, g := range q.Genes {
		for _, h := range g.Hits {
			if h.Taxid == 0 {
				continue
			}
			if path, ok = paths[h.Taxid]; ok {
				f.merge(path)
				continue
			}

			path, err = a.resolver.AncestorPath(h.Taxid)
			if err != nil {
				f.Missing = append(f.Missing, h.Taxid)
			}
			paths[h.Taxid] = path
			f.merge(path)
		}
	}

	// scores
	var taxids [taxon.NumRanks]uint32
	var node *PathNode
	var r int
	for _, g := range q.Genes {
		for _, h := range g.Hits {
			if h.Taxid == 0 {
				continue
			}
			taxids = taxon.RanksOf(paths[h.Taxid])
			if taxids[taxon.Phylum] == 0 || taxids[taxon.Genus] == 0 || taxids[taxon.Species] == 0 {
				continue
			}

			for r = 0; r < taxon.NumRanks; r++ {
				node, _ = f.Node(taxids[r])
				node.Likelihood += a.weights.Score(r, h.DualHist[r], h.SubMTX[r])
			}
		}
	}

	f.normalize(CategoryPhylum)
	f.normalize(CategoryGenus)
	f.normalize(CategorySpecies)

	return f
}
