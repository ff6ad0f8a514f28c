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

// Package forest aggregates the evidence of hits of a query sequence
// into likelihoods of taxa at phylum, genus and species, and picks the
// deepest rank with enough support.
package forest

import (
	"sort"

	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
)

// Category is the rank category of a PathNode.
type Category uint8

const (
	CategoryRoot Category = iota
	CategoryPhylum
	CategoryGenus
	CategorySpecies
)

// categoryOf returns the category of a rank index of taxon.
func categoryOf(rank int) Category {
	return Category(rank + 1)
}

var categoryLabels = [...]string{"Root", "Phylum", "Genus", "Species"}

// Label returns the capitalized label used in outputs.
func (c Category) Label() string {
	if int(c) < len(categoryLabels) {
		return categoryLabels[c]
	}
	return "Unknown"
}

func (c Category) String() string {
	switch c {
	case CategoryRoot:
		return "root"
	case CategoryPhylum, CategoryGenus, CategorySpecies:
		return taxon.RankNames[c-1]
	}
	return "unknown"
}

// RootTaxid is the taxid of the synthetic root of a forest.
const RootTaxid uint32 = 0

// PathNode is a taxon of a query forest.
// Parent is nil until a hit places the node under a parent.
type PathNode struct {
	Taxid      uint32
	Category   Category
	Likelihood float64
	Parent     *PathNode
}

// Forest holds taxa at phylum, genus and species supported by
// the hits of one query sequence.
type Forest struct {
	Root  *PathNode
	nodes map[uint32]*PathNode

	// Missing holds taxids of hits absent from the taxonomy.
	Missing []uint32
}

// NewForest returns a forest with only the synthetic root.
func NewForest() *Forest {
	root := &PathNode{Taxid: RootTaxid, Category: CategoryRoot}
	return &Forest{
		Root:  root,
		nodes: map[uint32]*PathNode{RootTaxid: root},
	}
}

// Node returns the node of a taxid.
func (f *Forest) Node(taxid uint32) (*PathNode, bool) {
	n, ok := f.nodes[taxid]
	return n, ok
}

// Len returns the number of nodes, the root excluded.
func (f *Forest) Len() int {
	return len(f.nodes) - 1
}

// lookupOrInsert returns the node of a taxid, creating it if absent.
func (f *Forest) lookupOrInsert(taxid uint32, c Category) *PathNode {
	if n, ok := f.nodes[taxid]; ok {
		return n
	}
	n := &PathNode{Taxid: taxid, Category: c}
	f.nodes[taxid] = n
	return n
}

// Nodes returns nodes of a category in ascending order of taxids.
func (f *Forest) Nodes(c Category) []*PathNode {
	nodes := make([]*PathNode, 0, 8)
	for _, n := range f.nodes {
		if n.Category == c {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Taxid < nodes[j].Taxid })
	return nodes
}

// Best returns the first node of a category, in ascending order of
// taxids, with the greatest positive likelihood, or nil.
func (f *Forest) Best(c Category) *PathNode {
	var best *PathNode
	var max float64
	for _, n := range f.Nodes(c) {
		if n.Likelihood > max {
			max = n.Likelihood
			best = n
		}
	}
	return best
}

// merge adds the phylum, genus and species nodes of a lineage path.
// A node keeps the position given by the first hit linking it.
func (f *Forest) merge(path []taxon.Ancestor) {
	var nodes [taxon.NumRanks]*PathNode
	var r int
	for _, a := range path {
		if r = taxon.RankIndex(a.Rank); r < 0 {
			continue
		}
		nodes[r] = f.lookupOrInsert(a.Taxid, categoryOf(r))
	}

	parent := f.Root
	for _, n := range nodes {
		if n != nil && parent != nil && n.Parent == nil {
			n.Parent = parent
		}
		parent = n
	}
}

// normalize turns scores of a category into likelihoods summing to 1.
// If all scores sum to 0, every node gets the likelihood 1.
func (f *Forest) normalize(c Category) {
	nodes := f.Nodes(c)

	var sum float64
	for _, n := range nodes {
		sum += n.Likelihood
	}
	for _, n := range nodes {
		if sum != 0 {
			n.Likelihood /= sum
		} else {
			n.Likelihood = 1
		}
	}
}
