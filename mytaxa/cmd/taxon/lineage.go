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

package taxon

import (
	"fmt"
	"strings"
)

// Ancestor is a node on a lineage path.
type Ancestor struct {
	Taxid uint32
	Rank  string
}

// AncestorPath returns the path from taxid (included) up to the root
// (excluded). The path ends early at a node whose parent is unknown
// or absent. ErrTaxidNotFound is returned if taxid itself is absent.
func (d *Directory) AncestorPath(taxid uint32) ([]Ancestor, error) {
	path := make([]Ancestor, 0, 32)

	var n Node
	var ok bool
	for steps := 0; taxid != RootTaxid; steps++ {
		if steps > len(d.nodes) { // cycle
			break
		}
		if n, ok = d.nodes[taxid]; !ok {
			if steps == 0 {
				return path, fmt.Errorf("%w: %d", ErrTaxidNotFound, taxid)
			}
			break
		}
		path = append(path, Ancestor{Taxid: taxid, Rank: n.Rank})
		if n.Parent == 0 || n.Parent == taxid {
			break
		}
		taxid = n.Parent
	}
	return path, nil
}

// RanksOf returns the taxids at phylum, genus and species of a path,
// the last one seen wins. Missing ranks are 0.
func RanksOf(path []Ancestor) [NumRanks]uint32 {
	var taxids [NumRanks]uint32
	var r int
	for _, a := range path {
		if r = RankIndex(a.Rank); r >= 0 {
			taxids[r] = a.Taxid
		}
	}
	return taxids
}

// RanksAtThreeLevels returns the taxids at phylum, genus and species
// of the lineage of a taxid.
func (d *Directory) RanksAtThreeLevels(taxid uint32) ([NumRanks]uint32, error) {
	path, err := d.AncestorPath(taxid)
	return RanksOf(path), err
}

// LCA returns the lowest common ancestor of two taxids,
// or RootTaxid if they share no other node.
// The returned error reports the first taxid missing from the directory.
func (d *Directory) LCA(a uint32, b uint32) (uint32, error) {
	pathA, errA := d.AncestorPath(a)
	pathB, errB := d.AncestorPath(b)
	err := errA
	if err == nil {
		err = errB
	}

	for _, x := range pathA {
		for _, y := range pathB {
			if x.Taxid == y.Taxid {
				return x.Taxid, err
			}
		}
	}
	return RootTaxid, err
}

// RenderLineage formats the lineage of a taxid from root to leaf,
// e.g., "<phylum>Proteobacteria;<genus>Escherichia".
//
// Nodes of rank "no rank" are dropped unless the rank mentions "group",
// in which case the name is kept without the rank tag.
// The last byte of each stored name, the line terminator, is removed.
func (d *Directory) RenderLineage(taxid uint32) (string, error) {
	path, err := d.AncestorPath(taxid)

	var buf strings.Builder
	var a Ancestor
	var name string
	for i := len(path) - 1; i >= 0; i-- {
		a = path[i]
		name = d.names[a.Taxid]
		if len(name) > 0 {
			name = name[:len(name)-1]
		}

		if !strings.Contains(a.Rank, "no rank") {
			buf.WriteByte('<')
			buf.WriteString(a.Rank)
			buf.WriteByte('>')
			buf.WriteString(name)
			buf.WriteByte(';')
		} else if strings.Contains(a.Rank, "group") {
			buf.WriteString(name)
			buf.WriteByte(';')
		}
	}

	s := buf.String()
	if len(s) > 0 {
		s = s[:len(s)-1]
	}
	return s, err
}
