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
	"bufio"
	"strconv"
)

// LineageRenderer formats lineages of taxids.
// *taxon.Directory implements it.
type LineageRenderer interface {
	RenderLineage(taxid uint32) (string, error)
}

// Call is the classification of a query sequence.
// Category is CategoryRoot for unclassified queries.
type Call struct {
	Query      string
	Category   Category
	Likelihood float64
	Taxid      uint32
	Lineage    string
}

// Classified tells whether the query is assigned to a taxon.
func (c Call) Classified() bool {
	return c.Category != CategoryRoot
}

// Label returns "Species", "Genus", "Phylum" or "Unknown".
func (c Call) Label() string {
	if !c.Classified() {
		return "Unknown"
	}
	return c.Category.Label()
}

// FormatLikelihood formats a likelihood with 6 significant digits.
func FormatLikelihood(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Write writes the call in two lines:
//
//	query \t rank \t likelihood \t taxid
//	lineage
//
// Fields of unclassified queries are "NA".
func (c Call) Write(w *bufio.Writer) {
	w.WriteString(c.Query)
	w.WriteByte('\t')
	w.WriteString(c.Label())
	if !c.Classified() {
		w.WriteString("\tNA\tNA\nNA\n")
		return
	}
	w.WriteByte('\t')
	w.WriteString(FormatLikelihood(c.Likelihood))
	w.WriteByte('\t')
	w.WriteString(strconv.FormatUint(uint64(c.Taxid), 10))
	w.WriteByte('\n')
	w.WriteString(c.Lineage)
	w.WriteByte('\n')
}

// Classifier picks the deepest rank whose best likelihood exceeds
// the threshold, trying species, genus and then phylum.
type Classifier struct {
	threshold float64
	renderer  LineageRenderer
}

// NewClassifier creates a Classifier.
func NewClassifier(renderer LineageRenderer, threshold float64) *Classifier {
	return &Classifier{threshold: threshold, renderer: renderer}
}

var cascade = [...]Category{CategorySpecies, CategoryGenus, CategoryPhylum}

// Classify classifies a query from its forest.
// The returned error comes from lineage rendering, and the call is
// still usable.
func (c *Classifier) Classify(query string, f *Forest) (Call, error) {
	var best *PathNode
	for _, category := range cascade {
		if best = f.Best(category); best == nil || best.Likelihood <= c.threshold {
			continue
		}

		lineage, err := c.renderer.RenderLineage(best.Taxid)
		return Call{
			Query:      query,
			Category:   category,
			Likelihood: best.Likelihood,
			Taxid:      best.Taxid,
			Lineage:    lineage,
		}, err
	}
	return Call{Query: query, Category: CategoryRoot}, nil
}
