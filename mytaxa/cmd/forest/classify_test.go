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
	"strings"
	"testing"

	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
)

func writeCall(c Call) string {
	var buf strings.Builder
	w := bufio.NewWriter(&buf)
	c.Write(w)
	w.Flush()
	return buf.String()
}

func TestClassifySingleHit(t *testing.T) {
	d := testDirectory()
	a := NewAggregator(d, Weights{Sub: [3]float64{0, 0, 1}})
	f := a.Aggregate(query(hit(30, 0, 0, 0, 0, 0, 0.9)))

	c, err := NewClassifier(d, 0.5).Classify("q1", f)
	if err != nil {
		t.Fatal(err)
	}
	if c.Category != CategorySpecies || c.Taxid != 30 || c.Likelihood != 1 {
		t.Errorf("unexpected call: %+v", c)
	}

	expected := "q1\tSpecies\t1\t30\n<phylum>P1;<genus>G1;<species>S1\n"
	if s := writeCall(c); s != expected {
		t.Errorf("expected %q, got %q", expected, s)
	}
}

func TestClassifyUnknown(t *testing.T) {
	d := testDirectory()
	f := NewAggregator(d, DefaultWeights()).Aggregate(query(hit(0, 1, 1, 1, 1, 1, 1)))

	c, err := NewClassifier(d, 0.5).Classify("q2", f)
	if err != nil {
		t.Fatal(err)
	}
	if c.Classified() {
		t.Errorf("query should be unclassified: %+v", c)
	}
	if s := writeCall(c); s != "q2\tUnknown\tNA\tNA\nNA\n" {
		t.Errorf("unexpected output: %q", s)
	}
}

// forest with species 0.4/0.35/0.25, genus 0.75/0.25, phylum 1.
func cascadeForest() *Forest {
	w := DefaultWeights()
	w.Sub = [3]float64{0, 0, 0}
	return NewAggregator(testDirectory(), w).Aggregate(query(
		hit(30, 1, 2, 4, 0, 0, 0),
		hit(32, 1, 1, 3.5, 0, 0, 0),
		hit(33, 1, 1, 2.5, 0, 0, 0),
	))
}

func TestClassifyCascade(t *testing.T) {
	d := testDirectory()
	f := cascadeForest()

	tests := []struct {
		threshold float64
		category  Category
		taxid     uint32
	}{
		{0.3, CategorySpecies, 30},
		{0.4, CategoryGenus, 20},
		{0.74, CategoryGenus, 20},
		{0.75, CategoryPhylum, 10},
		{0.99, CategoryPhylum, 10},
		{1, CategoryRoot, 0},
	}
	for _, test := range tests {
		c, _ := NewClassifier(d, test.threshold).Classify("q", f)
		if c.Category != test.category || c.Taxid != test.taxid {
			t.Errorf("threshold %f: expected %s %d, got %s %d", test.threshold, test.category, test.taxid, c.Category, c.Taxid)
		}
	}
}

func TestClassifyMonotone(t *testing.T) {
	d := testDirectory()
	f := cascadeForest()

	prev := CategorySpecies
	for i := 0; i <= 100; i++ {
		c, _ := NewClassifier(d, float64(i)/100).Classify("q", f)
		if c.Category > prev {
			t.Fatalf("threshold %f promoted the call from %s to %s", float64(i)/100, prev, c.Category)
		}
		prev = c.Category
	}
}

func TestBestTies(t *testing.T) {
	f := NewForest()
	for _, taxid := range []uint32{33, 30, 32} {
		f.lookupOrInsert(taxid, CategorySpecies).Likelihood = 0.5
	}
	if best := f.Best(CategorySpecies); best.Taxid != 30 {
		t.Errorf("ties should go to the smallest taxid, got %d", best.Taxid)
	}

	f = NewForest()
	f.lookupOrInsert(30, CategorySpecies)
	if best := f.Best(CategorySpecies); best != nil {
		t.Errorf("zero likelihood should never win")
	}
}

func TestLabels(t *testing.T) {
	if CategoryGenus.Label() != "Genus" || CategoryGenus.String() != "genus" {
		t.Errorf("unexpected labels of genus")
	}
	if CategorySpecies.String() != taxon.RankNames[taxon.Species] {
		t.Errorf("unexpected name of species")
	}
	if FormatLikelihood(1.0/3) != "0.333333" || FormatLikelihood(0.5) != "0.5" {
		t.Errorf("unexpected format: %s", FormatLikelihood(1.0/3))
	}
}
