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
	"math"
	"testing"

	"github.com/shenwei356/mytaxa/mytaxa/cmd/hits"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
)

// testDirectory:
//
//	1 root
//	└── 10 phylum P1
//	    ├── 20 genus G1
//	    │   ├── 30 species S1
//	    │   │   └── 31 no rank S1 strain
//	    │   └── 32 species S2
//	    └── 21 genus G2
//	        └── 33 species S3
//	└── 11 phylum P2
//	    └── 40 class C
//	        └── 22 genus G3 (no species below)
func testDirectory() *taxon.Directory {
	d := taxon.NewDirectory()
	for _, n := range []struct {
		taxid, parent uint32
		rank          string
		name          string
	}{
		{1, 1, "no rank", "root"},
		{10, 1, "phylum", "P1"},
		{20, 10, "genus", "G1"},
		{30, 20, "species", "S1"},
		{31, 30, "no rank", "S1 strain"},
		{32, 20, "species", "S2"},
		{21, 10, "genus", "G2"},
		{33, 21, "species", "S3"},
		{11, 1, "phylum", "P2"},
		{40, 11, "class", "C"},
		{22, 40, "genus", "G3"},
	} {
		d.AddNode(n.taxid, n.parent, n.rank)
		d.AddName(n.taxid, n.name+"\n")
	}
	return d
}

func hit(taxid uint32, scores ...float64) hits.Hit {
	h := hits.Hit{Taxid: taxid}
	for r := 0; r < taxon.NumRanks; r++ {
		h.DualHist[r] = scores[r]
		h.SubMTX[r] = scores[r+taxon.NumRanks]
	}
	return h
}

func query(hs ...hits.Hit) *hits.QuerySequence {
	return &hits.QuerySequence{Name: "q", Genes: []*hits.Gene{{Name: "g", Hits: hs}}}
}

func sumOf(nodes []*PathNode) float64 {
	var sum float64
	for _, n := range nodes {
		sum += n.Likelihood
	}
	return sum
}

func TestAggregateSingleHit(t *testing.T) {
	a := NewAggregator(testDirectory(), DefaultWeights())
	f := a.Aggregate(query(hit(30, 0.3, 0.5, 0.6, 0.1, 0.2, 0.3)))

	if f.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", f.Len())
	}
	for _, c := range []Category{CategoryPhylum, CategoryGenus, CategorySpecies} {
		nodes := f.Nodes(c)
		if len(nodes) != 1 || nodes[0].Likelihood != 1 {
			t.Errorf("%s: expected one node with likelihood 1, got %v", c, nodes)
		}
	}

	s, _ := f.Node(30)
	g, _ := f.Node(20)
	p, _ := f.Node(10)
	if s.Parent != g || g.Parent != p || p.Parent != f.Root {
		t.Errorf("unexpected links")
	}
	if s.Category != CategorySpecies || g.Category != CategoryGenus || p.Category != CategoryPhylum {
		t.Errorf("unexpected categories")
	}
}

func TestAggregateSharedNodes(t *testing.T) {
	w := DefaultWeights()
	w.Sub = [taxon.NumRanks]float64{0, 0, 0}
	a := NewAggregator(testDirectory(), w)

	f := a.Aggregate(query(
		hit(31, 1, 1, 3, 9, 9, 9), // strain of S1
		hit(32, 1, 1, 1, 9, 9, 9),
		hit(33, 2, 2, 0, 9, 9, 9),
	))

	if n := len(f.Nodes(CategoryPhylum)); n != 1 {
		t.Errorf("expected 1 phylum node, got %d", n)
	}
	p, _ := f.Node(10)
	if math.Abs(p.Likelihood-1) > 1e-9 {
		t.Errorf("phylum likelihood: expected 1, got %f", p.Likelihood)
	}

	g1, _ := f.Node(20)
	g2, _ := f.Node(21)
	if math.Abs(g1.Likelihood-0.5) > 1e-9 || math.Abs(g2.Likelihood-0.5) > 1e-9 {
		t.Errorf("genus likelihoods: expected 0.5 and 0.5, got %f and %f", g1.Likelihood, g2.Likelihood)
	}

	s1, _ := f.Node(30)
	s2, _ := f.Node(32)
	s3, _ := f.Node(33)
	if math.Abs(s1.Likelihood-0.75) > 1e-9 || math.Abs(s2.Likelihood-0.25) > 1e-9 || s3.Likelihood != 0 {
		t.Errorf("species likelihoods: got %f, %f, %f", s1.Likelihood, s2.Likelihood, s3.Likelihood)
	}

	for _, c := range []Category{CategoryPhylum, CategoryGenus, CategorySpecies} {
		if sum := sumOf(f.Nodes(c)); math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s: likelihoods sum to %f", c, sum)
		}
	}
}

func TestAggregateZeroSum(t *testing.T) {
	a := NewAggregator(testDirectory(), DefaultWeights())
	f := a.Aggregate(query(
		hit(30, 0, 0, 0, 0, 0, 0),
		hit(33, 0, 0, 0, 0, 0, 0),
	))

	species := f.Nodes(CategorySpecies)
	if len(species) != 2 {
		t.Fatalf("expected 2 species nodes, got %d", len(species))
	}
	if sum := sumOf(species); sum != float64(len(species)) {
		t.Errorf("every node should get likelihood 1, sum: %f", sum)
	}
}

func TestAggregateIncompleteLineage(t *testing.T) {
	a := NewAggregator(testDirectory(), DefaultWeights())
	// G3 has no species, so the hit adds nodes without scores
	f := a.Aggregate(query(
		hit(22, 5, 5, 5, 5, 5, 5),
		hit(30, 1, 1, 1, 0, 0, 0),
	))

	g3, ok := f.Node(22)
	if !ok {
		t.Fatalf("genus node of an incomplete lineage should be added")
	}
	g1, _ := f.Node(20)
	if g3.Likelihood != 0 || g1.Likelihood != 1 {
		t.Errorf("incomplete lineage should not be scored: %f, %f", g3.Likelihood, g1.Likelihood)
	}
	p2, _ := f.Node(11)
	if g3.Parent != p2 {
		t.Errorf("genus should link to its phylum")
	}
}

func TestAggregateUnknownTaxids(t *testing.T) {
	a := NewAggregator(testDirectory(), DefaultWeights())
	f := a.Aggregate(query(hit(0, 1, 1, 1, 1, 1, 1), hit(999, 1, 1, 1, 1, 1, 1), hit(999, 1, 1, 1, 1, 1, 1)))

	if f.Len() != 0 {
		t.Errorf("forest should be empty, got %d nodes", f.Len())
	}
	if len(f.Missing) != 1 || f.Missing[0] != 999 {
		t.Errorf("missing taxids should be reported once: %v", f.Missing)
	}
}

func TestForestFirstLinkWins(t *testing.T) {
	f := NewForest()
	f.merge([]taxon.Ancestor{{Taxid: 30, Rank: "species"}, {Taxid: 20, Rank: "genus"}})
	s, _ := f.Node(30)
	g, _ := f.Node(20)
	if g.Parent != nil || s.Parent != g {
		t.Fatalf("genus without phylum should stay unlinked")
	}

	f.merge([]taxon.Ancestor{{Taxid: 30, Rank: "species"}, {Taxid: 21, Rank: "genus"}, {Taxid: 10, Rank: "phylum"}})
	if s.Parent != g {
		t.Errorf("existing link should be kept")
	}

	f.merge([]taxon.Ancestor{{Taxid: 20, Rank: "genus"}, {Taxid: 10, Rank: "phylum"}})
	p, _ := f.Node(10)
	if g.Parent != p {
		t.Errorf("unset link should be filled by a later hit")
	}
}

func TestWeightsScore(t *testing.T) {
	w := Weights{Hist: [3]float64{1, 2, 3}, Sub: [3]float64{0.5, 0, 1}}
	if v := w.Score(taxon.Genus, 2, 7); v != 4 {
		t.Errorf("expected 4, got %f", v)
	}
	if v := w.Score(taxon.Species, 1, 1); v != 4 {
		t.Errorf("expected 4, got %f", v)
	}
}
