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

// MinBitscore returns the minimum bitscore of the hits, 0 for no hits.
func (g *Gene) MinBitscore() float64 {
	if len(g.Hits) == 0 {
		return 0
	}
	min := g.Hits[0].Bitscore
	for _, h := range g.Hits[1:] {
		if h.Bitscore < min {
			min = h.Bitscore
		}
	}
	return min
}

// MaxAdjacentGap returns the maximum relative bitscore drop,
// (max-min)/max, between adjacent hits.
func (g *Gene) MaxAdjacentGap() float64 {
	var gap, max, min float64
	for i := 1; i < len(g.Hits); i++ {
		max, min = g.Hits[i-1].Bitscore, g.Hits[i].Bitscore
		if min > max {
			max, min = min, max
		}
		if max == 0 {
			continue
		}
		if (max-min)/max > gap {
			gap = (max - min) / max
		}
	}
	return gap
}

// DropWeakest removes the first hit with the minimum bitscore.
func (g *Gene) DropWeakest() {
	if len(g.Hits) == 0 {
		return
	}
	idx := 0
	for i, h := range g.Hits {
		if h.Bitscore < g.Hits[idx].Bitscore {
			idx = i
		}
	}
	g.Hits = append(g.Hits[:idx], g.Hits[idx+1:]...)
}

// Curate drops the weakest hit once if the maximum adjacent gap
// exceeds maxGap, and reports whether a hit was dropped.
func (g *Gene) Curate(maxGap float64) bool {
	if len(g.Hits) < 2 {
		return false
	}
	if g.MaxAdjacentGap() > maxGap {
		g.DropWeakest()
		return true
	}
	return false
}

// Curate curates every gene of the queries, and returns the number of
// dropped hits.
func Curate(queries []*QuerySequence, maxGap float64) int {
	var n int
	for _, q := range queries {
		for _, g := range q.Genes {
			if g.Curate(maxGap) {
				n++
			}
		}
	}
	return n
}
