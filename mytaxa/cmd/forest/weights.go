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
	"errors"
	"fmt"
	"os"

	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
	"gopkg.in/yaml.v2"
)

// ErrNegativeWeight means a weight is negative.
var ErrNegativeWeight = errors.New("forest: negative weight")

// Weights are the linear weights of the dual-histogram score and the
// substitution matrix score at phylum, genus and species.
type Weights struct {
	Hist [taxon.NumRanks]float64
	Sub  [taxon.NumRanks]float64
}

// DefaultWeights returns weights of 1.
func DefaultWeights() Weights {
	return Weights{
		Hist: [taxon.NumRanks]float64{1, 1, 1},
		Sub:  [taxon.NumRanks]float64{1, 1, 1},
	}
}

// Score combines the two scores of a rank.
func (w Weights) Score(rank int, dualHist float64, subMTX float64) float64 {
	return w.Hist[rank]*dualHist + w.Sub[rank]*subMTX
}

// Validate checks all weights are non-negative.
func (w Weights) Validate() error {
	for r := 0; r < taxon.NumRanks; r++ {
		if w.Hist[r] < 0 {
			return fmt.Errorf("%w: histogram weight of %s: %f", ErrNegativeWeight, taxon.RankNames[r], w.Hist[r])
		}
		if w.Sub[r] < 0 {
			return fmt.Errorf("%w: substitution weight of %s: %f", ErrNegativeWeight, taxon.RankNames[r], w.Sub[r])
		}
	}
	return nil
}

func (w Weights) String() string {
	return fmt.Sprintf("histogram: %v, substitution: %v", w.Hist, w.Sub)
}

// weightsConfig is the YAML form of Weights, e.g.,
//
//	histogram: [1, 1, 1]
//	substitution: [1, 0.5, 0.5]
type weightsConfig struct {
	Hist []float64 `yaml:"histogram"`
	Sub  []float64 `yaml:"substitution"`
}

// WeightsFromFile reads Weights from a YAML file.
// Absent keys keep the default weights.
func WeightsFromFile(file string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(file)
	if err != nil {
		return w, fmt.Errorf("fail to read weights file: %s", file)
	}

	var c weightsConfig
	if err = yaml.Unmarshal(data, &c); err != nil {
		return w, fmt.Errorf("fail to unmarshal weights file %s: %s", file, err)
	}

	if c.Hist != nil {
		if len(c.Hist) != taxon.NumRanks {
			return w, fmt.Errorf("%d histogram weights needed, %d given", taxon.NumRanks, len(c.Hist))
		}
		copy(w.Hist[:], c.Hist)
	}
	if c.Sub != nil {
		if len(c.Sub) != taxon.NumRanks {
			return w, fmt.Errorf("%d substitution weights needed, %d given", taxon.NumRanks, len(c.Sub))
		}
		copy(w.Sub[:], c.Sub)
	}

	return w, w.Validate()
}
