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
	"os"
	"path/filepath"
	"testing"
)

func writeWeights(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestWeightsFromFile(t *testing.T) {
	w, err := WeightsFromFile(writeWeights(t, "histogram: [1, 2, 3]\nsubstitution: [0.5, 0, 0.25]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if w.Hist != [3]float64{1, 2, 3} || w.Sub != [3]float64{0.5, 0, 0.25} {
		t.Errorf("unexpected weights: %s", w)
	}
	if s := w.Score(1, 2, 10); s != 4 {
		t.Errorf("expected score 4, got %f", s)
	}

	w, err = WeightsFromFile(writeWeights(t, "substitution: [0, 0, 0]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if w.Hist != DefaultWeights().Hist || w.Sub != [3]float64{} {
		t.Errorf("absent keys should keep defaults: %s", w)
	}
}

func TestWeightsFromFileErrors(t *testing.T) {
	if _, err := WeightsFromFile(writeWeights(t, "histogram: [1, 2]\n")); err == nil {
		t.Errorf("two weights should be rejected")
	}

	_, err := WeightsFromFile(writeWeights(t, "histogram: [1, -2, 3]\n"))
	if !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("expected ErrNegativeWeight, got %v", err)
	}

	if _, err = WeightsFromFile(writeWeights(t, "histogram: [a, b\n")); err == nil {
		t.Errorf("broken YAML should be rejected")
	}

	if _, err = WeightsFromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("absent file should be rejected")
	}
}
