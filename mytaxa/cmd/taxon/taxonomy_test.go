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
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// a small taxonomy:
//
//	1 root
//	└── 2 superkingdom Bacteria
//	    └── 1224 phylum Proteobacteria
//	        └── 1236 class Gammaproteobacteria
//	            └── 561 genus Escherichia
//	                ├── 562 species Escherichia coli
//	                │   └── 83333 no rank Escherichia coli K-12
//	                └── 564 species Escherichia fergusonii
//	    └── 1239 phylum Firmicutes
//	        └── 1386 genus Bacillus
//	            └── 1423 species Bacillus subtilis
const testNodes = `1	1	no rank
2	1	superkingdom
1224	2	phylum
1236	1224	class
561	1236	genus
562	561	species
83333	562	no rank
564	561	species
1239	2	phylum
1386	1239	genus
1423	1386	species
`

const testNames = `1	root
2	Bacteria
1224	Proteobacteria
1236	Gammaproteobacteria
561	Escherichia
562	Escherichia coli
83333	Escherichia coli K-12
564	Escherichia fergusonii
1239	Firmicutes
1386	Bacillus
1423	Bacillus subtilis
`

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func loadTestDirectory(t *testing.T) *Directory {
	t.Helper()
	dir := t.TempDir()
	d, err := Load(writeFile(t, dir, "nodes.lib", testNodes), writeFile(t, dir, "names.lib", testNames), 2)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestLoad(t *testing.T) {
	d := loadTestDirectory(t)

	if d.NumNodes() != 11 {
		t.Errorf("nodes: expected 11, got %d", d.NumNodes())
	}
	if d.NumNames() != 11 {
		t.Errorf("names: expected 11, got %d", d.NumNames())
	}

	n, ok := d.Node(562)
	if !ok || n.Parent != 561 || n.Rank != "species" {
		t.Errorf("unexpected node 562: %+v", n)
	}
	n, _ = d.Node(83333)
	if n.Rank != "no rank" {
		t.Errorf("two-word rank expected, got %q", n.Rank)
	}

	name, ok := d.Name(562)
	if !ok || name != "Escherichia coli\n" {
		t.Errorf("name should be stored verbatim, got %q", name)
	}

	if _, ok = d.Ranks["phylum"]; !ok {
		t.Errorf("rank phylum not recorded")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	names := writeFile(t, dir, "names.lib", testNames)
	if _, err := Load(filepath.Join(dir, "absent.lib"), names, 1); err == nil {
		t.Errorf("missing node file should fail")
	}
}

func TestAddNodePlaceholder(t *testing.T) {
	d := NewDirectory()
	d.AddNode(1, 1, "no rank")
	d.AddNode(20, 10, "genus") // parent not seen yet

	n, ok := d.Node(10)
	if !ok {
		t.Fatalf("placeholder parent not created")
	}
	if n.Rank != "" || n.Parent != 0 {
		t.Errorf("placeholder should have no rank and no parent: %+v", n)
	}

	d.AddNode(10, 1, "phylum")
	n, _ = d.Node(10)
	if n.Rank != "phylum" || n.Parent != 1 {
		t.Errorf("placeholder not filled: %+v", n)
	}
	n, _ = d.Node(20)
	if n.Parent != 10 {
		t.Errorf("child link lost: %+v", n)
	}

	// self-referencing record keeps the parent
	d.AddNode(20, 20, "genus")
	n, _ = d.Node(20)
	if n.Parent != 10 {
		t.Errorf("self-referencing record rewrote the parent: %+v", n)
	}

	root, _ := d.Node(1)
	if root.Parent != 0 {
		t.Errorf("root should not point to itself: %+v", root)
	}
}

func TestAddNameFirstWins(t *testing.T) {
	d := NewDirectory()
	d.AddName(5, "a\n")
	d.AddName(5, "b\n")
	if name, _ := d.Name(5); name != "a\n" {
		t.Errorf("expected first name, got %q", name)
	}
	if _, ok := d.Name(6); ok {
		t.Errorf("absent name reported present")
	}
}

func TestParseTaxid(t *testing.T) {
	for s, v := range map[string]uint32{"562": 562, "": 0, "x1": 0, "-3": 0, "1.5": 0} {
		if got := ParseTaxid(s); got != v {
			t.Errorf("ParseTaxid(%q): expected %d, got %d", s, v, got)
		}
	}
}

func TestLoadNamesMissingFile(t *testing.T) {
	d := NewDirectory()
	err := d.LoadNames(filepath.Join(t.TempDir(), "absent"))
	if err == nil || errors.Is(err, ErrTaxidNotFound) {
		t.Errorf("expected open error, got %v", err)
	}
}
