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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shenwei356/breader"
	"github.com/shenwei356/xopen"
)

// RootTaxid is the taxid of the root node of the taxonomy.
const RootTaxid uint32 = 1

// Ranks used in aggregation and classification, in the order of
// every per-rank triple.
const (
	Phylum = iota
	Genus
	Species

	NumRanks
)

// RankNames are the rank labels of Phylum, Genus and Species.
var RankNames = [NumRanks]string{"phylum", "genus", "species"}

// RankIndex returns the index of a rank label in RankNames, or -1.
func RankIndex(rank string) int {
	switch rank {
	case "phylum":
		return Phylum
	case "genus":
		return Genus
	case "species":
		return Species
	}
	return -1
}

// ErrTaxidNotFound means the taxid is absent from the directory.
var ErrTaxidNotFound = errors.New("taxon: taxid not found")

// Node is a taxonomy node. Parent is 0 for placeholder nodes
// created before their own record was read.
type Node struct {
	Taxid  uint32
	Parent uint32
	Rank   string
}

// Directory holds the taxonomy nodes and scientific names.
// It is not modified after loading and is safe for concurrent reads.
type Directory struct {
	nodes map[uint32]Node
	names map[uint32]string

	// Ranks holds all rank labels seen in the node file.
	Ranks map[string]struct{}
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		nodes: make(map[uint32]Node, 1024),
		names: make(map[uint32]string, 1024),
		Ranks: make(map[string]struct{}, 64),
	}
}

// AddNode adds a node record. A parent not seen before is added
// as a placeholder without rank, and a later record of the placeholder
// fills in the rank but keeps its links.
// A self-referencing record never rewrites the parent.
func (d *Directory) AddNode(taxid uint32, parent uint32, rank string) {
	cur, ok := d.nodes[taxid]
	if !ok {
		cur = Node{Taxid: taxid, Rank: rank}
	}
	if _, ok = d.nodes[parent]; !ok && parent != taxid && parent != 0 {
		d.nodes[parent] = Node{Taxid: parent}
	}
	if taxid != parent {
		cur.Parent = parent
	}
	if cur.Rank == "" {
		cur.Rank = rank
	}
	d.nodes[taxid] = cur

	if rank != "" {
		d.Ranks[rank] = struct{}{}
	}
}

// AddName adds the scientific name of a taxid. The first name wins.
func (d *Directory) AddName(taxid uint32, name string) {
	if _, ok := d.names[taxid]; ok {
		return
	}
	d.names[taxid] = name
}

// Node returns the node of a taxid.
func (d *Directory) Node(taxid uint32) (Node, bool) {
	n, ok := d.nodes[taxid]
	return n, ok
}

// Name returns the name of a taxid as stored, i.e., possibly
// with the line terminator of the name file.
func (d *Directory) Name(taxid uint32) (string, bool) {
	name, ok := d.names[taxid]
	return name, ok
}

// NumNodes returns the number of nodes.
func (d *Directory) NumNodes() int { return len(d.nodes) }

// NumNames returns the number of names.
func (d *Directory) NumNames() int { return len(d.names) }

// ParseTaxid parses a taxid, malformed values are returned as 0.
func ParseTaxid(s string) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

type nodeRecord struct {
	taxid  uint32
	parent uint32
	rank   string
}

// LoadNodes reads a node file of whitespace-delimited records:
//
//	taxid parent rankWord1 [rankWord2]
//
// Records must be applied in file order, and breader keeps it.
func (d *Directory) LoadNodes(file string, threads int) error {
	parseFunc := func(line string) (interface{}, bool, error) {
		items := strings.Fields(line)
		if len(items) < 2 {
			return nil, false, nil
		}
		r := nodeRecord{taxid: ParseTaxid(items[0]), parent: ParseTaxid(items[1])}
		if r.taxid == 0 {
			return nil, false, nil
		}
		switch {
		case len(items) >= 4:
			r.rank = items[2] + " " + items[3]
		case len(items) == 3:
			r.rank = items[2]
		}
		return r, true, nil
	}

	if threads < 1 {
		threads = 1
	}
	reader, err := breader.NewBufferedReader(file, threads, 1000, parseFunc)
	if err != nil {
		return fmt.Errorf("taxon: %s", err)
	}

	var r nodeRecord
	var data interface{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return fmt.Errorf("taxon: %s", chunk.Err)
		}
		for _, data = range chunk.Data {
			r = data.(nodeRecord)
			d.AddNode(r.taxid, r.parent, r.rank)
		}
	}
	return nil
}

// LoadNames reads a tab-delimited name file: taxid, name, ... .
// Only the first two fields are used, and the name is stored verbatim.
func (d *Directory) LoadNames(file string) error {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return fmt.Errorf("taxon: %s", err)
	}
	defer fh.Close()

	var line string
	var items []string
	for {
		line, err = fh.ReadString('\n')
		if line != "" {
			items = strings.SplitN(line, "\t", 3)
			if len(items) >= 2 {
				d.AddName(ParseTaxid(items[0]), items[1])
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("taxon: %s", err)
		}
	}
	return nil
}

// Load builds a Directory from a node file and a name file.
func Load(nodeFile string, nameFile string, threads int) (*Directory, error) {
	d := NewDirectory()
	if err := d.LoadNodes(nodeFile, threads); err != nil {
		return nil, err
	}
	if err := d.LoadNames(nameFile); err != nil {
		return nil, err
	}
	return d, nil
}
