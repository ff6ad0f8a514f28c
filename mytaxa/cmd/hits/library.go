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

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shenwei356/breader"
	"github.com/shenwei356/mytaxa/mytaxa/cmd/taxon"
	"github.com/shenwei356/xopen"
)

// ErrTruncatedClusterFile means a cluster block ends before all its lines.
var ErrTruncatedClusterFile = errors.New("hits: truncated gene cluster file")

// NumHistBins is the number of identity bins of a histogram table.
const NumHistBins = 1001

// UnmappedScore is the score of hits whose reference is not in any cluster.
const UnmappedScore float64 = -1

type idPair struct {
	id    uint64
	taxid uint32
}

// LoadTaxids assigns taxids to hits from a two-column file mapping
// reference identifiers to taxids. Only identifiers of the given queries
// are kept. Hits with unknown identifiers get the taxid 0.
// It returns the number of identifiers with a non-zero taxid.
func LoadTaxids(file string, queries []*QuerySequence, threads int) (int, error) {
	ids := refIDs(queries)

	parseFunc := func(line string) (interface{}, bool, error) {
		items := strings.Fields(line)
		if len(items) < 2 {
			return nil, false, nil
		}
		id := parseRefID(items[0])
		if _, ok := ids[id]; !ok {
			return nil, false, nil
		}
		return idPair{id: id, taxid: taxon.ParseTaxid(items[1])}, true, nil
	}

	if threads < 1 {
		threads = 1
	}
	reader, err := breader.NewBufferedReader(file, threads, 5000, parseFunc)
	if err != nil {
		return 0, fmt.Errorf("hits: %s", err)
	}

	var p idPair
	var data interface{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return 0, fmt.Errorf("hits: %s", chunk.Err)
		}
		for _, data = range chunk.Data {
			p = data.(idPair)
			ids[p.id] = p.taxid
		}
	}

	var n int
	for _, taxid := range ids {
		if taxid > 0 {
			n++
		}
	}

	var h *Hit
	for _, q := range queries {
		for _, g := range q.Genes {
			for i := range g.Hits {
				h = &g.Hits[i]
				if h.RefID > 0 {
					h.Taxid = ids[h.RefID]
				} else {
					h.Taxid = 0
				}
			}
		}
	}
	return n, nil
}

// ClusterParams are the scoring tables of a gene cluster.
type ClusterParams struct {
	ID uint32

	// identity histograms of phylum, genus and species
	Hists [taxon.NumRanks][]float64
	// substitution matrix scores of phylum, genus and species
	SubMTX [taxon.NumRanks]float64
}

// HistBin returns the histogram bin of an identity in [0, 100],
// clamped into [0, NumHistBins-1].
func HistBin(identity float64) int {
	// single precision keeps bin boundaries identical to the library tables
	idx := NumHistBins - 1 - int(float32(identity)*10)
	if idx < 0 {
		return 0
	}
	if idx > NumHistBins-1 {
		return NumHistBins - 1
	}
	return idx
}

// HistScore returns the histogram score of a rank at an identity.
// Bins missing from a short table are 0.
func (p *ClusterParams) HistScore(rank int, identity float64) float64 {
	idx := HistBin(identity)
	if idx >= len(p.Hists[rank]) {
		return 0
	}
	return p.Hists[rank][idx]
}

func parseFloats(line string) []float64 {
	items := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	vals := make([]float64, len(items))
	for i, s := range items {
		vals[i] = parseFloat(s)
	}
	return vals
}

// ReadClusters reads the gene cluster parameter file. Every block has:
//
//	clusterID clusterSize
//	ceil(clusterSize/10) lines of member identifiers
//	3 lines of identity histograms (phylum, genus, species)
//	1 line of 3 substitution matrix scores
//
// Only clusters having a member in ids are kept, and ids is updated
// with the cluster of its members.
func ReadClusters(file string, ids map[uint64]uint32) (map[uint32]*ClusterParams, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, fmt.Errorf("hits: %s", err)
	}
	defer fh.Close()

	clusters := make(map[uint32]*ClusterParams, 1024)

	var line string
	var eof bool
	nextLine := func() (string, error) {
		if eof {
			return "", io.EOF
		}
		line, err := fh.ReadString('\n')
		if err == io.EOF {
			eof = true
			if line == "" {
				return "", io.EOF
			}
			return line, nil
		}
		return line, err
	}

	var items []string
	var clstrID uint32
	var size, nLines, i, r int
	var id uint64
	var ok, hasThisClstr bool
	for {
		line, err = nextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hits: %s", err)
		}

		items = strings.Fields(line)
		if len(items) == 0 { // blank line
			continue
		}
		clstrID = taxon.ParseTaxid(items[0])
		size = 0
		if len(items) > 1 {
			size, _ = strconv.Atoi(items[1])
		}
		nLines = (size + 9) / 10

		hasThisClstr = false
		for i = 0; i < nLines; i++ {
			if line, err = nextLine(); err != nil {
				return nil, blockError(err, clstrID)
			}
			for _, s := range strings.Fields(line) {
				id = parseRefID(s)
				if _, ok = ids[id]; ok && id > 0 {
					hasThisClstr = true
					ids[id] = clstrID
				}
			}
		}

		if !hasThisClstr {
			for i = 0; i < taxon.NumRanks+1; i++ {
				if _, err = nextLine(); err != nil {
					return nil, blockError(err, clstrID)
				}
			}
			continue
		}

		p := &ClusterParams{ID: clstrID}
		for r = 0; r < taxon.NumRanks; r++ {
			if line, err = nextLine(); err != nil {
				return nil, blockError(err, clstrID)
			}
			p.Hists[r] = parseFloats(line)
		}

		if line, err = nextLine(); err != nil {
			return nil, blockError(err, clstrID)
		}
		for r, v := range parseFloats(line) {
			if r >= taxon.NumRanks {
				break
			}
			p.SubMTX[r] = v
		}

		if _, ok = clusters[clstrID]; !ok {
			clusters[clstrID] = p
		}
	}

	return clusters, nil
}

func blockError(err error, clstrID uint32) error {
	if err == io.EOF {
		return fmt.Errorf("%w: cluster %d", ErrTruncatedClusterFile, clstrID)
	}
	return fmt.Errorf("hits: %s", err)
}

// LoadClusters assigns clusters and their scores to hits from the gene
// cluster parameter file. Hits not in any cluster get the cluster 0 and
// UnmappedScore for all scores.
// It returns the number of clusters used.
func LoadClusters(file string, queries []*QuerySequence) (int, error) {
	ids := refIDs(queries)

	clusters, err := ReadClusters(file, ids)
	if err != nil {
		return 0, err
	}

	var h *Hit
	var p *ClusterParams
	var ok bool
	var r int
	for _, q := range queries {
		for _, g := range q.Genes {
			for i := range g.Hits {
				h = &g.Hits[i]
				h.Cluster = ids[h.RefID]

				if p, ok = clusters[h.Cluster]; h.Cluster == 0 || !ok {
					h.Cluster = 0
					for r = 0; r < taxon.NumRanks; r++ {
						h.DualHist[r] = UnmappedScore
						h.SubMTX[r] = UnmappedScore
					}
					continue
				}

				for r = 0; r < taxon.NumRanks; r++ {
					h.DualHist[r] = p.HistScore(r, h.Identity)
					h.SubMTX[r] = p.SubMTX[r]
				}
			}
		}
	}
	return len(clusters), nil
}
