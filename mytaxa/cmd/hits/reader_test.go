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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

// hitLine builds a blast-like line with the five used columns.
func hitLine(identity, bitscore, query, gene, refID string) string {
	items := make([]string, 15)
	for i := range items {
		items[i] = "0"
	}
	items[0] = gene
	items[1] = "ref" + refID
	items[2] = identity
	items[11] = bitscore
	items[12] = query
	items[13] = gene
	items[14] = refID
	return strings.Join(items, "\t") + "\n"
}

func TestReadQueries(t *testing.T) {
	var buf strings.Builder
	buf.WriteString("# comment\n")
	buf.WriteString(hitLine("98.5", "200", "q1", "q1_1", "11"))
	buf.WriteString(hitLine("90.0", "150", "q1", "q1_1", "12"))
	buf.WriteString(hitLine("80.0", "100", "q1", "q1_1", "13")) // exceeds max hits
	buf.WriteString(hitLine("70.0", "90", "q1", "q1_2", "14"))
	buf.WriteString("\n")
	buf.WriteString(hitLine("bad", "x", "q2", "q1_2", "-5")) // same gene name, new query
	file := writeFile(t, "hits.tsv", buf.String())

	queries, err := ReadQueries(file, 2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}

	q := queries[0]
	if q.Name != "q1" || len(q.Genes) != 2 {
		t.Fatalf("unexpected query: %s", q)
	}
	if len(q.Genes[0].Hits) != 2 || len(q.Genes[1].Hits) != 1 {
		t.Errorf("unexpected hit numbers: %s", q)
	}
	h := q.Genes[0].Hits[0]
	if h.RefID != 11 || h.Identity != 98.5 || h.Bitscore != 200 {
		t.Errorf("unexpected hit: %+v", h)
	}

	q = queries[1]
	if len(q.Genes) != 1 || len(q.Genes[0].Hits) != 1 {
		t.Fatalf("unexpected query: %s", q)
	}
	h = q.Genes[0].Hits[0]
	if h.RefID != 0 || h.Identity != 0 || h.Bitscore != 0 {
		t.Errorf("malformed values should be 0: %+v", h)
	}
}

func TestReadQueriesInvalidFormat(t *testing.T) {
	file := writeFile(t, "hits.tsv", "a\tb\tc\n")
	_, err := ReadQueries(file, 10, 1, 10)
	if err == nil || !strings.Contains(err.Error(), "invalid input format") {
		t.Errorf("expected invalid format error, got %v", err)
	}
}
