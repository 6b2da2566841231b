package embedding

import (
	"iter"

	"github.com/born-ml/tensoralg/internal/parallel"
)

// Pair is one term of a co-embedding: codomain component Index contributes
// with multiplier Factor.
type Pair struct {
	Factor int
	Index  int
}

// Table is a precomputed co-embedding: for every domain index, the list of
// codomain components whose source it is. A Table is immutable once built and
// safe for concurrent readers.
type Table struct {
	key  Key
	rows [][]Pair
}

// BuildTable scans every codomain component of e once and buckets it by its
// source. The lookups run under cfg; each row lists its codomain components
// in ascending order regardless.
func BuildTable(e *Embedding, cfg parallel.Config) *Table {
	type term struct {
		src, factor int
		ok          bool
	}
	terms := make([]term, e.codomain.Dim())
	parallel.For(len(terms), func(c int) {
		src, f, ok := e.Lookup(c)
		terms[c] = term{src: src, factor: f, ok: ok}
	}, cfg)

	rows := make([][]Pair, e.domain.Dim())
	for c, t := range terms {
		if t.ok {
			rows[t.src] = append(rows[t.src], Pair{Factor: t.factor, Index: c})
		}
	}
	return &Table{key: e.Key(), rows: rows}
}

// Key returns the key of the embedding the table was built from.
func (t *Table) Key() Key { return t.key }

// Len returns the number of domain rows.
func (t *Table) Len() int { return len(t.rows) }

// Pairs returns the co-embedding terms of domain index d.
// The slice is shared: callers must not modify it.
func (t *Table) Pairs(d int) []Pair { return t.rows[d] }

// Coembed implements Coembedder.
func (t *Table) Coembed(d int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for _, p := range t.rows[d] {
			if !yield(p.Factor, p.Index) {
				return
			}
		}
	}
}
