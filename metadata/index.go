package metadata

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// termSep joins key and value into a single posting-list term.
// NUL cannot appear in a Go map key coming from user metadata keys in
// practice, and even if it does the worst case is a posting list shared
// by two distinct terms, which only widens the candidate set.
const termSep = "\x00"

// Index is an inverted index from key=value terms to embedding positions.
// Positions are append-only, matching collection storage: entries are never
// removed individually, only the whole index is dropped or rebuilt.
//
// Index is not safe for concurrent mutation; the owning collection
// serializes writes.
type Index struct {
	postings map[string]*roaring.Bitmap
}

// NewIndex creates an empty inverted index.
func NewIndex() *Index {
	return &Index{
		postings: make(map[string]*roaring.Bitmap),
	}
}

// Add records the metadata of the embedding stored at pos.
func (ix *Index) Add(pos uint32, m Metadata) {
	for k, v := range m {
		term := k + termSep + v
		bm, ok := ix.postings[term]
		if !ok {
			bm = roaring.New()
			ix.postings[term] = bm
		}
		bm.Add(pos)
	}
}

// Candidates returns the positions matching every term of f as the
// intersection of the term posting lists. A nil return means "no
// restriction" (empty filter); an empty bitmap means nothing matches.
func (ix *Index) Candidates(f Filter) *roaring.Bitmap {
	if len(f) == 0 {
		return nil
	}

	var acc *roaring.Bitmap
	for k, v := range f {
		bm, ok := ix.postings[k+termSep+v]
		if !ok {
			return roaring.New()
		}
		if acc == nil {
			acc = bm.Clone()
			continue
		}
		acc.And(bm)
		if acc.IsEmpty() {
			return acc
		}
	}
	return acc
}

// Cardinality returns the number of distinct terms indexed.
func (ix *Index) Cardinality() int {
	return len(ix.postings)
}
