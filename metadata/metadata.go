// Package metadata provides string-keyed embedding tags and an inverted
// index over them using Roaring Bitmaps, enabling filtered vector search
// without scanning every embedding's metadata at query time.
package metadata

// Metadata holds opaque string tags attached to an embedding,
// e.g. source session or timestamp.
type Metadata map[string]string

// Clone returns a deep copy of m. Nil stays nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Filter is a conjunction of exact key=value requirements.
// An empty or nil filter matches everything.
type Filter map[string]string

// Matches reports whether m satisfies every requirement in f.
func (f Filter) Matches(m Metadata) bool {
	for k, want := range f {
		if got, ok := m[k]; !ok || got != want {
			return false
		}
	}
	return true
}
