// Package persistence serializes the whole database to a single binary
// snapshot file: a fixed little-endian header (magic, version, codec),
// an optionally compressed payload, and a CRC32 integrity checksum.
//
// The payload is written deterministically (collections sorted by name,
// metadata pairs sorted by key) so the same logical database always
// produces identical bytes regardless of map iteration order.
package persistence

// Snapshot is the serializable image of a database.
type Snapshot struct {
	Collections []CollectionSnapshot
}

// CollectionSnapshot is the serializable image of one collection.
type CollectionSnapshot struct {
	Name       string
	Dimension  uint32
	Metric     uint8
	Embeddings []EmbeddingSnapshot
}

// EmbeddingSnapshot is the serializable image of one embedding.
type EmbeddingSnapshot struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}
