package vecdb

import (
	"slices"

	"github.com/google/uuid"

	"github.com/hupe1980/vecdb/metadata"
)

// Embedding is the atomic stored unit: an identifier, a fixed-length
// float32 vector and optional string-keyed metadata. Embeddings are
// immutable once inserted and live until their collection is deleted.
type Embedding struct {
	ID       string
	Vector   []float32
	Metadata metadata.Metadata
}

// NewEmbedding creates an embedding, generating a random UUID when id is
// empty.
func NewEmbedding(id string, vector []float32, md metadata.Metadata) Embedding {
	if id == "" {
		id = uuid.NewString()
	}
	return Embedding{
		ID:       id,
		Vector:   vector,
		Metadata: md,
	}
}

// clone returns a deep copy so stored state never aliases caller memory.
func (e Embedding) clone() Embedding {
	return Embedding{
		ID:       e.ID,
		Vector:   slices.Clone(e.Vector),
		Metadata: e.Metadata.Clone(),
	}
}

// SimilarityResult pairs an embedding with its similarity score for a
// query. Higher scores are more similar for every metric.
type SimilarityResult struct {
	Score     float32
	Embedding Embedding
}
