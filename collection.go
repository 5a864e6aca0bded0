package vecdb

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/metadata"
	"github.com/hupe1980/vecdb/queue"
)

// defaultParallelThreshold is the collection size above which the scan
// fans out across GOMAXPROCS workers. Below it the per-goroutine
// overhead outweighs the win.
const defaultParallelThreshold = 2048

// Collection is a named, fixed-dimension, fixed-metric set of embeddings.
// Dimension and metric are immutable for the collection's lifetime.
//
// Storage is a plain append-only slice: insertion order is the only order,
// and queries scan linearly. Every stored vector has exactly Dimension
// elements; cosine collections additionally store unit-normalized vectors
// so query-time scoring reduces to a dot product.
//
// A Collection is safe for concurrent use: reads take a shared lock,
// mutations (driven by the owning DB) take an exclusive one.
type Collection struct {
	mu sync.RWMutex

	name       string
	dimension  int
	metric     distance.Metric
	scoreFn    distance.Func
	embeddings []Embedding
	filterIdx  *metadata.Index

	parallelThreshold int
}

// Info is a point-in-time descriptor of a collection.
type Info struct {
	Name      string
	Dimension int
	Metric    distance.Metric
	Count     int
}

func newCollection(name string, dimension int, metric distance.Metric, parallelThreshold int) (*Collection, error) {
	if dimension <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dimension}
	}
	scoreFn, err := distance.Provider(metric)
	if err != nil {
		return nil, err
	}
	if parallelThreshold <= 0 {
		parallelThreshold = defaultParallelThreshold
	}
	return &Collection{
		name:              name,
		dimension:         dimension,
		metric:            metric,
		scoreFn:           scoreFn,
		filterIdx:         metadata.NewIndex(),
		parallelThreshold: parallelThreshold,
	}, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Dimension returns the fixed vector length of the collection.
func (c *Collection) Dimension() int { return c.dimension }

// Metric returns the distance metric fixed at creation.
func (c *Collection) Metric() distance.Metric { return c.metric }

// Len returns the number of stored embeddings.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.embeddings)
}

// Info returns a point-in-time descriptor of the collection.
func (c *Collection) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Info{
		Name:      c.name,
		Dimension: c.dimension,
		Metric:    c.metric,
		Count:     len(c.embeddings),
	}
}

// insert validates and appends a deep copy of e. It is all-or-nothing:
// any validation failure leaves the collection unmodified.
func (c *Collection) insert(e Embedding) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(e)
}

func (c *Collection) insertLocked(e Embedding) error {
	if len(e.Vector) != c.dimension {
		return &ErrDimensionMismatch{Expected: c.dimension, Actual: len(e.Vector)}
	}

	// Linear uniqueness scan. Fine at the expected collection sizes; an
	// id set would trade memory for speed if collections grow large.
	for i := range c.embeddings {
		if c.embeddings[i].ID == e.ID {
			return ErrUniqueViolation
		}
	}

	stored := e.clone()
	if c.metric == distance.MetricCosine {
		if !distance.NormalizeL2InPlace(stored.Vector) {
			return ErrZeroVector
		}
	}

	pos := uint32(len(c.embeddings))
	c.embeddings = append(c.embeddings, stored)
	c.filterIdx.Add(pos, stored.Metadata)
	return nil
}

// GetSimilarity returns up to k stored embeddings most similar to query,
// best-first. k greater than the collection size returns everything
// sorted; k == 0 or an empty collection returns an empty result without
// error. Ties order by insertion index.
func (c *Collection) GetSimilarity(query []float32, k int) ([]SimilarityResult, error) {
	return c.GetSimilarityFiltered(query, k, nil)
}

// GetSimilarityFiltered is GetSimilarity restricted to embeddings whose
// metadata satisfies every key=value term of filter. A nil or empty
// filter matches everything.
func (c *Collection) GetSimilarityFiltered(query []float32, k int, filter metadata.Filter) ([]SimilarityResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(query) != c.dimension {
		return nil, &ErrDimensionMismatch{Expected: c.dimension, Actual: len(query)}
	}
	if k < 0 {
		k = 0
	}
	if k == 0 || len(c.embeddings) == 0 {
		return []SimilarityResult{}, nil
	}

	cache := distance.CacheAttr(c.metric, query)
	if c.metric == distance.MetricCosine && cache == 0 {
		return nil, ErrZeroVector
	}

	var positions []uint32
	if bm := c.filterIdx.Candidates(filter); bm != nil {
		if bm.IsEmpty() {
			return []SimilarityResult{}, nil
		}
		positions = bm.ToArray()
	}

	top := c.scan(query, cache, k, positions)

	ranked := top.Drain()
	results := make([]SimilarityResult, len(ranked))
	for i, si := range ranked {
		results[i] = SimilarityResult{
			Score:     si.Score,
			Embedding: c.embeddings[si.Index].clone(),
		}
	}
	return results, nil
}

// scan scores candidates against the query and keeps the k best.
// positions == nil means every stored embedding is a candidate.
// Scoring is pure and read-only, so large scans fan out across
// GOMAXPROCS workers over disjoint ranges with a bounded queue each,
// merged at the end.
func (c *Collection) scan(query []float32, cache float32, k int, positions []uint32) *queue.TopK {
	n := len(c.embeddings)
	if positions != nil {
		n = len(positions)
	}

	workers := runtime.GOMAXPROCS(0)
	if n < c.parallelThreshold || workers < 2 {
		top := queue.NewTopK(k)
		c.scoreRange(query, cache, 0, n, positions, top)
		return top
	}
	if workers > n {
		workers = n
	}

	partials := make([]*queue.TopK, workers)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		partial := queue.NewTopK(k)
		partials[w] = partial
		g.Go(func() error {
			c.scoreRange(query, cache, start, end, positions, partial)
			return nil
		})
	}
	// Workers never fail; errgroup only provides the join.
	_ = g.Wait()

	top := partials[0]
	for _, partial := range partials[1:] {
		top.Merge(partial)
	}
	return top
}

// scoreRange scores candidates [start, end) into top. When positions is
// nil the range indexes the embedding slice directly.
func (c *Collection) scoreRange(query []float32, cache float32, start, end int, positions []uint32, top *queue.TopK) {
	for i := start; i < end; i++ {
		pos := uint32(i)
		if positions != nil {
			pos = positions[i]
		}
		score := c.scoreFn(c.embeddings[pos].Vector, query, cache)
		top.Push(queue.ScoreIndex{Score: score, Index: pos})
	}
}

// snapshot returns copies of all embeddings for serialization.
func (c *Collection) snapshot() []Embedding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Embedding, len(c.embeddings))
	for i := range c.embeddings {
		out[i] = c.embeddings[i].clone()
	}
	return out
}
