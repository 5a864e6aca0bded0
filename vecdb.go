package vecdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/metadata"
	"github.com/hupe1980/vecdb/persistence"
)

// DB is an embedded, single-process database of named collections backed
// by one snapshot file. The whole database lives in memory; Open loads it
// eagerly and Save/Close flush it back.
//
// DB is safe for concurrent use. Queries are read-only and run in
// parallel; mutating operations are serialized internally.
type DB struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	path        string
	opts        options
	closed      bool
}

// DefaultStorePath resolves the store file location from the VECDB_PATH
// environment variable, falling back to ".vecdb" in the user's home
// directory. The result is advisory; Open always takes an explicit path.
func DefaultStorePath() string {
	if path := os.Getenv("VECDB_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vecdb"
	}
	return filepath.Join(home, ".vecdb")
}

// Open loads the database stored at path, or creates a fresh empty one
// when the file does not exist yet (first run is recovery, not an error;
// missing parent directories are created at save time). A file that
// exists but cannot be decoded is a hard error: no partial recovery is
// attempted.
//
// Callers must call Close (or Save) to flush mutations back to disk;
// there is no finalizer safety net.
func Open(path string, optFns ...Option) (*DB, error) {
	opts := applyOptions(optFns)

	db := &DB{
		collections: make(map[string]*Collection),
		path:        path,
		opts:        opts,
	}

	snap, err := persistence.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			opts.logger.LogLoad(path, 0, true)
			return db, nil
		}
		return nil, fmt.Errorf("load store %s: %w", path, err)
	}

	if err := db.fromSnapshot(snap); err != nil {
		return nil, fmt.Errorf("load store %s: %w", path, err)
	}
	opts.logger.LogLoad(path, len(db.collections), false)
	return db, nil
}

// Path returns the store file path this database flushes to.
func (db *DB) Path() string {
	return db.path
}

// CreateCollection creates an empty collection with a fixed dimension and
// distance metric and returns its descriptor. Creating a name that
// already exists fails with ErrUniqueViolation; the existing collection
// is never overwritten.
func (db *DB) CreateCollection(name string, dimension int, metric distance.Metric) (Info, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return Info{}, ErrClosed
	}
	if _, exists := db.collections[name]; exists {
		return Info{}, fmt.Errorf("collection %q: %w", name, ErrUniqueViolation)
	}

	col, err := newCollection(name, dimension, metric, db.opts.parallelThreshold)
	if err != nil {
		return Info{}, err
	}
	db.collections[name] = col

	db.opts.logger.Debug("collection created",
		"name", name,
		"dimension", dimension,
		"metric", metric.String(),
	)
	return col.Info(), nil
}

// DeleteCollection removes the named collection and every embedding in
// it. Deleting an absent collection fails with ErrNotFound.
func (db *DB) DeleteCollection(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	if _, exists := db.collections[name]; !exists {
		return fmt.Errorf("collection %q: %w", name, ErrNotFound)
	}
	delete(db.collections, name)

	db.opts.logger.Debug("collection deleted", "name", name)
	return nil
}

// InsertIntoCollection appends an embedding to the named collection.
// The vector must match the collection dimension and the ID must be
// unique within the collection; for cosine collections the stored vector
// is unit-normalized first. Validation failures leave the collection
// unmodified.
func (db *DB) InsertIntoCollection(name string, e Embedding) error {
	start := time.Now()
	err := db.insert(name, e)
	db.opts.metricsCollector.RecordInsert(time.Since(start), err)
	db.opts.logger.LogInsert(name, e.ID, len(e.Vector), err)
	return err
}

func (db *DB) insert(name string, e Embedding) error {
	col, err := db.collection(name)
	if err != nil {
		return err
	}
	return col.insert(e)
}

// BatchInsert appends multiple embeddings to the named collection with a
// single collection lock acquisition. It returns one error slot per
// input; successful items stay inserted even when later items fail.
func (db *DB) BatchInsert(name string, embeddings []Embedding) []error {
	errs := make([]error, len(embeddings))

	col, err := db.collection(name)
	if err != nil {
		for i := range errs {
			errs[i] = err
		}
		return errs
	}

	start := time.Now()
	failed := 0

	col.mu.Lock()
	for i, e := range embeddings {
		if errs[i] = col.insertLocked(e); errs[i] != nil {
			failed++
		}
	}
	col.mu.Unlock()

	// One metrics sample per item, so batch failures show up in the
	// collector's error counts like single-insert failures do.
	perItem := time.Since(start)
	if len(embeddings) > 0 {
		perItem /= time.Duration(len(embeddings))
	}
	for _, err := range errs {
		db.opts.metricsCollector.RecordInsert(perItem, err)
	}
	if failed > 0 {
		db.opts.logger.Warn("batch insert completed with failures",
			"collection", name,
			"total", len(embeddings),
			"failed", failed,
		)
	} else {
		db.opts.logger.Debug("batch insert completed",
			"collection", name,
			"count", len(embeddings),
		)
	}
	return errs
}

// Query returns the k stored embeddings most similar to vector,
// best-first. The collection must exist and vector must match its
// dimension.
func (db *DB) Query(name string, vector []float32, k int) ([]SimilarityResult, error) {
	return db.QueryFiltered(name, vector, k, nil)
}

// QueryFiltered is Query restricted to embeddings whose metadata
// satisfies every key=value term of filter.
func (db *DB) QueryFiltered(name string, vector []float32, k int, filter metadata.Filter) ([]SimilarityResult, error) {
	start := time.Now()

	col, err := db.collection(name)
	if err != nil {
		db.opts.metricsCollector.RecordQuery(k, time.Since(start), err)
		db.opts.logger.LogQuery(name, k, 0, err)
		return nil, err
	}

	results, err := col.GetSimilarityFiltered(vector, k, filter)
	db.opts.metricsCollector.RecordQuery(k, time.Since(start), err)
	db.opts.logger.LogQuery(name, k, len(results), err)
	return results, err
}

// ListCollections returns all collection names, sorted. Order carries no
// meaning; sorting just keeps output stable.
func (db *DB) ListCollections() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCollection returns the named collection for direct read access.
// Absence is a valid outcome, not an error.
func (db *DB) GetCollection(name string) (*Collection, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	col, ok := db.collections[name]
	return col, ok
}

// Save flushes the whole database to the store file. Failures are hard
// errors; nothing is retried.
func (db *DB) Save() error {
	start := time.Now()
	err := db.save()
	db.opts.metricsCollector.RecordSave(time.Since(start), err)

	db.mu.RLock()
	count := len(db.collections)
	db.mu.RUnlock()
	db.opts.logger.LogSave(db.path, count, err)
	return err
}

func (db *DB) save() error {
	db.mu.RLock()
	if db.closed {
		db.mu.RUnlock()
		return ErrClosed
	}
	snap := db.toSnapshot()
	db.mu.RUnlock()

	return persistence.Save(db.path, snap, db.opts.codec)
}

// Close flushes the database and marks it closed; further operations
// fail with ErrClosed. A failed flush leaves the database open so the
// caller can fix the underlying problem and retry Close (or Save).
// Close after a successful Close is a no-op.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}

	snap := db.toSnapshot()
	err := persistence.Save(db.path, snap, db.opts.codec)
	db.opts.logger.LogSave(db.path, len(db.collections), err)
	if err != nil {
		return err
	}
	db.closed = true
	return nil
}

// collection looks up a collection under the read lock, translating
// absence and closed-state into errors.
func (db *DB) collection(name string) (*Collection, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrClosed
	}
	col, ok := db.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, ErrNotFound)
	}
	return col, nil
}

// toSnapshot captures the full database state. Caller holds db.mu.
func (db *DB) toSnapshot() *persistence.Snapshot {
	snap := &persistence.Snapshot{
		Collections: make([]persistence.CollectionSnapshot, 0, len(db.collections)),
	}
	for name, col := range db.collections {
		embeddings := col.snapshot()
		cs := persistence.CollectionSnapshot{
			Name:      name,
			Dimension: uint32(col.dimension),
			Metric:    uint8(col.metric),
		}
		if len(embeddings) > 0 {
			cs.Embeddings = make([]persistence.EmbeddingSnapshot, len(embeddings))
			for i, e := range embeddings {
				cs.Embeddings[i] = persistence.EmbeddingSnapshot{
					ID:       e.ID,
					Vector:   e.Vector,
					Metadata: e.Metadata,
				}
			}
		}
		snap.Collections = append(snap.Collections, cs)
	}
	return snap
}

// fromSnapshot rebuilds in-memory state from a decoded snapshot.
// Vectors are stored as-is: cosine vectors were normalized before the
// snapshot was written. The metadata filter index is derived data and is
// rebuilt here rather than persisted.
func (db *DB) fromSnapshot(snap *persistence.Snapshot) error {
	for _, cs := range snap.Collections {
		metric := distance.Metric(cs.Metric)
		if !metric.Valid() {
			return fmt.Errorf("%w: collection %q has unknown metric %d", persistence.ErrCorrupt, cs.Name, cs.Metric)
		}
		if _, exists := db.collections[cs.Name]; exists {
			return fmt.Errorf("%w: duplicate collection %q", persistence.ErrCorrupt, cs.Name)
		}

		col, err := newCollection(cs.Name, int(cs.Dimension), metric, db.opts.parallelThreshold)
		if err != nil {
			return err
		}

		col.embeddings = make([]Embedding, 0, len(cs.Embeddings))
		for i, es := range cs.Embeddings {
			if len(es.Vector) != col.dimension {
				return fmt.Errorf("%w: embedding %q in %q has dimension %d, want %d",
					persistence.ErrCorrupt, es.ID, cs.Name, len(es.Vector), col.dimension)
			}
			col.embeddings = append(col.embeddings, Embedding{
				ID:       es.ID,
				Vector:   es.Vector,
				Metadata: metadata.Metadata(es.Metadata),
			})
			col.filterIdx.Add(uint32(i), metadata.Metadata(es.Metadata))
		}
		db.collections[cs.Name] = col
	}
	return nil
}
