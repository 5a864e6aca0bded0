package vecdb

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecdb/blobstore"
	"github.com/hupe1980/vecdb/persistence"
)

// Backup writes the current database state to a blob store under the
// given name, in exactly the snapshot file format. Backup failures are
// hard errors; the local store file is untouched either way.
func (db *DB) Backup(ctx context.Context, store blobstore.Store, name string) error {
	db.mu.RLock()
	if db.closed {
		db.mu.RUnlock()
		return ErrClosed
	}
	snap := db.toSnapshot()
	db.mu.RUnlock()

	data, err := persistence.Encode(snap, db.opts.codec)
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("upload backup %q: %w", name, err)
	}

	db.opts.logger.Info("backup uploaded", "name", name, "bytes", len(data))
	return nil
}

// Restore fetches a named backup from a blob store, validates it and
// opens it as a database flushing to path. The blob is decoded before
// anything is written locally, so a corrupt backup never clobbers an
// existing store file.
func Restore(ctx context.Context, store blobstore.Store, name, path string, optFns ...Option) (*DB, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch backup %q: %w", name, err)
	}

	snap, err := persistence.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode backup %q: %w", name, err)
	}

	opts := applyOptions(optFns)
	db := &DB{
		collections: make(map[string]*Collection),
		path:        path,
		opts:        opts,
	}
	if err := db.fromSnapshot(snap); err != nil {
		return nil, fmt.Errorf("restore backup %q: %w", name, err)
	}

	if err := db.Save(); err != nil {
		return nil, err
	}
	return db, nil
}
