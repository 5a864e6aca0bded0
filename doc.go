// Package vecdb provides an embedded vector collection store for Go.
//
// A vecdb database is a process-local map of named collections, each
// holding fixed-dimension float32 embeddings with optional string
// metadata. Collections answer exact k-nearest-neighbor queries by a
// distance metric fixed at creation (Cosine, Euclidean or DotProduct);
// cosine collections unit-normalize vectors at insert time so query
// scoring reduces to a dot product.
//
// The whole database lives in memory and is backed by a single binary
// snapshot file: Open loads it eagerly, Save and Close flush it back
// atomically with an integrity checksum.
//
// # Quick start
//
//	db, err := vecdb.Open(vecdb.DefaultStorePath())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.CreateCollection("docs", 3, distance.MetricCosine); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = db.InsertIntoCollection("docs", vecdb.NewEmbedding("a", []float32{1, 0, 0}, metadata.Metadata{
//	    "session": "2024-06-01",
//	}))
//
//	results, err := db.Query("docs", []float32{1, 0, 0}, 2)
//
// Queries never mutate stored state; inserts are append-only. There is
// no per-embedding update or delete, only whole-collection deletion.
//
// # Filtered queries
//
// Each collection keeps a Roaring Bitmap inverted index over metadata,
// so queries can be restricted to embeddings matching exact key=value
// terms without scanning every candidate:
//
//	results, err := db.QueryFiltered("docs", query, 5, metadata.Filter{"session": "2024-06-01"})
//
// # Backup
//
// Snapshots can be shipped to object storage (S3, MinIO, local
// directories) through the blobstore subpackage; see DB.Backup and
// Restore.
package vecdb
