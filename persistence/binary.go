package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

var byteOrder = binary.LittleEndian

// encodePayload serializes snap into the deterministic binary payload.
func encodePayload(snap *Snapshot) []byte {
	var buf bytes.Buffer

	cols := make([]CollectionSnapshot, len(snap.Collections))
	copy(cols, snap.Collections)
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })

	writeUint32(&buf, uint32(len(cols)))
	for _, col := range cols {
		writeString(&buf, col.Name)
		writeUint32(&buf, col.Dimension)
		buf.WriteByte(col.Metric)
		writeUint32(&buf, uint32(len(col.Embeddings)))
		for _, emb := range col.Embeddings {
			writeString(&buf, emb.ID)
			writeFloat32Slice(&buf, emb.Vector)
			writeMetadata(&buf, emb.Metadata)
		}
	}
	return buf.Bytes()
}

// decodePayload parses the binary payload produced by encodePayload.
// Any malformed length or truncated section fails with ErrCorrupt.
func decodePayload(data []byte) (*Snapshot, error) {
	r := bytes.NewReader(data)

	numCols, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if numCols > maxCollections {
		return nil, fmt.Errorf("%w: collection count %d", ErrCorrupt, numCols)
	}

	snap := &Snapshot{Collections: make([]CollectionSnapshot, 0, numCols)}
	for i := uint32(0); i < numCols; i++ {
		col, err := readCollection(r)
		if err != nil {
			return nil, err
		}
		snap.Collections = append(snap.Collections, col)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.Len())
	}
	return snap, nil
}

func readCollection(r *bytes.Reader) (CollectionSnapshot, error) {
	var col CollectionSnapshot

	name, err := readString(r)
	if err != nil {
		return col, err
	}
	dimension, err := readUint32(r)
	if err != nil {
		return col, err
	}
	if dimension == 0 || dimension > maxDimension {
		return col, fmt.Errorf("%w: dimension %d", ErrCorrupt, dimension)
	}
	metric, err := r.ReadByte()
	if err != nil {
		return col, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	count, err := readUint32(r)
	if err != nil {
		return col, err
	}
	if count > maxEmbeddings {
		return col, fmt.Errorf("%w: embedding count %d", ErrCorrupt, count)
	}

	col.Name = name
	col.Dimension = dimension
	col.Metric = metric
	if count > 0 {
		col.Embeddings = make([]EmbeddingSnapshot, 0, min(count, 1<<16))
		for i := uint32(0); i < count; i++ {
			emb, err := readEmbedding(r, dimension)
			if err != nil {
				return col, err
			}
			col.Embeddings = append(col.Embeddings, emb)
		}
	}
	return col, nil
}

func readEmbedding(r *bytes.Reader, dimension uint32) (EmbeddingSnapshot, error) {
	var emb EmbeddingSnapshot

	id, err := readString(r)
	if err != nil {
		return emb, err
	}
	vec, err := readFloat32Slice(r, int(dimension))
	if err != nil {
		return emb, err
	}
	md, err := readMetadata(r)
	if err != nil {
		return emb, err
	}

	emb.ID = id
	emb.Vector = vec
	emb.Metadata = md
	return emb, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	byteOrder.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return byteOrder.Uint32(b[:]), nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", fmt.Errorf("%w: string length %d", ErrCorrupt, n)
	}
	if uint32(r.Len()) < n {
		return "", fmt.Errorf("%w: truncated string", ErrCorrupt)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return string(b), nil
}

func writeFloat32Slice(buf *bytes.Buffer, vec []float32) {
	var b [4]byte
	for _, f := range vec {
		byteOrder.PutUint32(b[:], math.Float32bits(f))
		buf.Write(b[:])
	}
}

func readFloat32Slice(r *bytes.Reader, count int) ([]float32, error) {
	if r.Len() < count*4 {
		return nil, fmt.Errorf("%w: truncated vector", ErrCorrupt)
	}
	vec := make([]float32, count)
	var b [4]byte
	for i := range vec {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		vec[i] = math.Float32frombits(byteOrder.Uint32(b[:]))
	}
	return vec, nil
}

func writeMetadata(buf *bytes.Buffer, md map[string]string) {
	writeUint32(buf, uint32(len(md)))
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeString(buf, k)
		writeString(buf, md[k])
	}
}

func readMetadata(r *bytes.Reader) (map[string]string, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n > maxMetadataKeys {
		return nil, fmt.Errorf("%w: metadata size %d", ErrCorrupt, n)
	}
	md := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, err
		}
		md[k] = v
	}
	return md, nil
}
