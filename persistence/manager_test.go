package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Collections: []CollectionSnapshot{
			{
				Name:      "docs",
				Dimension: 3,
				Metric:    0,
				Embeddings: []EmbeddingSnapshot{
					{ID: "a", Vector: []float32{1, 0, 0}, Metadata: map[string]string{"lang": "go", "kind": "doc"}},
					{ID: "b", Vector: []float32{0, 1, 0}},
				},
			},
			{
				Name:       "empty",
				Dimension:  8,
				Metric:     1,
				Embeddings: nil,
			},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecZstd, CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			snap := sampleSnapshot()
			data, err := Encode(snap, codec)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, snap, got)
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	// Collections and metadata are sorted on write, so two snapshots with
	// the same logical content must produce identical bytes.
	a := &Snapshot{Collections: []CollectionSnapshot{
		{Name: "z", Dimension: 1, Embeddings: []EmbeddingSnapshot{{ID: "1", Vector: []float32{1}, Metadata: map[string]string{"a": "1", "b": "2", "c": "3"}}}},
		{Name: "a", Dimension: 1},
	}}
	b := &Snapshot{Collections: []CollectionSnapshot{
		{Name: "a", Dimension: 1},
		{Name: "z", Dimension: 1, Embeddings: []EmbeddingSnapshot{{ID: "1", Vector: []float32{1}, Metadata: map[string]string{"c": "3", "b": "2", "a": "1"}}}},
	}}

	bytesA, err := Encode(a, CodecNone)
	require.NoError(t, err)
	bytesB, err := Encode(b, CodecNone)
	require.NoError(t, err)
	assert.Equal(t, bytesA, bytesB)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "store.db")
	snap := sampleSnapshot()

	require.NoError(t, Save(path, snap, CodecZstd))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestDecodeRejectsCorruption(t *testing.T) {
	valid, err := Encode(sampleSnapshot(), CodecNone)
	require.NoError(t, err)

	t.Run("TooShort", func(t *testing.T) {
		_, err := Decode(valid[:10])
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("BadMagic", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[0] ^= 0xFF
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("BadVersion", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[4] ^= 0xFF
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("BadCodec", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[8] = 0x7F
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrInvalidCodec)
	})

	t.Run("FlippedPayloadBit", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[len(data)-1] ^= 0x01
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrChecksumFailure)
	})

	t.Run("TruncatedPayload", func(t *testing.T) {
		data := append([]byte(nil), valid[:len(valid)-4]...)
		_, err := Decode(data)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestEncodeInvalidCodec(t *testing.T) {
	_, err := Encode(sampleSnapshot(), Codec(99))
	assert.ErrorIs(t, err, ErrInvalidCodec)

	err = Save(filepath.Join(t.TempDir(), "x.db"), sampleSnapshot(), Codec(99))
	assert.ErrorIs(t, err, ErrInvalidCodec)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	first := &Snapshot{Collections: []CollectionSnapshot{{Name: "one", Dimension: 2}}}
	require.NoError(t, Save(path, first, CodecNone))

	second := sampleSnapshot()
	require.NoError(t, Save(path, second, CodecLZ4))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestDecodeEmptySnapshot(t *testing.T) {
	data, err := Encode(&Snapshot{}, CodecNone)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, got.Collections)
}
