package persistence

import "errors"

const (
	// MagicNumber identifies vecdb snapshot files (ASCII: "VDB1").
	MagicNumber = 0x56444231
	// Version is the current file format version (v1.0.0).
	// Readers reject any other version outright; there is no migration.
	Version = 0x00010000

	headerSize = 20
)

var (
	ErrInvalidMagic    = errors.New("invalid magic number")
	ErrInvalidVersion  = errors.New("unsupported version")
	ErrInvalidCodec    = errors.New("unknown compression codec")
	ErrChecksumFailure = errors.New("checksum mismatch")
	ErrCorrupt         = errors.New("corrupt snapshot")
)

// Codec selects the compression applied to the snapshot payload.
// The codec byte is recorded in the header, so readers always decode
// with whatever codec the file was written with.
type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecZstd:
		return "Zstd"
	case CodecLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is a known codec.
func (c Codec) Valid() bool {
	return c <= CodecLZ4
}

// Decode limits. A corrupt length field fails fast instead of driving a
// multi-gigabyte allocation.
const (
	maxStringLen    = 1 << 20 // 1 MiB per id/name/metadata string
	maxCollections  = 1 << 20
	maxEmbeddings   = 1 << 28
	maxMetadataKeys = 1 << 16
	maxDimension    = 1 << 20
)
