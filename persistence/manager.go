package persistence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Save serializes snap and writes it to path atomically: the bytes go to
// a temp file in the target directory which is fsynced and renamed over
// path, so a crash mid-save never leaves a half-written snapshot behind.
// Missing parent directories are created.
func Save(path string, snap *Snapshot, codec Codec) error {
	data, err := Encode(snap, codec)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Load reads and deserializes the snapshot at path. A missing file is
// reported via os.IsNotExist on the returned error; callers decide
// whether first-run recovery applies. Any structural problem (bad magic,
// unsupported version, checksum mismatch, malformed payload) is a hard
// error with no partial result.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode deserializes a snapshot from raw file bytes.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrCorrupt, len(data))
	}

	r := bytes.NewReader(data)
	magic, _ := readUint32(r)
	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, magic)
	}
	version, _ := readUint32(r)
	if version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, version)
	}
	codecByte, _ := r.ReadByte()
	codec := Codec(codecByte)
	if !codec.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCodec, codecByte)
	}
	var reserved [3]byte
	_, _ = r.Read(reserved[:])
	payloadLen, _ := readUint32(r)
	checksum, _ := readUint32(r)

	payload := data[headerSize:]
	if uint32(len(payload)) != payloadLen {
		return nil, fmt.Errorf("%w: payload length %d, header says %d", ErrCorrupt, len(payload), payloadLen)
	}
	if ComputeChecksum(payload) != checksum {
		return nil, ErrChecksumFailure
	}

	raw, err := decompress(codec, payload)
	if err != nil {
		return nil, err
	}
	return decodePayload(raw)
}

// Encode serializes snap to file bytes without touching the filesystem.
// It mirrors exactly what Save writes.
func Encode(snap *Snapshot, codec Codec) ([]byte, error) {
	if !codec.Valid() {
		return nil, ErrInvalidCodec
	}
	payload, err := compress(codec, encodePayload(snap))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writeUint32(&buf, MagicNumber)
	writeUint32(&buf, Version)
	buf.WriteByte(byte(codec))
	buf.Write([]byte{0, 0, 0})
	writeUint32(&buf, uint32(len(payload)))
	writeUint32(&buf, ComputeChecksum(payload))
	buf.Write(payload)
	return buf.Bytes(), nil
}
