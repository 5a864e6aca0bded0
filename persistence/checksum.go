package persistence

import "hash/crc32"

// CRC32 (IEEE) guards against accidental storage corruption. It is not
// cryptographically secure and makes no tamper-detection claims.

// ComputeChecksum computes the CRC32-IEEE checksum of data.
func ComputeChecksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
