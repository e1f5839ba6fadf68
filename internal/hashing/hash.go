// Package hashing computes BLAKE3 content digests for duplicate
// detection.
package hashing

import (
	"encoding/hex"
	"os"

	"github.com/edsrzf/mmap-go"
	"lukechampine.com/blake3"
)

// mmapThreshold is the size at which hashing switches from reading the
// whole file to mapping it read-only.
const mmapThreshold = 128 * 1024

// Sum returns the lowercase hex BLAKE3-256 digest of the file at path.
// size is the stat-reported length and selects the read strategy; empty
// files are hashed without touching the filesystem.
func Sum(path string, size int64) (string, error) {
	if size == 0 {
		sum := blake3.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}

	if size < mmapThreshold {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer m.Unmap()

	sum := blake3.Sum256(m)
	return hex.EncodeToString(sum[:]), nil
}
