package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// ChecksumText computes a deterministic content checksum for passage text
// using BLAKE2b. Identical text always produces the identical checksum,
// which lets corpus rebuilds detect unchanged chunks.
func ChecksumText(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
