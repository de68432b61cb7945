package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

const fingerprintLen = 16

func Blake3Hash(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Fingerprint is a shortened blake3 digest used to correlate uploads in logs.
func Fingerprint(data []byte) string {
	return Blake3Hash(data)[:fingerprintLen]
}
