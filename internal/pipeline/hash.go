package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DuplicateHash computes the stable content hash used to suppress re-saving
// the same posting: SHA-256 over lowercased, trimmed company|title|location.
func DuplicateHash(company, title, location string) string {
	input := strings.Join([]string{
		normalizeField(company),
		normalizeField(title),
		normalizeField(location),
	}, "|")
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
