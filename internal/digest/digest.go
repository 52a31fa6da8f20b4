// Package digest computes the hex-encoded content digest shown in rendered
// documents.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm names a supported hash function.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// Digest is a computed content hash.
type Digest struct {
	Algorithm Algorithm `json:"algorithm"`
	Hex       string    `json:"hex"`
}

// Label returns the upper-case algorithm name used in the document header.
func (d Digest) Label() string {
	return strings.ToUpper(string(d.Algorithm))
}

// String renders the digest as "LABEL: hex".
func (d Digest) String() string {
	return d.Label() + ": " + d.Hex
}

// Parse resolves an algorithm name. The empty string selects SHA256.
func Parse(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm %q: must be one of sha256, blake3", name)
	}
}

// Sum hashes data with the given algorithm.
func Sum(alg Algorithm, data []byte) (Digest, error) {
	switch alg {
	case SHA256, "":
		sum := sha256.Sum256(data)
		return Digest{Algorithm: SHA256, Hex: hex.EncodeToString(sum[:])}, nil
	case BLAKE3:
		sum := blake3.Sum256(data)
		return Digest{Algorithm: BLAKE3, Hex: hex.EncodeToString(sum[:])}, nil
	default:
		return Digest{}, fmt.Errorf("unsupported digest algorithm %q", alg)
	}
}
