// Package passwords turns plaintext passwords into one-way digests and checks
// candidates against stored digests.
package passwords

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

var (
	// ErrPasswordTooLong is returned for inputs bcrypt would otherwise truncate.
	ErrPasswordTooLong = errors.New("passwords: password exceeds 72 bytes")
	// ErrUnknownDigest means the stored digest is in no supported format.
	ErrUnknownDigest = errors.New("passwords: unrecognized digest format")
	// ErrMalformedDigest means the digest prefix matched but it failed to parse.
	ErrMalformedDigest = errors.New("passwords: malformed digest")
)

// Hasher produces and verifies password digests. Implementations never
// include plaintext or digests in returned errors.
type Hasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}

// Algorithm names a supported digest scheme.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// ParseAlgorithm accepts "bcrypt" or "argon2id", case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmBcrypt, AlgorithmArgon2id:
		return a, nil
	}
	return "", fmt.Errorf("unknown hash algorithm %q", s)
}

// New returns the hasher used for new digests wrapped in a MultiHasher so
// that digests produced by either algorithm keep verifying.
func New(alg Algorithm) (*MultiHasher, error) {
	bc := NewBcryptHasher(DefaultBcryptCost)
	ar := NewArgon2Hasher(DefaultArgon2Params)

	switch alg {
	case AlgorithmBcrypt, "":
		return NewMultiHasher(bc, bc, ar), nil
	case AlgorithmArgon2id:
		return NewMultiHasher(ar, bc, ar), nil
	}
	return nil, fmt.Errorf("unknown hash algorithm %q", alg)
}

// AlgorithmOf reports which scheme produced digest, or "" if none did.
func AlgorithmOf(digest string) Algorithm {
	switch {
	case isBcrypt(digest):
		return AlgorithmBcrypt
	case isArgon2(digest):
		return AlgorithmArgon2id
	}
	return ""
}

// DecoyDigests hashes one random value with every supported algorithm at
// its default cost. Verifying against them costs the same as verifying a
// real record of that algorithm.
func DecoyDigests(ctx context.Context) (map[Algorithm]string, error) {
	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}

	out := make(map[Algorithm]string, 2)
	for alg, h := range map[Algorithm]Hasher{
		AlgorithmBcrypt:   NewBcryptHasher(DefaultBcryptCost),
		AlgorithmArgon2id: NewArgon2Hasher(DefaultArgon2Params),
	} {
		d, err := h.Hash(ctx, seed)
		if err != nil {
			return nil, fmt.Errorf("decoy %s: %w", alg, err)
		}
		out[alg] = d
	}
	return out, nil
}
