package passwords

import "context"

// MultiHasher hashes with one primary algorithm and verifies any digest whose
// format it recognizes.
type MultiHasher struct {
	primary Hasher
	bcrypt  Hasher
	argon2  Hasher
}

func NewMultiHasher(primary, bcrypt, argon2 Hasher) *MultiHasher {
	return &MultiHasher{primary: primary, bcrypt: bcrypt, argon2: argon2}
}

func (m *MultiHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	return m.primary.Hash(ctx, plaintext)
}

func (m *MultiHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	switch {
	case isBcrypt(digest):
		return m.bcrypt.Verify(ctx, plaintext, digest)
	case isArgon2(digest):
		return m.argon2.Verify(ctx, plaintext, digest)
	}
	return false, ErrUnknownDigest
}
