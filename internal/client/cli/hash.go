package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/server/passwords"
)

// hash prints a digest for a prompted password without contacting the
// server, for seeding credential records by hand.
func (a *App) hash(ctx context.Context, args []string) error {
	fs := newFlagSet("hash")
	alg := fs.String("alg", string(passwords.AlgorithmBcrypt), "bcrypt or argon2id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	algorithm, err := passwords.ParseAlgorithm(*alg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	h, err := passwords.New(algorithm)
	if err != nil {
		return err
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	digest, err := h.Hash(ctx, pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, digest)
	return nil
}
