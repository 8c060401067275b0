package passwords

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of concurrent hash computations so a burst of
// sign-ins cannot starve the process of CPU and memory.
type Pool struct {
	inner Hasher
	sem   *semaphore.Weighted
}

// NewPool allows size concurrent operations; size <= 0 means GOMAXPROCS.
func NewPool(inner Hasher, size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{inner: inner, sem: semaphore.NewWeighted(int64(size))}
}

// Hash waits for a free slot or ctx cancellation.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)
	return p.inner.Hash(ctx, plaintext)
}

// Verify waits for a free slot or ctx cancellation.
func (p *Pool) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer p.sem.Release(1)
	return p.inner.Verify(ctx, plaintext, digest)
}
