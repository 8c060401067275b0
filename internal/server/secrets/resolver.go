// Package secrets resolves configuration values that may point at a secret
// stored elsewhere. A value of the form
//
//	secretref:<provider>:<ref>
//
// is handed to the named provider; any other value is used literally.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const refPrefix = "secretref:"

// ErrEmptySecret is returned when a provider resolves to an empty value.
var ErrEmptySecret = errors.New("secret resolved to an empty value")

// Provider fetches the secret named by ref.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

// Resolver dispatches secret references to registered providers.
type Resolver struct {
	providers map[string]Provider
}

func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider. Nil providers are ignored.
func (r *Resolver) Register(p Provider) {
	if p == nil {
		return
	}
	r.providers[p.Name()] = p
}

// ParseRef splits "secretref:<provider>:<ref>".
func ParseRef(value string) (provider, ref string, ok bool) {
	if !strings.HasPrefix(value, refPrefix) {
		return "", "", false
	}
	provider, ref, found := strings.Cut(strings.TrimPrefix(value, refPrefix), ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

// Resolve returns value itself unless it starts with "secretref:". A
// reference that is malformed, names an unknown provider or resolves to ""
// is an error.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !strings.HasPrefix(value, refPrefix) {
		return value, nil
	}

	name, ref, ok := ParseRef(value)
	if !ok {
		return "", errors.New("malformed secret reference, want secretref:<provider>:<ref>")
	}
	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("secret provider %q is not registered", name)
	}

	secret, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret provider %q: %w", name, err)
	}
	if secret == "" {
		return "", fmt.Errorf("secret provider %q: %w", name, ErrEmptySecret)
	}
	return secret, nil
}
