// Package services contains server-side business logic. This file implements
// UserService, which handles sign-up, sign-in and the account lookups exposed
// to authenticated callers.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/metrics"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/passwords"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/users"
)

// Paging defaults for ListUsers.
const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(subject, email string, role auth.Role) (string, error)
}

// UserService provides account operations:
// - SignUp: create a credential record
// - SignIn: verify credentials and mint a session token
// - GetUser / ListUsers: read access for authenticated callers
// - UpdateUser / DeleteUser: changes by the record's owner or an admin
type UserService struct {
	users   users.Repository
	hasher  passwords.Hasher
	tokens  TokenIssuer
	logger  logging.Logger
	metrics *metrics.Recorder

	// decoy is verified against when the email is unknown so that both
	// failure paths cost one digest comparison.
	decoy string

	// decoys per algorithm; the one matching the most common stored
	// digest among recent lookups is used instead of decoy.
	decoys map[passwords.Algorithm]string
	mu     sync.Mutex
	seen   map[passwords.Algorithm]int
}

// Option configures a UserService.
type Option func(*UserService)

// WithDecoys supplies one decoy digest per algorithm (see
// passwords.DecoyDigests). Digests in no known format are ignored.
func WithDecoys(digests map[passwords.Algorithm]string) Option {
	return func(s *UserService) {
		for alg, d := range digests {
			if passwords.AlgorithmOf(d) == alg {
				s.decoys[alg] = d
			}
		}
	}
}

// NewUserService wires the service. It computes the decoy digest up front,
// so it fails if the hasher does.
func NewUserService(ctx context.Context, repo users.Repository, hasher passwords.Hasher, tokens TokenIssuer, logger logging.Logger, rec *metrics.Recorder, opts ...Option) (*UserService, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("decoy seed: %w", err)
	}
	decoy, err := hasher.Hash(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("decoy digest: %w", err)
	}

	s := &UserService{
		users:   repo,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger.With("module", "services.users"),
		metrics: rec,
		decoy:   decoy,
		decoys:  make(map[passwords.Algorithm]string),
		seen:    make(map[passwords.Algorithm]int),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// observe counts the algorithm of a stored digest seen at sign-in.
func (s *UserService) observe(digest string) {
	alg := passwords.AlgorithmOf(digest)
	if alg == "" {
		return
	}
	s.mu.Lock()
	s.seen[alg]++
	s.mu.Unlock()
}

// decoyDigest returns the decoy for the algorithm most stored records
// observed so far use, falling back to the primary algorithm's decoy.
func (s *UserService) decoyDigest() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	best, bestN := "", 0
	for alg, n := range s.seen {
		if d, ok := s.decoys[alg]; ok && n > bestN {
			best, bestN = d, n
		}
	}
	if best == "" {
		return s.decoy
	}
	return best
}

// NormalizeEmail trims and lower-cases an address; records are keyed on it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a credential record and returns its public profile.
// An unknown or empty role is stored as auth.RoleUser.
func (s *UserService) SignUp(ctx context.Context, email, password, role string) (*models.Profile, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		s.metrics.SignUp(ctx, "invalid")
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorCredentialCreationFailed)
	}

	r, ok := auth.NormalizeRole(role)
	if !ok {
		s.logger.Warn(ctx, "unknown role requested at sign-up, using default", "requested_role", role, "role", r)
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.metrics.SignUp(ctx, "failed")
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorCredentialCreationFailed, err)
	}

	u, err := s.users.Create(ctx, &models.User{Email: email, PasswordHash: digest, Role: r})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.metrics.SignUp(ctx, "duplicate")
			return nil, common.ErrorDuplicateCredential
		}
		s.metrics.SignUp(ctx, "failed")
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorCredentialCreationFailed, err)
	}

	s.metrics.SignUp(ctx, "created")
	s.logger.Info(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u.Profile(), nil
}

// SignIn returns a session token for valid credentials. Unknown email and
// wrong password both yield common.ErrorInvalidCredential.
func (s *UserService) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = s.hasher.Verify(ctx, password, s.decoyDigest())
			s.metrics.SignIn(ctx, "invalid")
			return "", common.ErrorInvalidCredential
		}
		s.metrics.SignIn(ctx, "error")
		s.logger.Error(ctx, "error searching user", "error", err)
		return "", common.ErrorInternal
	}

	s.observe(user.PasswordHash)
	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		// corrupt digest: deny, but make it visible
		s.logger.Error(ctx, "stored digest could not be verified", "user_id", user.ID, "error", err)
	}
	if !ok {
		s.metrics.SignIn(ctx, "invalid")
		return "", common.ErrorInvalidCredential
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.metrics.SignIn(ctx, "error")
		s.logger.Error(ctx, "error issuing token", "error", err)
		if errors.Is(err, common.ErrorConfiguration) {
			return "", err
		}
		return "", common.ErrorInternal
	}

	s.metrics.SignIn(ctx, "ok")
	s.logger.Debug(ctx, "user signed in", "user_id", user.ID)
	return token, nil
}

// GetUser returns the profile of the record with the given id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}
	return u.Profile(), nil
}

// ListUsers returns one page of profiles, oldest first. Non-positive page or
// limit fall back to DefaultPage and DefaultLimit; limit is capped at MaxLimit.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.Profile, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > math.MaxInt/limit {
		// past any possible record
		return []models.Profile{}, nil
	}

	list, err := s.users.List(ctx, (page-1)*limit, limit)
	if err != nil {
		s.logger.Error(ctx, "error listing users", "error", err)
		return nil, common.ErrorInternal
	}

	result := make([]models.Profile, 0, len(list))
	for i := range list {
		result = append(result, *list[i].Profile())
	}
	return result, nil
}

// authorizeOwner allows admins and the record's own subject.
func authorizeOwner(actor *auth.Claims, id string) error {
	if actor == nil {
		return common.ErrorMissingCredential
	}
	if actor.HasRole(auth.RoleAdmin) || actor.UserID() == id {
		return nil
	}
	return common.ErrorInsufficientRole
}

// UpdateUser changes email, password or role of the record with id. The
// owner may change their own email and password; only admins may change
// roles or other users' records. Unlike SignUp the role is parsed strictly.
func (s *UserService) UpdateUser(ctx context.Context, actor *auth.Claims, id string, in models.UserUpdate) (*models.Profile, error) {
	if err := authorizeOwner(actor, id); err != nil {
		return nil, err
	}
	if in.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}

	if in.Role != nil {
		r, err := auth.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		if r != u.Role && !actor.HasRole(auth.RoleAdmin) {
			return nil, common.ErrorInsufficientRole
		}
		u.Role = r
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", common.ErrorValidation)
		}
		u.Email = email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
		}
		digest, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			if errors.Is(err, passwords.ErrPasswordTooLong) {
				return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
			}
			s.logger.Error(ctx, "password hashing failed", "error", err)
			return nil, common.ErrorInternal
		}
		u.PasswordHash = digest
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, common.ErrorDuplicateCredential
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error updating user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user updated", "user_id", updated.ID, "by", actor.UserID(), "role", updated.Role)
	return updated.Profile(), nil
}

// DeleteUser removes the record with id. Allowed for the owner and admins.
func (s *UserService) DeleteUser(ctx context.Context, actor *auth.Claims, id string) error {
	if err := authorizeOwner(actor, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "error deleting user", "error", err)
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "user deleted", "user_id", id, "by", actor.UserID())
	return nil
}
