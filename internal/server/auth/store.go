package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/filesmanager/internal/shared"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store resolves an opaque token to the id of the user it was issued for.
// Unknown, expired and malformed tokens yield common.ErrorUnauthorized.
type Store interface {
	Lookup(ctx context.Context, token string) (string, error)
}

// ExpiringStore is a Store that also reports when a token stops resolving.
type ExpiringStore interface {
	Store
	LookupWithExpiry(ctx context.Context, token string) (string, time.Time, error)
}

// Issuer hands out tokens that a matching Store later resolves.
type Issuer interface {
	Issue(ctx context.Context, userID string) (string, error)
}

// SessionStore resolves tokens against the sessions table.
type SessionStore struct {
	repo     sessions.Repository
	validity time.Duration
	now      func() time.Time
}

func NewSessionStore(repo sessions.Repository, validity time.Duration) *SessionStore {
	return &SessionStore{repo: repo, validity: validity, now: time.Now}
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (string, error) {
	userID, _, err := s.LookupWithExpiry(ctx, token)
	return userID, err
}

func (s *SessionStore) LookupWithExpiry(ctx context.Context, token string) (string, time.Time, error) {
	if token == "" {
		return "", time.Time{}, common.ErrorUnauthorized
	}

	sess, err := s.repo.Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", time.Time{}, common.ErrorUnauthorized
		}
		return "", time.Time{}, err
	}

	if sess.Expired(s.now()) {
		// best effort; the row is unusable either way
		_ = s.repo.Delete(ctx, token)
		return "", time.Time{}, common.ErrorUnauthorized
	}
	return sess.UserID, sess.Expires, nil
}

// Issue creates a session with a random 256-bit token.
func (s *SessionStore) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", common.ErrValidation)
	}

	token, err := shared.MakeRandHexString(32)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := s.repo.Create(ctx, userID, token, s.validity); err != nil {
		return "", err
	}
	return token, nil
}

// JWTStore resolves self-contained HS256 tokens.
type JWTStore struct {
	secret   []byte
	validity time.Duration
}

func NewJWTStore(secret []byte, validity time.Duration) *JWTStore {
	return &JWTStore{secret: secret, validity: validity}
}

func (s *JWTStore) Lookup(ctx context.Context, token string) (string, error) {
	userID, _, err := s.LookupWithExpiry(ctx, token)
	return userID, err
}

func (s *JWTStore) LookupWithExpiry(_ context.Context, token string) (string, time.Time, error) {
	if token == "" {
		return "", time.Time{}, common.ErrorUnauthorized
	}
	claims, err := parseToken(token, s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

func (s *JWTStore) Issue(_ context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", common.ErrValidation)
	}
	return GenerateToken(userID, s.secret, s.validity)
}

// CachedStore memoises successful lookups of another Store for at most ttl.
// When the wrapped store is an ExpiringStore an entry also never outlives the
// token itself. Failures are never cached.
type CachedStore struct {
	next   Store
	cache  *expirable.LRU[string, cachedUser]
	logger logging.Logger
	now    func() time.Time
}

type cachedUser struct {
	userID  string
	expires time.Time // zero when the wrapped store does not report expiry
}

func NewCachedStore(next Store, size int, ttl time.Duration, logger logging.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		cache:  expirable.NewLRU[string, cachedUser](size, nil, ttl),
		logger: logger.With("module", "auth_cache"),
		now:    time.Now,
	}
}

func (s *CachedStore) Lookup(ctx context.Context, token string) (string, error) {
	if u, ok := s.cache.Get(token); ok {
		if u.expires.IsZero() || s.now().Before(u.expires) {
			return u.userID, nil
		}
		s.cache.Remove(token)
	}

	var (
		u   cachedUser
		err error
	)
	if es, ok := s.next.(ExpiringStore); ok {
		u.userID, u.expires, err = es.LookupWithExpiry(ctx, token)
	} else {
		u.userID, err = s.next.Lookup(ctx, token)
	}
	if err != nil {
		return "", err
	}

	if evicted := s.cache.Add(token, u); evicted {
		s.logger.Debug(ctx, "auth cache eviction", "size", s.cache.Len())
	}
	return u.userID, nil
}

// Invalidate drops a token from the cache.
func (s *CachedStore) Invalidate(token string) {
	s.cache.Remove(token)
}
