package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionRevoked = errors.New("session has been revoked")
)

type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// Revocations remembers logged-out session ids until they would have expired anyway.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type Manager struct {
	secret      []byte
	ttl         time.Duration
	revocations Revocations
	now         func() time.Time
}

func NewManager(secret string, ttl time.Duration, revocations Revocations) *Manager {
	return &Manager{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue signs a new session token for userID.
func (m *Manager) Issue(userID int64) (token string, expiresAt time.Time, err error) {
	now := m.now().UTC()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)

	return
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid || claims.UserID <= 0 || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Verify checks signature, expiry and revocation.
func (m *Manager) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if m.revocations == nil {
		return claims, nil
	}

	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}

	if revoked {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}

// Revoke invalidates the session a token belongs to. Tokens that no longer verify are ignored.
func (m *Manager) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := m.parse(tokenStr)
	if err != nil || m.revocations == nil {
		return nil
	}

	remaining := claims.ExpiresAt.Time.Sub(m.now())

	return m.revocations.Revoke(ctx, claims.ID, remaining)
}
