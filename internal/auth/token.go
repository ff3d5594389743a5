package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

// Principal is the authenticated identity carried through request handling.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   deepwiki.Role
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 bearer tokens.
//
// Thread-Safety: immutable after construction, safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. The secret must be non-empty; ttl
// bounds token lifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty: %w", deepwiki.ErrInvalidConfig)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive: %w", deepwiki.ErrInvalidConfig)
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue mints a token for the user.
func (i *TokenIssuer) Issue(user *deepwiki.User) (string, error) {
	now := i.now()
	c := claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded principal.
// Any validation failure (bad signature, expiry, malformed subject or role)
// maps to deepwiki.ErrUnauthorized.
func (i *TokenIssuer) Verify(tokenString string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token: %w: %w", err, deepwiki.ErrUnauthorized)
	}
	if !token.Valid {
		return Principal{}, deepwiki.ErrUnauthorized
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token subject: %w", deepwiki.ErrUnauthorized)
	}

	role := deepwiki.Role(c.Role)
	if !role.IsValid() {
		return Principal{}, fmt.Errorf("invalid token role %q: %w", c.Role, deepwiki.ErrUnauthorized)
	}

	return Principal{UserID: userID, Email: c.Email, Role: role}, nil
}
