// Package auth issues and checks the credentials used by the API: signed
// JWT access tokens, bcrypt password hashes and the optional GitHub sign-in.
//
// TOKEN FLOW:
//  1. POST /api/auth/token/login with email + password, or finish the GitHub
//     OAuth flow at /auth/github/callback
//  2. The server signs a JWT whose subject is the numeric user id
//  3. Clients send it back as "Authorization: Token <jwt>" (or Bearer), or the
//     browser sends the HttpOnly "token" cookie
//  4. POST /api/auth/token/logout revokes the token's id until it expires
//
// Tokens are HS256-signed and verified with the shared secret only; there is
// no database lookup per request.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "foodgram"

// ErrTokenRevoked is returned by Validate for a token that was logged out.
var ErrTokenRevoked = errors.New("auth: token revoked")

// TokenService signs and verifies access tokens.
//
// Revoked token ids are kept in memory until the token would have expired
// anyway; a restart forgets them, which only matters for tokens that were
// both stolen and logged out.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry
}

// NewTokenService creates a TokenService. secret must be at least 16
// characters; ttl is the lifetime of every issued token.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token lifetime must be positive")
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" carries the user id in decimal and "jti"
// a random xid so a single token can be revoked.
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for userID valid for the service's TTL.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use a
// negative duration to get an already-expired token.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, algorithm and expiry, then returns the
// user id from the "sub" claim.
//
// jwt.WithValidMethods pins HS256 so a token claiming "alg":"none" (or an
// asymmetric algorithm keyed with our secret) is rejected.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	c, err := s.parse(tokenStr)
	if err != nil {
		return 0, err
	}

	if s.isRevoked(c.ID) {
		return 0, ErrTokenRevoked
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token subject %q is not a user id", c.Subject)
	}
	return userID, nil
}

// Revoke invalidates tokenStr for the rest of its lifetime. Revoking an
// invalid or expired token is an error; revoking twice is not.
func (s *TokenService) Revoke(tokenStr string) error {
	c, err := s.parse(tokenStr)
	if err != nil {
		return err
	}
	if c.ID == "" {
		return errors.New("auth: token has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for jti, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, jti)
		}
	}
	s.revoked[c.ID] = c.ExpiresAt.Time
	return nil
}

func (s *TokenService) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *TokenService) parse(tokenStr string) (*claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	return c, nil
}
