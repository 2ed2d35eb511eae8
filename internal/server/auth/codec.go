// Package auth mints and verifies session tokens and hides the password
// comparison primitive behind a small interface.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of a session token and of its cookie.
const DefaultTTL = 24 * time.Hour

// SessionClaims are the identity fields a caller supplies when minting.
type SessionClaims struct {
	UserID      string
	Email       string
	UUID        string
	LastUpdated string
}

// Claims is the payload carried inside a session token:
// {userId, email, uuid, lastUpdated, iat, exp}.
type Claims struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	UUID        string `json:"uuid"`
	LastUpdated string `json:"lastUpdated"`
	jwt.RegisteredClaims
}

// Session returns the identity part of the claims.
func (c *Claims) Session() SessionClaims {
	return SessionClaims{UserID: c.UserID, Email: c.Email, UUID: c.UUID, LastUpdated: c.LastUpdated}
}

// Codec signs tokens with a single HS256 secret. It is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a codec for secret. A non-positive ttl means DefaultTTL.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for iat/exp and for expiry checks.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// TTL reports how long minted tokens stay valid.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Mint signs sc into a token valid for the codec's TTL.
func (c *Codec) Mint(sc SessionClaims) (string, error) {
	if sc.UserID == "" || sc.Email == "" || sc.LastUpdated == "" {
		return "", common.ErrInvalidClaims
	}
	if sc.UUID == "" {
		sc.UUID = sc.UserID
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:      sc.UserID,
		Email:       sc.Email,
		UUID:        sc.UUID,
		LastUpdated: sc.LastUpdated,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry of tokenString.
// Every failure matches common.ErrInvalidToken; expiry also matches
// common.ErrTokenExpired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.UserID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrInvalidClaims)
	}

	return claims, nil
}
