package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "campus-portal"

// TokenClaims are the facts carried by a bearer token.
type TokenClaims struct {
	SessionID string
	UserID    string
	Role      Role
	ExpiresAt time.Time
}

// TokenCodec signs and verifies bearer tokens.
type TokenCodec interface {
	Issue(claims TokenClaims) (string, error)
	Parse(token string) (TokenClaims, error)
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec issues HS256 signed JWTs naming a server-side session.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

// NewJWTCodec builds a codec signing with secret.
func NewJWTCodec(secret string, now func() time.Time) (*JWTCodec, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	if now == nil {
		now = time.Now
	}
	return &JWTCodec{secret: []byte(secret), now: now}, nil
}

// Issue signs the claims.
func (c *JWTCodec) Issue(claims TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: claims.SessionID,
		Role:      string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the claims.
func (c *JWTCodec) Parse(raw string) (TokenClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrSessionExpired
		}
		return TokenClaims{}, ErrInvalidCredentials
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidCredentials
	}
	return TokenClaims{
		SessionID: claims.SessionID,
		UserID:    claims.Subject,
		Role:      Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
