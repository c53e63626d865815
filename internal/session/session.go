// Package session mints and reads the HS256 bearer tokens handed to clients.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultIssuer = "campusconnect"

var (
	ErrMissingSubject = errors.New("session: token has no subject")
	ErrMissingExpiry  = errors.New("session: token has no expiry")
)

// Issuer signs session tokens. Tokens are never stored and never revoked.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
}

// WithIssuer overrides the iss claim.
func (i *Issuer) WithIssuer(iss string) *Issuer {
	if iss != "" {
		i.issuer = iss
	}
	return i
}

// Mint returns a signed token for userID and its expiry.
func (i *Issuer) Mint(userID string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		Issuer:    i.issuer,
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session: signing token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies tokenStr and returns its subject.
func (i *Issuer) Parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	return Subject(token)
}

// Subject extracts the user id from an already verified token. Tokens
// without sub or exp are rejected even when the signature is good.
func Subject(token *jwt.Token) (string, error) {
	if token == nil {
		return "", ErrMissingSubject
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", ErrMissingExpiry
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}
