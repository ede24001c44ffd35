package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is a verified member, as carried by bearer tokens.
type Identity struct {
	MemberID int64
	Username string
	IsDJ     bool
	IsAdmin  bool
}

type claims struct {
	MemberID int64  `json:"memberID"`
	Username string `json:"username"`
	IsDJ     bool   `json:"isDJ"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Issuer signs and parses HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 16 {
		return nil, errors.New("token secret must be at least 16 characters long")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

func (is *Issuer) Issue(identity Identity) (string, error) {
	var now = time.Now()
	var registered = jwt.RegisteredClaims{
		Subject:  identity.Username,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if is.ttl != 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(is.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		MemberID:         identity.MemberID,
		Username:         identity.Username,
		IsDJ:             identity.IsDJ,
		IsAdmin:          identity.IsAdmin,
		RegisteredClaims: registered,
	})
	signed, err := token.SignedString(is.secret)
	if err != nil {
		return "", fmt.Errorf("signing token for %q: %w", identity.Username, err)
	}
	return signed, nil
}

func (is *Issuer) Parse(tokenString string) (Identity, error) {
	var parsed claims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(*jwt.Token) (any, error) {
		return is.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		MemberID: parsed.MemberID,
		Username: parsed.Username,
		IsDJ:     parsed.IsDJ,
		IsAdmin:  parsed.IsAdmin,
	}, nil
}
