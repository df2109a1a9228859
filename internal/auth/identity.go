package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Resolver maps a bearer token to an identity. Without a secret every
// non-empty token resolves to the demo identity.
type Resolver struct {
	secret []byte
	demo   AuthContext
}

func NewResolver(jwtSecret string, demo AuthContext) *Resolver {
	r := &Resolver{demo: demo}
	if jwtSecret != "" {
		r.secret = []byte(jwtSecret)
	}
	return r
}

// Resolve parses an Authorization header value.
func (r *Resolver) Resolve(header string) (AuthContext, error) {
	token, ok := BearerToken(header)
	if !ok {
		return AuthContext{}, ErrMissingToken
	}
	if r.secret == nil {
		return r.demo, nil
	}

	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return AuthContext{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return AuthContext{}, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return AuthContext{UserID: c.Subject, Email: c.Email, Name: c.Name}, nil
}

// BearerToken extracts the token from "Bearer <token>".
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// IssueToken signs an HS256 token for userID. Used by tests and local tooling.
func IssueToken(secret, userID, email, name string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Email:            email,
		Name:             name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
