// Package identity resolves the calling principal from an HTTP request. The
// service trusts an upstream verifier: either a gateway-injected header or a
// signed bearer token. All ownership checks downstream use the resolved id.
package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jfenske/homeledger/internal/errs"
)

// Resolver extracts the owner id from a request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// Header trusts a named header set by a fronting gateway that has already
// authenticated the caller. Never expose this resolver directly to the
// internet.
type Header struct {
	Name string
}

func (h Header) Resolve(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(h.Name))
	if id == "" {
		return "", errs.ErrUnauthenticated
	}
	return id, nil
}

// Bearer validates an HS256 JWT from the Authorization header and uses its
// subject claim as the owner id.
type Bearer struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func (b Bearer) Resolve(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", errs.ErrUnauthenticated
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if b.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(b.Issuer))
	}
	if b.Audience != "" {
		opts = append(opts, jwt.WithAudience(b.Audience))
	}

	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return b.Secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", errs.ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// Chain tries each resolver in order and returns the first success.
type Chain []Resolver

func (c Chain) Resolve(r *http.Request) (string, error) {
	for _, res := range c {
		if id, err := res.Resolve(r); err == nil {
			return id, nil
		}
	}
	return "", errs.ErrUnauthenticated
}
