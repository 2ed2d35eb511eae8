// Package session extracts and validates the session token carried by a
// request and exposes the outcome to gin handlers.
package session

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
)

// State is the outcome of authenticating a request.
type State int

const (
	// Anonymous: the request carried no token.
	Anonymous State = iota
	// Authenticated: the token verified.
	Authenticated
	// Rejected: a token was present but did not verify.
	Rejected
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result is what Authenticate learned about a request.
type Result struct {
	State  State
	Claims *auth.Claims
	// Err is set for Rejected results.
	Err error
	// FromCookie reports whether the token came from the session cookie.
	FromCookie bool
}

// Verifier validates a raw token.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Guard authenticates requests with a Verifier.
type Guard struct {
	verifier Verifier
	cookies  Cookies
}

// NewGuard returns a guard that reads tokens issued through cookies.
func NewGuard(v Verifier, cookies Cookies) *Guard {
	return &Guard{verifier: v, cookies: cookies}
}

// Cookies returns the cookie settings the guard was built with.
func (g *Guard) Cookies() Cookies { return g.cookies }

// Authenticate never fails: a missing token is Anonymous and an invalid one
// is Rejected. Callers decide how strict to be.
func (g *Guard) Authenticate(r *http.Request) Result {
	token, fromCookie := TokenFromRequest(r)
	if token == "" {
		return Result{State: Anonymous}
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return Result{State: Rejected, Err: err, FromCookie: fromCookie}
	}
	if claims == nil {
		return Result{State: Rejected, Err: common.ErrInvalidToken, FromCookie: fromCookie}
	}
	return Result{State: Authenticated, Claims: claims, FromCookie: fromCookie}
}

// TokenFromRequest returns the token from the auth_token cookie, falling back
// to an "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if c, err := r.Cookie(common.AuthCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	h := r.Header.Get(common.AuthorizationHeaderName)
	if h == "" {
		return "", false
	}
	const prefix = "bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):]), false
	}
	return "", false
}
