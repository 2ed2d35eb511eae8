package session

import (
	"github.com/dmitrijs2005/geotrack/internal/server/apierror"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const contextKey = "geotrack.session"

// OptionalSession authenticates the request and stores the Result for
// handlers. It never aborts.
func (g *Guard) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, g.Authenticate(c.Request))
		c.Next()
	}
}

// RequireSession aborts with 401 unless the request is Authenticated. A
// rejected cookie is cleared on the way out.
func (g *Guard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := g.Authenticate(c.Request)
		if res.State != Authenticated {
			if res.State == Rejected && res.FromCookie {
				g.cookies.Clear(c.Writer)
			}
			apierror.Abort(c, apierror.Unauthenticated())
			return
		}
		c.Set(contextKey, res)
		c.Next()
	}
}

// FromContext returns the Result stored by one of the middlewares.
func FromContext(c *gin.Context) (Result, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Result{}, false
	}
	res, ok := v.(Result)
	return res, ok
}

// ClaimsFromContext returns the claims of an authenticated request.
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	res, ok := FromContext(c)
	if !ok || res.State != Authenticated {
		return nil, false
	}
	return res.Claims, true
}
