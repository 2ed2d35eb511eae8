package session

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
)

// Cookies describes how the session cookie is issued.
type Cookies struct {
	// Secure is enabled in production.
	Secure bool
	// MaxAge matches the token lifetime.
	MaxAge time.Duration
}

func (o Cookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Set issues the session cookie carrying token.
func (o Cookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, o.cookie(token, int(o.MaxAge.Seconds())))
}

// Clear removes the session cookie from the client.
func (o Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, o.cookie("", -1))
}
