package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, codec *auth.Codec) string {
	t.Helper()
	tok, err := codec.Mint(auth.SessionClaims{
		UserID:      "u-1",
		Email:       "user@example.com",
		LastUpdated: "2024-05-01T12:00:00.000Z",
	})
	require.NoError(t, err)
	return tok
}

func TestAuthenticate(t *testing.T) {
	codec := auth.NewCodec([]byte("secret"), time.Hour)
	g := NewGuard(codec, Cookies{MaxAge: time.Hour})
	valid := mintToken(t, codec)
	foreign := mintToken(t, auth.NewCodec([]byte("other"), time.Hour))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		state      State
		fromCookie bool
	}{
		{name: "no token", setup: func(*http.Request) {}, state: Anonymous},
		{name: "valid cookie", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: common.AuthCookieName, Value: valid})
		}, state: Authenticated, fromCookie: true},
		{name: "valid bearer", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+valid)
		}, state: Authenticated},
		{name: "lowercase bearer", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "bearer "+valid)
		}, state: Authenticated},
		{name: "basic auth is ignored", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}, state: Anonymous},
		{name: "foreign cookie", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: common.AuthCookieName, Value: foreign})
		}, state: Rejected, fromCookie: true},
		{name: "garbage bearer", setup: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		}, state: Rejected},
		{name: "cookie wins over header", setup: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: common.AuthCookieName, Value: foreign})
			r.Header.Set("Authorization", "Bearer "+valid)
		}, state: Rejected, fromCookie: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)

			res := g.Authenticate(r)

			assert.Equal(t, tt.state, res.State, res.State.String())
			assert.Equal(t, tt.fromCookie, res.FromCookie)
			switch tt.state {
			case Authenticated:
				require.NotNil(t, res.Claims)
				assert.Equal(t, "user@example.com", res.Claims.Email)
				assert.NoError(t, res.Err)
			case Rejected:
				assert.Nil(t, res.Claims)
				assert.ErrorIs(t, res.Err, common.ErrInvalidToken)
			default:
				assert.Nil(t, res.Claims)
				assert.NoError(t, res.Err)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestCookies(t *testing.T) {
	w := httptest.NewRecorder()
	Cookies{Secure: true, MaxAge: 24 * time.Hour}.Set(w, "tok")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, common.AuthCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	w = httptest.NewRecorder()
	Cookies{}.Clear(w)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.False(t, cookies[0].Secure)
}
