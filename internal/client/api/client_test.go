package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer imitates the GeoTrack API closely enough for the client.
func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	loggedIn := func(r *http.Request) bool {
		c, err := r.Cookie("auth_token")
		return err == nil && c.Value == "tok"
	}

	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Email == "taken@example.com" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "auth/email-already-in-use", "message": "Email already registered"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "user": map[string]string{"email": in.Email}})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "password123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "auth/wrong-password", "message": "Incorrect password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"email": in.Email}})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	})
	mux.HandleFunc("GET /api/auth/check-login", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"loggedIn": true, "user": map[string]string{"email": "user@example.com", "uuid": "u-1"}})
	})
	mux.HandleFunc("POST /api/location/update", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "auth/unauthenticated", "message": "Authentication required"})
			return
		}
		var loc Location
		_ = json.NewDecoder(r.Body).Decode(&loc)
		writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "location": loc})
	})
	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upload/no-file"})
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if fh.Header.Get("Content-Type") != "image/jpeg" || string(data) != "jpeg" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upload/invalid-content-type"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok", "key": "images/x-" + fh.Filename, "url": "https://signed"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not json"))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url+"/", 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("127.0.0.1:8080", time.Second)
	require.Error(t, err)

	_, err = New("ftp://example.com", time.Second)
	require.Error(t, err)
}

func TestClient_SessionLifecycle(t *testing.T) {
	ts := fakeServer(t)
	c := newClient(t, ts.URL)
	ctx := context.Background()

	require.NoError(t, c.SignUp(ctx, "user@example.com", []byte("password123")))

	err := c.SignUp(ctx, "taken@example.com", []byte("password123"))
	require.Error(t, err)
	assert.True(t, IsKind(err, "auth/email-already-in-use"))

	var apiErr *Error
	_, err = c.Login(ctx, "user@example.com", []byte("nope"))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "auth/wrong-password", apiErr.Kind)
	assert.Equal(t, "auth/wrong-password: Incorrect password", apiErr.Error())

	s, err := c.CheckLogin(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)

	email, err := c.Login(ctx, "user@example.com", []byte("password123"))
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)

	s, err = c.CheckLogin(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Session{LoggedIn: true, Email: "user@example.com", UUID: "u-1"}, s)

	loc, err := c.UpdateLocation(ctx, 37.5, 127.25)
	require.NoError(t, err)
	assert.Equal(t, &Location{Latitude: 37.5, Longitude: 127.25}, loc)

	require.NoError(t, c.Logout(ctx))

	s, err = c.CheckLogin(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn)

	_, err = c.UpdateLocation(ctx, 1, 2)
	assert.True(t, IsKind(err, "auth/unauthenticated"))
}

func TestClient_Upload(t *testing.T) {
	ts := fakeServer(t)
	c := newClient(t, ts.URL)

	res, err := c.Upload(context.Background(), "cat.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, &UploadResult{Key: "images/x-cat.jpg", URL: "https://signed"}, res)

	_, err = c.Upload(context.Background(), "cat.png", "image/png", strings.NewReader("png"))
	assert.True(t, IsKind(err, "upload/invalid-content-type"))
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	ts := fakeServer(t)
	c := newClient(t, ts.URL)

	err := c.Ping(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "Service Unavailable", apiErr.Kind)
}

func TestClient_Unavailable(t *testing.T) {
	ts := fakeServer(t)
	url := ts.URL
	ts.Close()

	c := newClient(t, url)
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}
