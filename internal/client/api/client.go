package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
)

// Session is the answer of the check-login endpoint.
type Session struct {
	LoggedIn bool
	Email    string
	UUID     string
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New returns a Client for the server at baseURL, e.g. "http://127.0.0.1:8080".
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userBody struct {
	Email string `json:"email"`
	UUID  string `json:"uuid"`
}

// SignUp creates an account. It does not log in.
func (c *Client) SignUp(ctx context.Context, email string, password []byte) error {
	return c.postJSON(ctx, "/api/auth/signup", credentials{Email: email, Password: string(password)}, nil)
}

// Login authenticates and keeps the session cookie. It returns the email the
// server confirmed.
func (c *Client) Login(ctx context.Context, email string, password []byte) (string, error) {
	var out struct {
		User userBody `json:"user"`
	}
	if err := c.postJSON(ctx, "/api/auth/login", credentials{Email: email, Password: string(password)}, &out); err != nil {
		return "", err
	}
	return out.User.Email, nil
}

func (c *Client) CheckLogin(ctx context.Context) (*Session, error) {
	var out struct {
		LoggedIn bool      `json:"loggedIn"`
		User     *userBody `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/check-login", "", nil, &out); err != nil {
		return nil, err
	}
	s := &Session{LoggedIn: out.LoggedIn}
	if out.User != nil {
		s.Email, s.UUID = out.User.Email, out.User.UUID
	}
	return s, nil
}

// Logout asks the server to clear the cookie and forgets it locally as well.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", "", nil, nil)
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: common.AuthCookieName, Path: "/", MaxAge: -1}})
	return err
}

func (c *Client) UpdateLocation(ctx context.Context, lat, lon float64) (*Location, error) {
	var out struct {
		Location Location `json:"location"`
	}
	if err := c.postJSON(ctx, "/api/location/update", Location{Latitude: lat, Longitude: lon}, &out); err != nil {
		return nil, err
	}
	return &out.Location, nil
}

// Upload sends body as the "file" part of a multipart form.
func (c *Client) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/upload", mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks the server health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Kind == "" {
			apiErr.Kind = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
