package rest

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/dbx"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/models"
	usersrepo "github.com/dmitrijs2005/geotrack/internal/server/repositories/users"
	"github.com/dmitrijs2005/geotrack/internal/server/services"
)

// memUsers is an in-memory user store shared by every DBTX.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	writes  int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	cp := *u
	cp.CreatedAt = time.Now()
	m.byEmail[u.Email] = &cp
	return &cp, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUUID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.UUID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) UpdateLocation(ctx context.Context, id string, loc models.Location, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.UUID == id {
			l := loc
			u.LastLocation = &l
			u.LastUpdated = &at
			m.writes++
			return nil
		}
	}
	return common.ErrorNotFound
}

func (m *memUsers) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *memUsers) Ping(ctx context.Context) error { return nil }

type memRepos struct{ users *memUsers }

func (r *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r *memRepos) Users(dbx.DBTX) usersrepo.Repository          { return r.users }

// stubs for handler tests

type stubUsers struct {
	signUpErr error
	loginErr  error
	token     string

	gotIP string
}

func (s *stubUsers) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if s.signUpErr != nil {
		return nil, s.signUpErr
	}
	return &models.User{UUID: "u-1", Email: email}, nil
}

func (s *stubUsers) Login(ctx context.Context, clientIP, email, password string) (*services.LoginResult, error) {
	s.gotIP = clientIP
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.LoginResult{Token: s.token, User: &models.User{UUID: "u-1", Email: email}}, nil
}

type stubLocations struct {
	err   error
	calls int

	gotClaims *auth.Claims
	gotLat    any
	gotLon    any
}

func (s *stubLocations) Update(ctx context.Context, claims *auth.Claims, lat, lon any) (models.Location, error) {
	s.calls++
	s.gotClaims, s.gotLat, s.gotLon = claims, lat, lon
	if s.err != nil {
		return models.Location{}, s.err
	}
	la, _ := lat.(float64)
	lo, _ := lon.(float64)
	return models.Location{Latitude: la, Longitude: lo}, nil
}

type stubUploads struct {
	err   error
	calls int

	gotName        string
	gotContentType string
	gotBody        string
}

func (s *stubUploads) Upload(ctx context.Context, claims *auth.Claims, filename, contentType string, size int64, body io.Reader) (*services.UploadResult, error) {
	s.calls++
	s.gotName, s.gotContentType = filename, contentType
	b, _ := io.ReadAll(body)
	s.gotBody = string(b)
	if s.err != nil {
		return nil, s.err
	}
	return &services.UploadResult{Key: "images/k-" + filename, URL: "https://signed/" + filename}, nil
}

type stubHealth struct{ failed map[string]error }

func (s stubHealth) Check(context.Context) map[string]error { return s.failed }
