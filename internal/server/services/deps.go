// Package services contains server-side business logic: sign-up and login,
// throttled location updates and image uploads. Transport code calls these
// services and maps the returned sentinel errors to API responses.
package services

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/logging"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/location"
	"github.com/dmitrijs2005/geotrack/internal/server/metrics"
	"github.com/dmitrijs2005/geotrack/internal/server/repositories/repomanager"
)

// Limiter admits or refuses an attempt for a key.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) error
}

// ObjectStore is the binary store for uploads.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

// Deps bundles the collaborators shared by the services. Metrics may be nil.
// A nil Logger is replaced with logging.Nop().
type Deps struct {
	DB      *sql.DB
	Repos   repomanager.RepositoryManager
	Codec   *auth.Codec
	Hasher  auth.PasswordHasher
	Limiter Limiter
	Policy  *location.Policy
	Objects ObjectStore
	Metrics *metrics.Metrics
	Logger  logging.Logger

	LoginLimit  int
	LoginWindow time.Duration
}

func (d Deps) logger(module string) logging.Logger {
	if d.Logger == nil {
		return logging.Nop().With("module", module)
	}
	return d.Logger.With("module", module)
}
