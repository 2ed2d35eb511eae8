package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/logging"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/location"
	"github.com/dmitrijs2005/geotrack/internal/server/metrics"
	"github.com/dmitrijs2005/geotrack/internal/server/models"
	"github.com/dmitrijs2005/geotrack/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

// LocationService applies the throttled location update.
type LocationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      *location.Policy
	metrics     *metrics.Metrics
	log         logging.Logger
	now         func() time.Time
	backoff     func() retry.Backoff
}

func NewLocationService(d Deps) *LocationService {
	return &LocationService{
		db:          d.DB,
		repomanager: d.Repos,
		policy:      d.Policy,
		metrics:     d.Metrics,
		log:         d.logger("location"),
		now:         time.Now,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(50*time.Millisecond))
		},
	}
}

// Update checks freshness, then the payload shape, then writes the new
// location. Only the write is retried.
func (s *LocationService) Update(ctx context.Context, claims *auth.Claims, lat, lon any) (models.Location, error) {
	if claims == nil {
		s.metrics.LocationUpdate(metrics.ResultUnauthenticated)
		return models.Location{}, common.ErrInvalidToken
	}
	repo := s.repomanager.Users(s.db)

	var stored *time.Time
	if s.policy.Mode() == location.FreshnessServer {
		user, err := repo.GetByUUID(ctx, claims.UUID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				s.metrics.LocationUpdate(metrics.ResultUnauthenticated)
				return models.Location{}, common.ErrUserNotFound
			}
			s.metrics.LocationUpdate(metrics.ResultError)
			s.log.Error(ctx, "user lookup failed", "uuid", claims.UUID, "error", err)
			return models.Location{}, fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		stored = user.LastUpdated
	}

	if err := s.policy.Admit(claims, stored); err != nil {
		if errors.Is(err, common.ErrTooManyRequests) {
			s.metrics.LocationUpdate(metrics.ResultThrottled)
		} else {
			s.metrics.LocationUpdate(metrics.ResultUnauthenticated)
		}
		return models.Location{}, err
	}

	loc, err := location.ParseLocation(lat, lon)
	if err != nil {
		s.metrics.LocationUpdate(metrics.ResultMalformed)
		return models.Location{}, err
	}

	at := s.now()
	attempt := 0
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.metrics.StoreRetry()
		}
		err := repo.UpdateLocation(ctx, claims.UUID, loc, at)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrUserNotFound
		default:
			s.log.Warn(ctx, "location write failed", "uuid", claims.UUID, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			s.metrics.LocationUpdate(metrics.ResultUnauthenticated)
			return models.Location{}, err
		}
		s.metrics.LocationUpdate(metrics.ResultError)
		s.log.Error(ctx, "location update failed", "uuid", claims.UUID, "error", err)
		return models.Location{}, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.metrics.LocationUpdate(metrics.ResultSuccess)
	s.log.Info(ctx, "location updated", "uuid", claims.UUID)
	return loc, nil
}
