package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/server/models"
)

// Repository is the user-record store. Lookups by a missing key return
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdateLocation(ctx context.Context, uuid string, loc models.Location, at time.Time) error
	Ping(ctx context.Context) error
}
