package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/dbx"
	"github.com/dmitrijs2005/geotrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (uuid, email, password)
         VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UUID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT uuid, email, password, created_at, last_latitude, last_longitude, last_updated FROM users`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) GetByUUID(ctx context.Context, uuid string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE uuid = $1
		 `, uuid)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var (
		user     models.User
		lat, lon sql.NullFloat64
		updated  sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.UUID, &user.Email, &user.PasswordHash, &user.CreatedAt, &lat, &lon, &updated)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lat.Valid && lon.Valid {
		user.LastLocation = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if updated.Valid {
		t := updated.Time
		user.LastUpdated = &t
	}

	return &user, nil
}

// UpdateLocation stores loc and at in a single statement.
func (r *PostgresRepository) UpdateLocation(ctx context.Context, uuid string, loc models.Location, at time.Time) error {
	query :=
		`UPDATE users SET last_latitude = $1, last_longitude = $2, last_updated = $3
		 WHERE uuid = $4
		 `

	res, err := r.db.ExecContext(ctx, query, loc.Latitude, loc.Longitude, at, uuid)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
