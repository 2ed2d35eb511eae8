package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/dbx"
	"github.com/dmitrijs2005/geotrack/internal/logging"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/metrics"
	"github.com/dmitrijs2005/geotrack/internal/server/models"
	"github.com/dmitrijs2005/geotrack/internal/server/ratelimit"
	"github.com/dmitrijs2005/geotrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/geotrack/internal/timex"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginResult is a freshly minted session.
type LoginResult struct {
	Token string
	User  *models.User
}

// UserService provides authentication-related operations:
// - SignUp: validate and create users
// - Login: rate-limit, verify credentials and mint a session token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	hasher      auth.PasswordHasher
	limiter     Limiter
	loginLimit  int
	loginWindow time.Duration
	metrics     *metrics.Metrics
	log         logging.Logger
	now         func() time.Time
	newID       func() string
}

// NewUserService constructs a UserService. Without a Limiter logins are not
// rate limited.
func NewUserService(d Deps) *UserService {
	return &UserService{
		db:          d.DB,
		repomanager: d.Repos,
		codec:       d.Codec,
		hasher:      d.Hasher,
		limiter:     d.Limiter,
		loginLimit:  d.LoginLimit,
		loginWindow: d.LoginWindow,
		metrics:     d.Metrics,
		log:         d.logger("users"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SignUp validates the credentials and stores a new user. The duplicate check
// and the insert run in one transaction; the unique index settles races.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	if !emailPattern.MatchString(email) {
		s.metrics.SignUp(metrics.ResultInvalidInput)
		return nil, common.ErrInvalidEmail
	}
	if len(password) < auth.MinPasswordLength {
		s.metrics.SignUp(metrics.ResultInvalidInput)
		return nil, common.ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.SignUp(metrics.ResultError)
		s.log.Error(ctx, "hash password", "error", err)
		return nil, common.ErrorInternal
	}

	user := &models.User{UUID: s.newID(), Email: email, PasswordHash: hash}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return common.ErrEmailExists
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("error searching user: %w", err)
		}

		if _, err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrEmailExists
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrEmailExists) {
			s.metrics.SignUp(metrics.ResultConflict)
			return nil, err
		}
		s.metrics.SignUp(metrics.ResultError)
		s.log.Error(ctx, "sign up failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.metrics.SignUp(metrics.ResultSuccess)
	s.log.Info(ctx, "user signed up", "uuid", user.UUID)
	return user, nil
}

// Login checks the per-client rate limit, verifies the password and mints a
// session token whose lastUpdated claim is the login time.
func (s *UserService) Login(ctx context.Context, clientIP, email, password string) (*LoginResult, error) {
	if s.limiter != nil {
		err := s.limiter.Check(ctx, ratelimit.Key(clientIP, "login:"+email), s.loginLimit, s.loginWindow)
		if err != nil {
			if errors.Is(err, common.ErrRateLimitExceeded) {
				s.metrics.Login(metrics.ResultRateLimited)
				s.log.Warn(ctx, "login rate limited", "ip", clientIP)
				return nil, err
			}
			s.metrics.Login(metrics.ResultError)
			s.log.Error(ctx, "rate limiter failed", "error", err)
			return nil, common.ErrorInternal
		}
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.Login(metrics.ResultUserNotFound)
			return nil, common.ErrUserNotFound
		}
		s.metrics.Login(metrics.ResultError)
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrWrongPassword) {
			s.metrics.Login(metrics.ResultWrongPassword)
			return nil, err
		}
		s.metrics.Login(metrics.ResultError)
		s.log.Error(ctx, "password compare failed", "error", err)
		return nil, common.ErrorInternal
	}

	token, err := s.codec.Mint(auth.SessionClaims{
		UserID:      user.UUID,
		Email:       user.Email,
		UUID:        user.UUID,
		LastUpdated: timex.FormatISO(s.now()),
	})
	if err != nil {
		s.metrics.Login(metrics.ResultError)
		s.log.Error(ctx, "mint token failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.metrics.Login(metrics.ResultSuccess)
	s.log.Info(ctx, "user logged in", "uuid", user.UUID)
	return &LoginResult{Token: token, User: user}, nil
}
