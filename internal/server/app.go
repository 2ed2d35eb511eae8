// Package server assembles the GeoTrack HTTP server: it loads the stores,
// builds the services and runs the API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/geotrack/internal/logging"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/config"
	"github.com/dmitrijs2005/geotrack/internal/server/location"
	"github.com/dmitrijs2005/geotrack/internal/server/metrics"
	"github.com/dmitrijs2005/geotrack/internal/server/objectstore"
	"github.com/dmitrijs2005/geotrack/internal/server/ratelimit"
	"github.com/dmitrijs2005/geotrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/geotrack/internal/server/rest"
	"github.com/dmitrijs2005/geotrack/internal/server/services"
	"github.com/dmitrijs2005/geotrack/internal/server/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	mode, err := location.ParseMode(c.LocationFreshness)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	gin.SetMode(ginMode(c))

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, db: db}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := app.limiterStore(ctx)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	objects, err := objectstore.New(ctx, objectstore.Config{
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Bucket:    c.S3Bucket,
		Endpoint:  c.S3BaseEndpoint,
	})
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reg, m := metrics.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	codec := auth.NewCodec([]byte(c.SecretKey), c.SessionTTL)

	deps := services.Deps{
		DB:          db,
		Repos:       rm,
		Codec:       codec,
		Hasher:      auth.NewBcryptHasher(),
		Limiter:     ratelimit.New(store),
		Policy:      location.NewPolicy(c.LocationUpdateInterval, mode),
		Objects:     objects,
		Metrics:     m,
		Logger:      logger,
		LoginLimit:  c.LoginRateLimit,
		LoginWindow: c.LoginRateWindow,
	}

	app.server = rest.NewHTTPServer(rest.Options{
		Address:        c.EndpointAddrHTTP,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		TrustedProxies: c.TrustedProxies,
		Guard:          session.NewGuard(codec, session.Cookies{Secure: c.SecureCookies, MaxAge: c.SessionTTL}),
		Users:          services.NewUserService(deps),
		Locations:      services.NewLocationService(deps),
		Uploads:        services.NewUploadService(deps),
		Health:         services.NewHealthService(deps),
		Metrics:        m,
		Gatherer:       reg,
		Logger:         logger,
	})

	logger.Info(ctx, "App initialized",
		"limiter", c.RateLimiterBackend,
		"freshness", mode.String(),
		"bucket", objects.Bucket(),
	)

	return app, nil
}

// ginMode keeps gin's debug output only for non-production runs at debug level.
func ginMode(c *config.Config) string {
	if !c.SecureCookies && logging.ParseLevel(c.LogLevel) <= slog.LevelDebug {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

// limiterStore returns the login attempt store for the configured backend.
func (app *App) limiterStore(ctx context.Context) (ratelimit.Store, error) {
	switch app.config.RateLimiterBackend {
	case config.LimiterRedis:
		rdb, err := ratelimit.NewRedisClient(ctx, app.config.RedisAddr, app.config.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.redis = rdb
		return ratelimit.NewRedisStore(rdb, app.config.RateLimiterMaxKeys), nil
	default:
		store, err := ratelimit.NewMemoryStore(app.config.RateLimiterMaxKeys)
		if err != nil {
			return nil, fmt.Errorf("rate limiter init error: %w", err)
		}
		return store, nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the stores.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}
