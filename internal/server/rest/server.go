// Package rest exposes the GeoTrack services over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/logging"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/metrics"
	"github.com/dmitrijs2005/geotrack/internal/server/models"
	"github.com/dmitrijs2005/geotrack/internal/server/services"
	"github.com/dmitrijs2005/geotrack/internal/server/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultMaxUploadBytes caps the multipart body of an upload.
	DefaultMaxUploadBytes int64 = 10 << 20

	shutdownTimeout = 10 * time.Second
)

type UserService interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, clientIP, email, password string) (*services.LoginResult, error)
}

type LocationService interface {
	Update(ctx context.Context, claims *auth.Claims, lat, lon any) (models.Location, error)
}

type UploadService interface {
	Upload(ctx context.Context, claims *auth.Claims, filename, contentType string, size int64, body io.Reader) (*services.UploadResult, error)
}

type HealthChecker interface {
	Check(ctx context.Context) map[string]error
}

// Options wires the server. Metrics, Gatherer and Health are optional.
type Options struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed when resolving the client IP. Empty trusts none.
	TrustedProxies []string

	Guard     *session.Guard
	Users     UserService
	Locations LocationService
	Uploads   UploadService
	Health    HealthChecker

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   logging.Logger
}

type HTTPServer struct {
	address      string
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxUpload    int64
	proxies      []string

	guard     *session.Guard
	users     UserService
	locations LocationService
	uploads   UploadService
	health    HealthChecker
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	logger    logging.Logger

	engine *gin.Engine
}

func NewHTTPServer(o Options) *HTTPServer {
	l := o.Logger
	if l == nil {
		l = logging.Nop()
	}
	maxUpload := o.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	s := &HTTPServer{
		address:      o.Address,
		readTimeout:  o.ReadTimeout,
		writeTimeout: o.WriteTimeout,
		maxUpload:    maxUpload,
		proxies:      o.TrustedProxies,
		guard:        o.Guard,
		users:        o.Users,
		locations:    o.Locations,
		uploads:      o.Uploads,
		health:       o.Health,
		metrics:      o.Metrics,
		gatherer:     o.Gatherer,
		logger:       l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured router.
func (s *HTTPServer) Handler() http.Handler { return s.engine }

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(s.proxies); err != nil {
		s.logger.Error(context.Background(), "invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", s.healthz)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.HandlerFor(s.gatherer)))
	}

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.GET("/check-login", s.guard.OptionalSession(), s.checkLogin)
	authGroup.POST("/login", s.login)
	authGroup.POST("/logout", s.logout)
	authGroup.POST("/signup", s.signUp)

	protected := api.Group("")
	protected.Use(s.guard.RequireSession())
	protected.POST("/location/update", s.updateLocation)
	protected.POST("/upload", s.upload)

	return r
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener. It returns once in-flight requests
// have drained.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
