package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/client/api"
	"github.com/dmitrijs2005/geotrack/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// apiClient is the part of api.Client the commands use.
type apiClient interface {
	SignUp(ctx context.Context, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (string, error)
	CheckLogin(ctx context.Context) (*api.Session, error)
	Logout(ctx context.Context) error
	UpdateLocation(ctx context.Context, lat, lon float64) (*api.Location, error)
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*api.UploadResult, error)
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	api    apiClient
	email  string
	reader *bufio.Reader
	out    io.Writer

	// mu guards Mode, which the status watcher updates in the background.
	mu   sync.Mutex
	Mode Mode
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := api.New(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (app *App) setMode(mode Mode) {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.Mode != mode {
		app.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}
