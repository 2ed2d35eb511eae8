package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/geotrack/internal/server"
	"github.com/dmitrijs2005/geotrack/internal/server/config"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

// run builds the app from the layered config and serves until shutdown.
// It only returns an error when initialization fails.
func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}
