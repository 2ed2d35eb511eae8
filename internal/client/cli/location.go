package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var errLocateUsage = errors.New("usage: locate <latitude> <longitude>")

// Locate sends the given coordinates to the server. The server throttles
// updates, so a quick second call is refused.
func (a *App) Locate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errLocateUsage
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}

	loc, err := a.api.UpdateLocation(ctx, lat, lon)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Location updated: %g, %g\n", loc.Latitude, loc.Longitude)
	return nil
}
