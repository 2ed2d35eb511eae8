// Package location decides whether a location update may be written.
//
// Updates are throttled to one per minimum interval. The reference time is the
// lastUpdated claim baked into the session token at login. Because the token
// is not re-minted after an update, FreshnessServer mode additionally honours
// the last accepted update stored on the user record.
package location

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/dmitrijs2005/geotrack/internal/server/auth"
	"github.com/dmitrijs2005/geotrack/internal/server/models"
	"github.com/dmitrijs2005/geotrack/internal/timex"
)

// DefaultMinInterval is the minimum time between two accepted updates.
const DefaultMinInterval = 10 * time.Second

// Mode selects the reference point for the freshness check.
type Mode int

const (
	// FreshnessServer compares against the later of the token claim and the
	// stored last update.
	FreshnessServer Mode = iota
	// FreshnessToken compares against the token claim only.
	FreshnessToken
)

// ParseMode maps "server" and "token" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "server", "":
		return FreshnessServer, nil
	case "token":
		return FreshnessToken, nil
	default:
		return 0, fmt.Errorf("unknown freshness mode %q", s)
	}
}

func (m Mode) String() string {
	if m == FreshnessToken {
		return "token"
	}
	return "server"
}

// Policy is the minimum-interval rule. It holds no per-session state.
type Policy struct {
	minInterval time.Duration
	mode        Mode
	now         func() time.Time
}

// NewPolicy returns a policy with the given interval and mode.
func NewPolicy(minInterval time.Duration, mode Mode) *Policy {
	return &Policy{minInterval: minInterval, mode: mode, now: time.Now}
}

// WithClock replaces time.Now.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// Mode reports the configured freshness mode.
func (p *Policy) Mode() Mode { return p.mode }

// Admit returns common.ErrTooManyRequests when less than the minimum interval
// has passed since the reference time. stored is the record's last update and
// may be nil; it is ignored in FreshnessToken mode. A lastUpdated claim that
// does not parse makes the token unusable (common.ErrInvalidToken).
func (p *Policy) Admit(claims *auth.Claims, stored *time.Time) error {
	if claims == nil {
		return common.ErrInvalidToken
	}
	ref, err := timex.ParseISO(claims.LastUpdated)
	if err != nil {
		return fmt.Errorf("%w: lastUpdated claim: %v", common.ErrInvalidToken, err)
	}
	if p.mode == FreshnessServer && stored != nil && stored.After(ref) {
		ref = *stored
	}

	if p.now().Sub(ref) < p.minInterval {
		return common.ErrTooManyRequests
	}
	return nil
}

// ParseLocation checks that both coordinates are present and numeric, as
// decoded from JSON. No range check is applied.
func ParseLocation(lat, lon any) (models.Location, error) {
	la, ok := lat.(float64)
	if !ok {
		return models.Location{}, fmt.Errorf("%w: latitude must be a number", common.ErrMalformedPayload)
	}
	lo, ok := lon.(float64)
	if !ok {
		return models.Location{}, fmt.Errorf("%w: longitude must be a number", common.ErrMalformedPayload)
	}
	return models.Location{Latitude: la, Longitude: lo}, nil
}
