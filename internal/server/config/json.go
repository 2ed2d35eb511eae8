package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/flagx"
	"github.com/dmitrijs2005/geotrack/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept "10s"-style strings or integer nanoseconds. Pointer fields tell
// "absent" apart from an explicit zero.
type JsonConfig struct {
	EndpointAddrHTTP       string          `json:"endpoint_addr_http"`
	DatabaseDSN            string          `json:"database_dsn"`
	SecretKey              string          `json:"secret_key"`
	SessionTTL             *timex.Duration `json:"session_ttl"`
	LocationUpdateInterval *timex.Duration `json:"location_update_interval"`
	LocationFreshness      string          `json:"location_freshness"`
	LoginRateLimit         int             `json:"login_rate_limit"`
	LoginRateWindow        *timex.Duration `json:"login_rate_window"`
	RateLimiterMaxKeys     int             `json:"rate_limiter_max_keys"`
	RateLimiterBackend     string          `json:"rate_limiter_backend"`
	RedisAddr              string          `json:"redis_addr"`
	RedisPassword          string          `json:"redis_password"`
	S3RootUser             string          `json:"s3_root_user"`
	S3RootPassword         string          `json:"s3_root_password"`
	S3Bucket               string          `json:"s3_bucket"`
	S3Region               string          `json:"s3_region"`
	S3BaseEndpoint         string          `json:"s3_base_endpoint"`
	SecureCookies          *bool           `json:"secure_cookies"`
	TrustedProxies         []string        `json:"trusted_proxies"`
	LogLevel               string          `json:"log_level"`
	ReadTimeout            *timex.Duration `json:"read_timeout"`
	WriteTimeout           *timex.Duration `json:"write_timeout"`
}

// parseJson overlays values from the JSON file named by -c/-config.
// Fields missing from the file keep their current values. A file that cannot
// be read or decoded is a startup error, so the function panics.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.LocationUpdateInterval, c.LocationUpdateInterval)
	setString(&config.LocationFreshness, c.LocationFreshness)
	setInt(&config.LoginRateLimit, c.LoginRateLimit)
	setDuration(&config.LoginRateWindow, c.LoginRateWindow)
	setInt(&config.RateLimiterMaxKeys, c.RateLimiterMaxKeys)
	setString(&config.RateLimiterBackend, c.RateLimiterBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	setString(&config.LogLevel, c.LogLevel)
	setDuration(&config.ReadTimeout, c.ReadTimeout)
	setDuration(&config.WriteTimeout, c.WriteTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
