package config

import (
	"os"
	"strings"
)

// parseEnv overlays settings from the process environment. Unset or empty
// variables leave the current value alone.
//
//	HTTP_ADDR, DATABASE_DSN, JWT_SECRET, REDIS_ADDR, REDIS_PASSWORD,
//	AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, S3_BUCKET_NAME, AWS_REGION,
//	S3_ENDPOINT, LOG_LEVEL, RATE_LIMITER_BACKEND, LOCATION_FRESHNESS
//
// TRUSTED_PROXIES is a comma-separated list of IPs or CIDRs.
// APP_ENV=production turns on Secure session cookies.
func parseEnv(config *Config) {
	lookup := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	lookup("HTTP_ADDR", &config.EndpointAddrHTTP)
	lookup("DATABASE_DSN", &config.DatabaseDSN)
	lookup("JWT_SECRET", &config.SecretKey)
	lookup("REDIS_ADDR", &config.RedisAddr)
	lookup("REDIS_PASSWORD", &config.RedisPassword)
	lookup("AWS_ACCESS_KEY_ID", &config.S3RootUser)
	lookup("AWS_SECRET_ACCESS_KEY", &config.S3RootPassword)
	lookup("S3_BUCKET_NAME", &config.S3Bucket)
	lookup("AWS_REGION", &config.S3Region)
	lookup("S3_ENDPOINT", &config.S3BaseEndpoint)
	lookup("LOG_LEVEL", &config.LogLevel)
	lookup("RATE_LIMITER_BACKEND", &config.RateLimiterBackend)
	lookup("LOCATION_FRESHNESS", &config.LocationFreshness)

	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		config.TrustedProxies = splitList(v)
	}

	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		config.SecureCookies = true
	}
}
