package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/geotrack/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret key
//	-t int      session validity, minutes
//	-i int      minimum interval between location updates, seconds
//	-f string   location freshness mode ("token" or "server")
//	-l int      login attempts per window
//	-w int      login rate window, seconds
//	-m string   rate limiter backend ("memory" or "redis")
//	-r string   redis address
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-v string   log level
//	-x string   trusted proxies, comma-separated IPs or CIDRs
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with the -c/-config flag.
//   - Duration flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-i", "-f", "-l", "-w", "-m", "-r", "-u", "-p", "-b", "-g", "-e", "-v", "-x",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session validity (in minutes)")
	locationInterval := fs.Int("i", int(config.LocationUpdateInterval.Seconds()), "minimum interval between location updates (in seconds)")
	fs.StringVar(&config.LocationFreshness, "f", config.LocationFreshness, "location freshness mode (token|server)")

	fs.IntVar(&config.LoginRateLimit, "l", config.LoginRateLimit, "login attempts per window")
	loginWindow := fs.Int("w", int(config.LoginRateWindow.Seconds()), "login rate window (in seconds)")
	fs.StringVar(&config.RateLimiterBackend, "m", config.RateLimiterBackend, "rate limiter backend (memory|redis)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level (debug|info|warn|error)")
	proxies := fs.String("x", strings.Join(config.TrustedProxies, ","), "trusted proxies (comma-separated IPs or CIDRs)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.LocationUpdateInterval = time.Duration(*locationInterval) * time.Second
	config.LoginRateWindow = time.Duration(*loginWindow) * time.Second
	config.TrustedProxies = splitList(*proxies)
}
