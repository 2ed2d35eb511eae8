// Package api is the HTTP client for the GeoTrack server.
//
// The session lives in the auth_token cookie, so a Client keeps a cookie jar
// and behaves like a browser: Login stores the cookie and Logout drops it.
// Error responses are decoded into *Error values; transport failures wrap
// ErrUnavailable.
package api
