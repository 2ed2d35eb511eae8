// Package common contains shared constants and sentinel errors used across
// GeoTrack components.
package common

// AuthCookieName is the cookie carrying the signed session token.
const AuthCookieName = "auth_token"

// AuthorizationHeaderName is consulted when the session cookie is absent
// (non-browser clients send "Bearer <token>").
const AuthorizationHeaderName = "Authorization"
