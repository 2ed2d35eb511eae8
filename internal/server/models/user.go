package models

import "time"

// Location is a latitude/longitude pair as reported by a client. Values are
// stored as given.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// User is the persisted user record.
type User struct {
	UUID         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLocation *Location
	LastUpdated  *time.Time
}
