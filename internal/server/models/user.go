// Package models defines database row types shared by the server's
// repositories and services.
package models

import "time"

// User is an account row. PasswordHash is an argon2id PHC string.
// EmailConfirmedAt is set at registration time (accounts are confirmed
// immediately; there is no verification mail flow).
type User struct {
	ID               string
	Email            string
	Username         string
	PasswordHash     string
	CreatedAt        time.Time
	EmailConfirmedAt *time.Time
}
