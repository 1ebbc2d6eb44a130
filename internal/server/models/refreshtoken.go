package models

import "time"

// RefreshToken is a server-stored opaque token row; rotated on every use.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
