package models

import "time"

// Profile is the durable per-user wellness record. ID equals the owning
// user's ID (one profile per user). MoodStreak only grows through check-ins.
type Profile struct {
	ID            string
	Username      *string
	Age           *int
	MoodStreak    int
	JoinedCircles []string
	CreatedAt     time.Time
	LastActive    time.Time
}

// ProfilePatch carries the optional fields of a partial profile update.
// Nil members are left untouched.
type ProfilePatch struct {
	Username      *string
	Age           *int
	MoodStreak    *int
	JoinedCircles []string
	LastActive    *time.Time
}
