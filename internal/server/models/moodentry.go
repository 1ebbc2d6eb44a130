package models

import "time"

// MoodEntry is a single mood check-in journal row.
type MoodEntry struct {
	ID           string
	UserID       string
	Mood         string
	MoodLevel    int
	JournalEntry *string
	IsAnonymous  bool
	CreatedAt    time.Time
}
