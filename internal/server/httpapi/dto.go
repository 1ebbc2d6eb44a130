package httpapi

import (
	"time"

	"github.com/mkaranov/brospace/internal/server/models"
)

// --- requests ---

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type createProfileRequest struct {
	Username *string `json:"username"`
}

type patchProfileRequest struct {
	Username      *string    `json:"username"`
	Age           *int       `json:"age" validate:"omitempty,gte=0,lte=150"`
	MoodStreak    *int       `json:"mood_streak" validate:"omitempty,gte=0"`
	JoinedCircles []string   `json:"joined_circles"`
	LastActive    *time.Time `json:"last_active"`
}

type createMoodEntryRequest struct {
	Mood         string  `json:"mood" validate:"required"`
	MoodLevel    int     `json:"mood_level" validate:"required,gte=1,lte=10"`
	JournalEntry *string `json:"journal_entry"`
	IsAnonymous  bool    `json:"is_anonymous"`
}

// --- responses ---

type registerResponse struct {
	UserID           string     `json:"user_id"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

type tokenResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	UserID string `json:"user_id"`
}

type profileResponse struct {
	ID            string    `json:"id"`
	Username      *string   `json:"username,omitempty"`
	Age           *int      `json:"age,omitempty"`
	MoodStreak    int       `json:"mood_streak"`
	JoinedCircles []string  `json:"joined_circles"`
	CreatedAt     time.Time `json:"created_at"`
	LastActive    time.Time `json:"last_active"`
}

type moodEntryResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Mood         string    `json:"mood"`
	MoodLevel    int       `json:"mood_level"`
	JournalEntry *string   `json:"journal_entry,omitempty"`
	IsAnonymous  bool      `json:"is_anonymous"`
	CreatedAt    time.Time `json:"created_at"`
}

type moodEntryListResponse struct {
	Entries []moodEntryResponse `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes clients branch on. Everything else is display text.
const (
	codeTokenExpired    = "token_expired"
	codeInvalidToken    = "invalid_token"
	codeEmailTaken      = "email_taken"
	codeWeakPassword    = "weak_password"
	codeProfileNotFound = "profile_not_found"
	codeValidation      = "validation_failed"
)

func toProfileResponse(p *models.Profile) profileResponse {
	circles := p.JoinedCircles
	if circles == nil {
		circles = []string{}
	}
	return profileResponse{
		ID:            p.ID,
		Username:      p.Username,
		Age:           p.Age,
		MoodStreak:    p.MoodStreak,
		JoinedCircles: circles,
		CreatedAt:     p.CreatedAt,
		LastActive:    p.LastActive,
	}
}

func toMoodEntryResponse(e *models.MoodEntry) moodEntryResponse {
	return moodEntryResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		Mood:         e.Mood,
		MoodLevel:    e.MoodLevel,
		JournalEntry: e.JournalEntry,
		IsAnonymous:  e.IsAnonymous,
		CreatedAt:    e.CreatedAt,
	}
}
