package cli

import (
	"context"
	"strings"
)

func (a *App) Status(ctx context.Context) error {
	if a.manager.Loading() {
		a.printf("Session is still loading...\n")
		return nil
	}

	user := a.manager.CurrentUser()
	if user == nil {
		a.printf("Signed out\n")
		return nil
	}

	a.printf("User: %s\n", user.ID)

	profile := a.manager.Profile()
	if profile == nil {
		a.printf("Profile not resolved yet\n")
		return nil
	}

	if profile.Username != nil {
		a.printf("Username: %s\n", *profile.Username)
	}
	a.printf("Mood streak: %d\n", profile.MoodStreak)
	if len(profile.JoinedCircles) > 0 {
		a.printf("Circles: %s\n", strings.Join(profile.JoinedCircles, ", "))
	}
	a.printf("Last active: %s\n", profile.LastActive.Local().Format("2006-01-02 15:04"))
	return nil
}
