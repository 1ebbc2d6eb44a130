package cli

import (
	"context"
	"strconv"
	"strings"
)

func (a *App) CheckIn(ctx context.Context) error {
	mood, err := GetSimpleText(a.reader, "How are you feeling? (one word, e.g. calm, stressed, happy)", a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}

	levelRaw, err := GetSimpleText(a.reader, "Mood level 1-10", a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}
	level, err := strconv.Atoi(levelRaw)
	if err != nil {
		a.printf("Mood level must be a number between 1 and 10\n")
		return err
	}

	journal, err := GetMultiline(a.reader, "Journal entry (optional)", a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}
	var journalEntry *string
	if journal != "" {
		journalEntry = &journal
	}

	anonRaw, err := GetSimpleText(a.reader, "Share anonymously? (y/N)", a.out)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}
	anonymous := strings.EqualFold(anonRaw, "y") || strings.EqualFold(anonRaw, "yes")

	entry, err := a.moods.CheckIn(ctx, mood, level, journalEntry, anonymous)
	if err != nil {
		a.printf("Check-in failed: %v\n", err)
		return err
	}

	a.printf("Checked in: %s (%d/10)\n", entry.Mood, entry.MoodLevel)
	if profile := a.manager.Profile(); profile != nil {
		a.printf("Mood streak: %d\n", profile.MoodStreak)
	}
	return nil
}
