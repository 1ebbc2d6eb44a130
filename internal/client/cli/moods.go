package cli

import (
	"context"
)

const moodHistoryLimit = 10

func (a *App) Moods(ctx context.Context) error {
	entries, err := a.moods.History(ctx, moodHistoryLimit)
	if err != nil {
		a.printf("error: %v\n", err)
		return err
	}

	if len(entries) == 0 {
		a.printf("No mood entries yet. Try 'checkin'.\n")
		return nil
	}

	for _, e := range entries {
		a.printf("%s  %-10s %2d/10", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Mood, e.MoodLevel)
		if e.JournalEntry != nil {
			a.printf("  %s", *e.JournalEntry)
		}
		a.printf("\n")
	}
	return nil
}
