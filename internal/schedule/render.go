package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	NoShowsMessage     = "No upcoming shows scheduled for this week."
	WeeklyErrorMessage = "Error fetching weekly schedule. Please try again later."
	weekHeader         = "📅 This week's TV schedule (from today to Sunday):"
	dayHeadingLayout   = "Monday, January 02"
	statusTimeLayout   = "2006-01-02 15:04:05"
)

// RenderWeek formats the grouped week for chat.
func RenderWeek(w Week) string {
	if w.Empty() {
		return NoShowsMessage
	}

	var b strings.Builder
	b.WriteString(weekHeader)
	b.WriteString("\n")

	for _, d := range w.Days {
		fmt.Fprintf(&b, "\n👉 %s:\n", d.Date.Format(dayHeadingLayout))
		for _, show := range d.Shows {
			seasons := show.Seasons()
			if len(seasons) == 1 {
				fmt.Fprintf(&b, "- %s (Season %s)\n", show.Title, seasons[0])
				for _, ep := range show.Episodes {
					fmt.Fprintf(&b, "  • Episode %s\n", DisplayNumber(ep.Episode))
				}
				continue
			}
			fmt.Fprintf(&b, "- %s (Seasons %s)\n", show.Title, strings.Join(seasons, ", "))
			for _, ep := range show.Episodes {
				fmt.Fprintf(&b, "  • Season %s, Episode %s\n", ep.Season, DisplayNumber(ep.Episode))
			}
		}
	}

	return b.String()
}

// RenderReminder formats the "airs tomorrow" message for one summary.
func RenderReminder(summary string) string {
	show, episode, ok := SplitReminder(summary)
	if !ok {
		return fmt.Sprintf("Reminder: %s airs tomorrow!", summary)
	}
	return fmt.Sprintf("Reminder: %s\n🔴 Episode: %s airs tomorrow!", show, episode)
}

// RenderStatus formats the reply to the status command. lastSync may be zero.
func RenderStatus(now, lastSync time.Time) string {
	var b strings.Builder
	b.WriteString("🤖 TV Notifier Bot is active and running!\n")
	fmt.Fprintf(&b, "Current time: %s\n", now.Format(statusTimeLayout))
	if !lastSync.IsZero() {
		fmt.Fprintf(&b, "Last feed refresh: %s\n", lastSync.Format(statusTimeLayout))
	}
	b.WriteString("\nAvailable commands:\n")
	b.WriteString("• /weekly - View this week's TV schedule\n")
	b.WriteString("• /start - Check bot status")
	return b.String()
}
