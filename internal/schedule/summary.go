package schedule

import "strings"

// ParseSummary splits "<Title>: <Season>x<Episode>". Summaries that do not
// have exactly that shape are reported with ok=false.
func ParseSummary(summary string) (title, season, episode string, ok bool) {
	parts := strings.Split(summary, ": ")
	if len(parts) != 2 {
		return "", "", "", false
	}
	se := strings.Split(parts[1], "x")
	if len(se) != 2 {
		return "", "", "", false
	}
	return parts[0], se[0], se[1], true
}

// SplitReminder is the looser split used for reminders: only the title
// separator is required.
func SplitReminder(summary string) (show, episode string, ok bool) {
	parts := strings.Split(summary, ": ")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// DisplayNumber strips leading zeros, keeping a lone "0".
func DisplayNumber(token string) string {
	trimmed := strings.TrimLeft(token, "0")
	if trimmed == "" && token != "" {
		return "0"
	}
	return trimmed
}
