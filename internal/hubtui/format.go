package hubtui

import (
	"fmt"
	"time"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// relativeTime renders a timestamp the way the activity feed shows it:
// coarse buckets close to now, absolute dates beyond a week.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// clockTime renders a message timestamp for the thread view.
func clockTime(t time.Time) string {
	return t.Local().Format("15:04")
}
