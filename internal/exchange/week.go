package exchange

import (
	"fmt"
	"math"
	"time"
)

const submissionWindow = 7 * 24 * time.Hour

// nextResetTime returns the upcoming Monday 00:00 UTC. The boundary is always
// a future instant: on a Monday it points at the next one, never at the
// current day's midnight.
func nextResetTime(now time.Time) time.Time {
	now = now.UTC()
	days := (8 - int(now.Weekday())) % 7
	if now.Weekday() == time.Monday {
		days = 7
	}
	y, m, d := now.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC)
}

// formatRemaining renders the distance to the reset boundary the way the
// submission form shows it ("3 days", "about 5 hours", "12 minutes").
func formatRemaining(now, boundary time.Time) string {
	d := boundary.Sub(now)
	switch {
	case d < time.Minute:
		return "less than a minute"
	case d < 45*time.Minute:
		m := int(math.Round(d.Minutes()))
		if m <= 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	case d < 24*time.Hour:
		h := int(math.Round(d.Hours()))
		if h <= 1 {
			return "about 1 hour"
		}
		return fmt.Sprintf("about %d hours", h)
	default:
		days := int(math.Round(d.Hours() / 24))
		if days <= 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}
