package attendance

import (
	"fmt"
	"time"
)

// Elapsed is the running working time since checkIn as of now. It is an
// estimate for display only; clock skew that puts now before checkIn yields zero.
func Elapsed(checkIn, now time.Time) time.Duration {
	if now.Before(checkIn) {
		return 0
	}
	return now.Sub(checkIn)
}

// FormatDuration renders d as hours and zero-padded minutes, e.g. "7h 05m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Minute)
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
