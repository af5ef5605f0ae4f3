// Package elapsed renders the time an order has been open.
package elapsed

import (
	"fmt"
	"time"
)

// Since formats now-start as HH:MM:SS. Hours keep growing past 99.
func Since(start, now time.Time) string {
	return Format(now.Sub(start))
}

func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}
