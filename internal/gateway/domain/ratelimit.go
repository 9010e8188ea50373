package domain

import "time"

// RateWindow names one of the fixed, wall-clock aligned quota windows.
type RateWindow string

const (
	WindowMinute RateWindow = "minute"
	WindowHour   RateWindow = "hour"
	WindowDay    RateWindow = "day"
)

// RateWindows lists the windows in evaluation order, smallest first.
var RateWindows = []RateWindow{WindowMinute, WindowHour, WindowDay}

// Width returns the duration of the window.
func (w RateWindow) Width() time.Duration {
	switch w {
	case WindowMinute:
		return time.Minute
	case WindowHour:
		return time.Hour
	case WindowDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// BucketStart returns the start of the bucket containing now, computed as
// floor(unix seconds / width) * width so buckets are aligned in UTC.
func (w RateWindow) BucketStart(now time.Time) time.Time {
	width := int64(w.Width() / time.Second)
	if width <= 0 {
		return now.UTC()
	}
	secs := now.Unix()
	start := secs - mod(secs, width)
	return time.Unix(start, 0).UTC()
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// CounterKey identifies one RateWindowCounter.
type CounterKey struct {
	CredentialID string
	Window       RateWindow
	BucketStart  time.Time
}

// ResetAt is when the bucket identified by k rolls over.
func (k CounterKey) ResetAt() time.Time {
	return k.BucketStart.Add(k.Window.Width())
}
