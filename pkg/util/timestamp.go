package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// ParseTimestamp converts a user supplied position into seconds. Accepted
// forms are plain seconds ("90"), clock notation ("1:30", "1:02:03") and Go
// durations ("1m30s").
func ParseTimestamp(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTimestamp
	}

	if strings.ContainsAny(s, "hms") {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		return int(d / time.Second), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		// minutes and seconds after the first field must stay below 60
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatSeconds renders seconds as m:ss or h:mm:ss.
func FormatSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
