package util

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"90", 90},
		{" 45 ", 45},
		{"1:30", 90},
		{"01:02:03", 3723},
		{"1m30s", 90},
		{"2h", 7200},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimestampRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1:75", "1:2:3:4", "-5", "-1m"} {
		if _, err := ParseTimestamp(in); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("ParseTimestamp(%q) error = %v, want ErrInvalidTimestamp", in, err)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(75); got != "1:15" {
		t.Errorf("FormatSeconds(75) = %q", got)
	}
	if got := FormatSeconds(3723); got != "1:02:03" {
		t.Errorf("FormatSeconds(3723) = %q", got)
	}
}

func TestFormatDateTpl(t *testing.T) {
	ts := time.Date(2023, 11, 10, 8, 5, 0, 0, time.UTC)
	if got := FormatDateTpl(ts, "YYYY.MM.DD hh:mm"); got != "2023.11.10 08:05" {
		t.Errorf("FormatDateTpl() = %q", got)
	}
	if got := FormatDateTpl(time.Time{}, "YYYY"); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
}
