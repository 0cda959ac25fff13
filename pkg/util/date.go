package util

import (
	"strings"
	"time"
)

var dateTplReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl formats t using a template with placeholders.
//
// Supported placeholders: YYYY, YY, MM, DD, hh, mm, ss.
//
//	FormatDateTpl(t, "YYYY-MM-DD hh:mm") // "2023-11-10 00:00"
//
// A zero time formats as an empty string.
func FormatDateTpl(t time.Time, tpl string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTplReplacer.Replace(tpl))
}
