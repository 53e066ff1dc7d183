package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the textual time format shared with users and the reasoning service
const TimeLayout = "2006-01-02 15:04"

// alternate layouts accepted from form-style input
var inputLayouts = []string{TimeLayout, "2006-01-02T15:04", "2006-01-02 15:04:05"}

// ParseTime parses s in TimeLayout, interpreting it in loc
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return t, nil
}

// ParseInputTime accepts TimeLayout plus the ISO "T" and seconds variants
func ParseInputTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
}

// FormatTime renders t in TimeLayout
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
