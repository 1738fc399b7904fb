package commands

import (
	"fmt"
	"time"
)

// Layouts accepted for shift times on the command line, read in the scheduling timezone
// unless they carry an offset
var timeArgLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseTimeArg(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeArgLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected YYYY-MM-DDTHH:MM or RFC3339)", value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
