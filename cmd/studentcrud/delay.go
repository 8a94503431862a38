package main

import (
	"fmt"
	"time"
)

// parseDelay accepts a Go duration or a plain number of milliseconds
func parseDelay(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("delay must not be negative: %s", value)
		}
		return d, nil
	}

	var ms int
	if _, err := fmt.Sscanf(value, "%d", &ms); err != nil || fmt.Sprint(ms) != value {
		return 0, fmt.Errorf("invalid delay %q (use a duration like 500ms)", value)
	}
	if ms < 0 {
		return 0, fmt.Errorf("delay must not be negative: %s", value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
