package provider

import (
	"fmt"
	"strings"
	"time"
)

// Period is a statistics time window.
type Period int

const (
	Period24h Period = iota
	Period7d
	Period30d
)

func (p Period) String() string {
	switch p {
	case Period24h:
		return "24h"
	case Period7d:
		return "7d"
	case Period30d:
		return "30d"
	default:
		return "unknown"
	}
}

// Duration returns the length of the window.
func (p Period) Duration() time.Duration {
	switch p {
	case Period7d:
		return 7 * 24 * time.Hour
	case Period30d:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ParsePeriod accepts "24h", "1d", "7d" and "30d". Empty input means 24h.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "24h", "1d":
		return Period24h, nil
	case "7d":
		return Period7d, nil
	case "30d":
		return Period30d, nil
	}
	return 0, fmt.Errorf("unsupported period: %q", s)
}
