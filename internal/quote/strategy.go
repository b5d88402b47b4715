package quote

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy governs how multiple providers are consulted.
type Strategy string

// Fallback tries providers in order and stops at the first valid response.
const Fallback Strategy = "FALLBACK"

var (
	// ErrUnsupportedStrategy matches every *UnsupportedStrategyError.
	ErrUnsupportedStrategy = errors.New("unsupported strategy")
	// ErrEmptyRequest is returned by Fetch when sources or quotes are empty.
	ErrEmptyRequest = errors.New("price request needs at least one source and one quote")
	// ErrInvalidResponse wraps the reason a provider response was rejected.
	ErrInvalidResponse = errors.New("invalid provider response")
)

// UnsupportedStrategyError is returned by every engine operation when the
// engine was built with a strategy that has no implementation.
type UnsupportedStrategyError struct {
	Strategy Strategy
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("Strategy %s is not implemented yet", e.Strategy)
}

func (e *UnsupportedStrategyError) Is(target error) bool {
	return target == ErrUnsupportedStrategy
}

// ParseStrategy normalises s. It does not reject unknown values; that
// happens when an operation runs.
func ParseStrategy(s string) Strategy {
	return Strategy(strings.ToUpper(strings.TrimSpace(s)))
}

func (s Strategy) String() string { return string(s) }

func (s Strategy) validate() error {
	switch s {
	case Fallback:
		return nil
	default:
		return &UnsupportedStrategyError{Strategy: s}
	}
}
