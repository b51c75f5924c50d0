package ai

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuotaExceeded marks a provider-reported rate/quota exhaustion.
	// Handlers surface it as 429 instead of a generic server error.
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrProvider marks any other provider failure: network errors,
	// timeouts, malformed or empty completions.
	ErrProvider = errors.New("provider request failed")
)

// classify maps a raw provider error onto the taxonomy. Vendor SDKs do not
// expose a stable quota error type, so this sniffs the message the same way
// the status line reports it.
func classify(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}

	return fmt.Errorf("%w: %v", ErrProvider, err)
}
