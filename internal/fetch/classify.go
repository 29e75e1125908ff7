package fetch

import "net/http"

// Outcome is the coarse classification of one completed fetch used by
// the retry controller.
type Outcome int

const (
	// OutcomeOK means the response is usable.
	OutcomeOK Outcome = iota
	// OutcomeRetryable covers transport failures and the status codes
	// the catalog API emits under rate limiting or bot detection.
	OutcomeRetryable
	// OutcomeTerminal covers statuses a retry cannot fix.
	OutcomeTerminal
)

// Classify maps a fetch result to an Outcome. A non-nil error is always
// a transport failure and therefore retryable; timeouts land here too.
func Classify(status int, err error) Outcome {
	if err != nil {
		return OutcomeRetryable
	}
	switch {
	case status >= 200 && status < 300:
		return OutcomeOK
	case status == http.StatusForbidden,
		status == http.StatusTooManyRequests,
		status == http.StatusServiceUnavailable:
		return OutcomeRetryable
	default:
		return OutcomeTerminal
	}
}
