package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// TransientError marks a provider failure that is eligible for the
// retry/backoff policy: rate limits, timeouts, transient network or server
// faults.
type TransientError struct {
	Kind string // rate_limit, timeout, server, network
	Err  error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient provider error (%s): %v", e.Kind, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// NonTransientError marks a provider failure that retrying cannot fix:
// auth failures, malformed requests, content-policy rejections. It is
// surfaced immediately, untried, with the provider's classification kept.
type NonTransientError struct {
	Kind string // auth, invalid_request, content_policy
	Err  error
}

func (e *NonTransientError) Error() string {
	return fmt.Sprintf("provider error (%s): %v", e.Kind, e.Err)
}

func (e *NonTransientError) Unwrap() error { return e.Err }

// RetriesExhaustedError reports that every allowed attempt failed with a
// transient error.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("provider unavailable after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// classify maps an SDK error onto the transient/non-transient taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Kind: "timeout", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		// Caller abandoned the pipeline; not a provider fault and not
		// worth retrying.
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &TransientError{Kind: "rate_limit", Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &TransientError{Kind: "server", Err: err}
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return &NonTransientError{Kind: "auth", Err: err}
		case apiErr.Type == "content_filter" || apiErr.Code == "content_policy_violation":
			return &NonTransientError{Kind: "content_policy", Err: err}
		default:
			return &NonTransientError{Kind: "invalid_request", Err: err}
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.HTTPStatusCode == 429:
			return &TransientError{Kind: "rate_limit", Err: err}
		case reqErr.HTTPStatusCode >= 500:
			return &TransientError{Kind: "server", Err: err}
		case reqErr.HTTPStatusCode == 401 || reqErr.HTTPStatusCode == 403:
			return &NonTransientError{Kind: "auth", Err: err}
		default:
			return &NonTransientError{Kind: "invalid_request", Err: err}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Kind: "network", Err: err}
	}

	// Unclassified SDK/transport faults are treated as transient so a
	// flaky connection does not kill a pipeline run outright.
	return &TransientError{Kind: "network", Err: err}
}
