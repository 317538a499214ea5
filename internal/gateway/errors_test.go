package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestClassify_APIErrors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		errType   string
		transient bool
		kind      string
	}{
		{name: "rate limit", status: http.StatusTooManyRequests, transient: true, kind: "rate_limit"},
		{name: "server fault", status: http.StatusInternalServerError, transient: true, kind: "server"},
		{name: "bad gateway", status: http.StatusBadGateway, transient: true, kind: "server"},
		{name: "unauthorized", status: http.StatusUnauthorized, transient: false, kind: "auth"},
		{name: "forbidden", status: http.StatusForbidden, transient: false, kind: "auth"},
		{name: "content filter", status: http.StatusBadRequest, errType: "content_filter", transient: false, kind: "content_policy"},
		{name: "bad request", status: http.StatusBadRequest, transient: false, kind: "invalid_request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &openai.APIError{HTTPStatusCode: tc.status, Type: tc.errType, Message: "x"}
			classified := classify(err)

			var tr *TransientError
			var nt *NonTransientError
			switch {
			case tc.transient:
				if !errors.As(classified, &tr) {
					t.Fatalf("expected TransientError, got %T", classified)
				}
				if tr.Kind != tc.kind {
					t.Errorf("expected kind %s, got %s", tc.kind, tr.Kind)
				}
			default:
				if !errors.As(classified, &nt) {
					t.Fatalf("expected NonTransientError, got %T", classified)
				}
				if nt.Kind != tc.kind {
					t.Errorf("expected kind %s, got %s", tc.kind, nt.Kind)
				}
			}
		})
	}
}

func TestClassify_ContextErrors(t *testing.T) {
	classified := classify(context.DeadlineExceeded)
	var tr *TransientError
	if !errors.As(classified, &tr) || tr.Kind != "timeout" {
		t.Errorf("deadline should classify as transient timeout, got %v", classified)
	}

	// Cancellation is the caller's choice, not a provider fault.
	if classified := classify(context.Canceled); !errors.Is(classified, context.Canceled) {
		t.Errorf("cancellation should pass through, got %v", classified)
	}
	if errors.As(classify(context.Canceled), &tr) {
		t.Error("cancellation must not be retried")
	}
}

func TestClassify_UnknownErrorIsTransient(t *testing.T) {
	var tr *TransientError
	if !errors.As(classify(errors.New("connection reset")), &tr) {
		t.Error("unclassified error should default to transient")
	}
}

func TestClassify_Unwrap(t *testing.T) {
	cause := &openai.APIError{HTTPStatusCode: 429}
	classified := classify(cause)

	var apiErr *openai.APIError
	if !errors.As(classified, &apiErr) {
		t.Error("classified error should unwrap to the SDK error")
	}
}
