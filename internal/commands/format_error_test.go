package commands

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
)

func TestFormatErrorMessage_Nil(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}
}

func TestFormatErrorMessage_APIError(t *testing.T) {
	e := apierrors.NewAPIErrorWithBody(503, "/chat", "chat failed", `{"detail":"Starting up..."}`)
	out := formatErrorMessage(fmt.Errorf("chat request failed: %w", e), "Error")

	if !strings.Contains(out, "HTTP Status: 503") {
		t.Errorf("expected HTTP status, got: %s", out)
	}
	if !strings.Contains(out, "Starting up...") {
		t.Errorf("expected response body, got: %s", out)
	}
}

func TestFormatErrorMessage_Hints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"unconfigured", apierrors.ErrUnconfigured, "config set api_url"},
		{"empty input", apierrors.ErrEmptyInput, "-f"},
		{"network", apierrors.NewNetworkError("chat", "http://x/chat", errors.New("refused")), "stub-backend"},
		{"parse", apierrors.NewParseError("answer missing", "answer"), "not understood"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(fmt.Errorf("wrapped: %w", tt.err), "Error")
			if !strings.Contains(out, "Hint") || !strings.Contains(out, tt.hint) {
				t.Errorf("expected hint containing %q, got: %s", tt.hint, out)
			}
		})
	}
}

func TestFormatErrorMessage_PlainError(t *testing.T) {
	out := formatErrorMessage(errors.New("boom"), "Error")
	if !strings.Contains(out, "Error: boom") {
		t.Errorf("expected context and message, got: %s", out)
	}
	if strings.Contains(out, "Hint") {
		t.Errorf("plain errors carry no hint, got: %s", out)
	}
}
