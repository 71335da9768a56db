package adapter

import (
	"errors"
	"testing"
)

func TestErrHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  *ErrHTTP
		want string
	}{
		{"no code", &ErrHTTP{Status: 500, Body: "internal server error"}, "responses API error (status 500): internal server error"},
		{"with code", &ErrHTTP{Status: 429, Body: "too many requests", Code: "rate_limited"}, "responses API error (status 429, code rate_limited): too many requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrContextOverflowError(t *testing.T) {
	e := &ErrContextOverflow{Message: "too many tokens"}
	got := e.Error()
	if got == "" || got == "too many tokens" {
		t.Errorf("expected a wrapped remediation message, got %q", got)
	}
}

func TestErrProtocolViolationChainState(t *testing.T) {
	withChain := &ErrProtocolViolation{Message: "bad output", ChainWasLive: true}
	withoutChain := &ErrProtocolViolation{Message: "bad output", ChainWasLive: false}
	if withChain.Error() == withoutChain.Error() {
		t.Error("expected ChainWasLive to change the message")
	}
}

func TestErrEmptyOutputChainState(t *testing.T) {
	withChain := &ErrEmptyOutput{ChainWasLive: true}
	withoutChain := &ErrEmptyOutput{ChainWasLive: false}
	if withChain.Error() == withoutChain.Error() {
		t.Error("expected ChainWasLive to change the message")
	}
}

func TestErrTerminalStatusError(t *testing.T) {
	e := &ErrTerminalStatus{Status: StatusCancelled, Message: "response was cancelled"}
	want := "response cancelled: response was cancelled"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrCompressionFailedUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &ErrCompressionFailed{Cause: cause}
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestErrGarbledOutputError(t *testing.T) {
	e := &ErrGarbledOutput{Pattern: "<tool_name>"}
	if got := e.Error(); got == "" {
		t.Error("expected a non-empty message")
	}
}

func TestErrorTypesImplementError(t *testing.T) {
	var (
		_ error = (*ErrHTTP)(nil)
		_ error = (*ErrContextOverflow)(nil)
		_ error = (*ErrProtocolViolation)(nil)
		_ error = (*ErrEmptyOutput)(nil)
		_ error = (*ErrTerminalStatus)(nil)
		_ error = (*ErrCompressionFailed)(nil)
		_ error = (*ErrGarbledOutput)(nil)
	)
	if ErrMissingAPIKey == nil {
		t.Error("expected ErrMissingAPIKey to be set")
	}
}
