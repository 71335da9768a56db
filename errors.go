package adapter

import (
	"errors"
	"fmt"
)

// ErrHTTP is returned when the remote API responds with a non-2xx status.
// Code and RetryAfter are populated when the body parsed as JSON with an
// error object and/or the response carried a retry-delay header.
type ErrHTTP struct {
	Status     int
	Body       string
	Code       string
	RetryAfter int // milliseconds; 0 when no hint was present
}

func (e *ErrHTTP) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("responses API error (status %d, code %s): %s", e.Status, e.Code, e.Body)
	}
	return fmt.Sprintf("responses API error (status %d): %s", e.Status, e.Body)
}

// ErrMissingAPIKey is returned lazily, on first use, when the adapter was
// constructed without an API key.
var ErrMissingAPIKey = errors.New("responses adapter: missing API key")

// ErrContextOverflow wraps a context_length_exceeded failure with a
// user-actionable remediation message. The chain has already been reset by
// the time this is returned.
type ErrContextOverflow struct {
	Message string
}

func (e *ErrContextOverflow) Error() string {
	return "context window exceeded: " + e.Message +
		" (the conversation was too large for this model; try enabling auto-compaction, " +
		"manually compacting the conversation, or switching to a model with a larger context window)"
}

// ErrProtocolViolation covers a missing or empty output array on an
// otherwise "completed" response. A non-array output fails JSON decoding and
// is returned as a plain decode error, not as ErrProtocolViolation.
type ErrProtocolViolation struct {
	Message      string
	ChainWasLive bool
}

func (e *ErrProtocolViolation) Error() string {
	if e.ChainWasLive {
		return "protocol violation (chain reset, retry): " + e.Message
	}
	return "protocol violation (no chain to reset): " + e.Message
}

// ErrEmptyOutput signals that translation produced no usable content — the
// model-confusion recovery case distinguished from ErrProtocolViolation
// because the wire response was otherwise well-formed.
type ErrEmptyOutput struct {
	ChainWasLive bool
}

func (e *ErrEmptyOutput) Error() string {
	if e.ChainWasLive {
		return "empty response from model (chain reset; retrying should recover)"
	}
	return "empty response from model (no chain was active; try a different model)"
}

// ErrTerminalStatus covers a response that reached "failed" or "cancelled".
type ErrTerminalStatus struct {
	Status  ResponseStatus
	Message string
}

func (e *ErrTerminalStatus) Error() string {
	return fmt.Sprintf("response %s: %s", e.Status, e.Message)
}

// ErrCompressionFailed wraps the underlying cause when summary generation
// fails; per contract, compression must fail loudly rather than proceed
// with a half-compressed conversation.
type ErrCompressionFailed struct {
	Cause error
}

func (e *ErrCompressionFailed) Error() string {
	return "context compression failed: " + e.Cause.Error()
}

func (e *ErrCompressionFailed) Unwrap() error { return e.Cause }

// ErrGarbledOutput is substituted for the translated content when the
// garbled-output heuristic (garbled.go) flags a response as model confusion.
type ErrGarbledOutput struct {
	Pattern string
}

func (e *ErrGarbledOutput) Error() string {
	return "model returned a confused or repetitive response (matched pattern: " + e.Pattern + ")"
}
