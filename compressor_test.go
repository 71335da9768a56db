package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestPipeline(t *testing.T, handler http.HandlerFunc) (*Pipeline, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	p := NewPipeline(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4.1"},
		WithPollInterval(time.Millisecond))
	return p, srv
}

func completedResponseHandler(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := WireResponse{
			ID:     "resp_1",
			Status: StatusCompleted,
			Output: []OutputItem{
				{Type: "message", Role: "assistant", Content: []OutputContentFragment{{Type: "output_text", Text: text}}},
			},
			Usage: &WireUsage{InputTokens: 100, OutputTokens: 50},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestSpliceCompressedPreservesFirstAndLast(t *testing.T) {
	messages := []Message{
		UserMessage("task anchor"),
		UserMessage("turn 1"),
		AssistantMessage("turn 2"),
		UserMessage("turn 3"),
		AssistantMessage("turn 4"),
	}
	out := spliceCompressed(messages, "the summary", true, 3)

	if len(out) != 5 { // first + summary + last 3
		t.Fatalf("expected 5 messages, got %d", len(out))
	}
	if out[0].Text != "task anchor" {
		t.Errorf("expected first message preserved, got %q", out[0].Text)
	}
	if out[1].Role != RoleUser || out[1].Text == "" {
		t.Errorf("expected a synthetic summary message at index 1, got %+v", out[1])
	}
	if out[2].Text != "turn 2" || out[3].Text != "turn 3" || out[4].Text != "turn 4" {
		t.Errorf("unexpected tail: %+v", out[2:])
	}
}

func TestSpliceCompressedNoDuplicateWhenTailReachesFirst(t *testing.T) {
	messages := []Message{UserMessage("only message")}
	out := spliceCompressed(messages, "summary", true, 3)
	if len(out) != 2 {
		t.Fatalf("expected first + summary only (no duplicate), got %d: %+v", len(out), out)
	}
}

func TestManualCompactSplicesAndReturnsCompressed(t *testing.T) {
	p, srv := newTestPipeline(t, completedResponseHandler("## Primary Request\nsomething happened"))
	defer srv.Close()

	messages := []Message{
		UserMessage("task anchor"),
		UserMessage("turn 1"),
		AssistantMessage("turn 2"),
		UserMessage("turn 3"),
	}
	compressed, err := p.ManualCompact(context.Background(), messages)
	if err != nil {
		t.Fatalf("ManualCompact failed: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("expected a non-empty compressed sequence")
	}
	found := false
	for _, m := range compressed {
		if m.Role == RoleUser && len(m.Text) > 0 && m.Text != "task anchor" {
			found = true
		}
	}
	if !found {
		t.Error("expected a synthetic summary message in the compressed output")
	}
}

func TestCompressionNoticeIncludesStatsAndDirective(t *testing.T) {
	stats := CompressionStats{MessagesBefore: 10, MessagesAfter: 3, TokensBefore: 5000, TokensAfter: 800, TokensSaved: 4200}
	notice := compressionNotice("the summary body", stats)
	for _, want := range []string{"10 messages", "5000 tokens", "3 messages", "800 tokens", "4200 tokens", "the summary body"} {
		if !strings.Contains(notice, want) {
			t.Errorf("expected notice to contain %q, got %q", want, notice)
		}
	}
	if !strings.Contains(strings.ToLower(notice), "continue") {
		t.Error("expected notice to include a continuation directive")
	}
}

func TestManualCompactPropagatesFailure(t *testing.T) {
	p, srv := newTestPipeline(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"internal","message":"boom"}}`))
	})
	defer srv.Close()

	_, err := p.ManualCompact(context.Background(), []Message{UserMessage("hi")})
	if err == nil {
		t.Fatal("expected ManualCompact to propagate the underlying failure")
	}
	var compErr *ErrCompressionFailed
	if !errors.As(err, &compErr) {
		t.Errorf("expected *ErrCompressionFailed, got %T: %v", err, err)
	}
}
