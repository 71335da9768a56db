package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Config is the adapter's construction-time configuration.
type Config struct {
	APIKey                 string
	BaseURL                string
	Model                  string
	EnableStatefulChaining bool
	MaxOutputTokens        int
	Temperature            float64
	AutoCompactEnabled     bool
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-5-codex"
	}
	if c.Temperature == 0 {
		c.Temperature = 1.0
	}
	return c
}

// Pipeline is the C5 Response Pipeline: the top-level orchestration that
// owns the previous-response cache and ties together C1-C4.
type Pipeline struct {
	mu                  sync.Mutex
	cfg                 Config
	lastResponseID      string
	isGeneratingSummary bool
	autoCompactEnabled  bool
	enableChaining      bool

	httpClient     *http.Client
	tracer         Tracer
	logger         *slog.Logger
	translator     *Translator
	monitor        *ContextMonitor
	garbled        *GarbledDetector
	retryCfg       RetryConfig
	onRetryAttempt OnRetryAttempt
	pollInterval   time.Duration
}

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

func WithHTTPClient(c *http.Client) Option { return func(p *Pipeline) { p.httpClient = c } }
func WithTracer(t Tracer) Option           { return func(p *Pipeline) { p.tracer = t } }
func WithLogger(l *slog.Logger) Option     { return func(p *Pipeline) { p.logger = l } }
func WithRetryConfig(rc RetryConfig) Option { return func(p *Pipeline) { p.retryCfg = rc } }
func WithOnRetryAttempt(cb OnRetryAttempt) Option {
	return func(p *Pipeline) { p.onRetryAttempt = cb }
}
func WithGarbledPatterns(patterns []string) Option {
	return func(p *Pipeline) { p.garbled = NewGarbledDetector(patterns) }
}

// WithPollInterval overrides the poll-loop wait (default 2s); intended for tests.
func WithPollInterval(d time.Duration) Option { return func(p *Pipeline) { p.pollInterval = d } }

// NewPipeline constructs a Pipeline. The API key is not validated here;
// a missing API key is detected lazily on first use.
func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	cfg = cfg.withDefaults()
	p := &Pipeline{
		cfg:            cfg,
		autoCompactEnabled: cfg.AutoCompactEnabled,
		enableChaining: cfg.EnableStatefulChaining,
		httpClient:     http.DefaultClient,
		logger:         slog.Default(),
		retryCfg:       defaultRetryConfig(),
		pollInterval:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.translator = NewTranslator(p.logger)
	p.monitor = NewContextMonitor(profileFor(p.cfg.Model).ContextWindow)
	if p.garbled == nil {
		p.garbled = NewGarbledDetector(nil)
	}
	return p
}

// --- Host-facing API ---

// GetModel returns the configured model id and its profile info, falling
// back to the default profile for unknown ids.
func (p *Pipeline) GetModel() (string, ModelInfo) {
	p.mu.Lock()
	model := p.cfg.Model
	p.mu.Unlock()
	return model, profileFor(model).ToModelInfo()
}

// SetModel switches the active model and updates the context monitor's
// window accordingly.
func (p *Pipeline) SetModel(model string) {
	p.mu.Lock()
	p.cfg.Model = model
	p.mu.Unlock()
	p.monitor.SetContextWindow(profileFor(model).ContextWindow)
}

// ResetStatefulChaining clears the previous-response id.
func (p *Pipeline) ResetStatefulChaining() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastResponseID = ""
}

// SetAutoCompact toggles autocompaction.
func (p *Pipeline) SetAutoCompact(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoCompactEnabled = enabled
}

// GetContextStats runs the Context Monitor over messages.
func (p *Pipeline) GetContextStats(messages []Message) ContextStats {
	return p.monitor.Stats(messages)
}

// ManualCompact runs the Compressor over messages outside of the
// createMessage flow, returning the compressed sequence. Callers are
// responsible for discarding any cached conversation state derived from
// the original sequence.
func (p *Pipeline) ManualCompact(ctx context.Context, messages []Message) ([]Message, error) {
	p.forceBeginCompression()
	defer p.endCompression()

	result, err := p.compress(ctx, messages)
	if err != nil {
		return nil, err
	}
	p.ResetStatefulChaining()
	return result.Messages, nil
}

// CreateMessage is the host-facing entrypoint: it runs the full pipeline
// (wrapped in the retry envelope), then materializes the resulting event
// sequence. The sequence is built eagerly — there is no token-by-token
// streaming — and returned as a finite slice for the caller to range over.
func (p *Pipeline) CreateMessage(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens *int, temperature *float64) ([]StreamEvent, error) {
	if p.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	resp, err := withRetry(ctx, p.retryCfg, p.logger, p.onRetryAttempt, func() (ProviderResponse, error) {
		return p.createMessageOnce(ctx, system, messages, tools, maxTokens, temperature)
	})
	if err != nil {
		return nil, err
	}

	events := make([]StreamEvent, 0, len(resp.Content)+1)
	for _, b := range resp.Content {
		if b.Type != BlockText {
			continue
		}
		text := b.Text
		if pattern, matched := p.garbled.Check(text); matched {
			p.logger.Warn("garbled output detected, resetting chain", "pattern", pattern)
			p.ResetStatefulChaining()
			return nil, &ErrGarbledOutput{Pattern: pattern}
		}
		events = append(events, StreamEvent{Type: EventText, Text: text})
	}
	if resp.Usage != nil {
		events = append(events, StreamEvent{
			Type:             EventUsage,
			InputTokens:      resp.Usage.InputTokens,
			OutputTokens:     resp.Usage.OutputTokens,
			CacheReadTokens:  resp.Usage.CacheReadTokens,
			CacheWriteTokens: resp.Usage.CacheWriteTokens,
		})
	}
	return events, nil
}

// createMessageOnce runs a single request/poll attempt end to end (no
// retry — that is layered on by CreateMessage).
func (p *Pipeline) createMessageOnce(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens *int, temperature *float64) (ProviderResponse, error) {
	var span Span
	if p.tracer != nil {
		ctx, span = p.tracer.Start(ctx, "pipeline.createMessage")
		defer span.End()
	}

	// Step 1: context check.
	stats := p.monitor.Stats(messages)
	p.logger.Info("context check", "zone", stats.Zone, "percentage", stats.Percentage, "remaining", stats.Remaining)
	if span != nil {
		span.SetAttr(StringAttr("context.zone", string(stats.Zone)), Float64Attr("context.percentage", stats.Percentage))
	}

	// Step 2: compression branch. guardAlreadySet means this call is itself
	// the Compressor's reentrant invocation of the pipeline (summary
	// generation runs with tools disabled, through this same method) — it
	// must not trigger compression again, and it is not the call
	// responsible for clearing the guard.
	shouldCompress, guardAlreadySet := p.beginCompressionIfNeeded(stats)
	if shouldCompress && !guardAlreadySet {
		defer p.endCompression()
		result, err := p.compress(ctx, messages)
		if err != nil {
			if span != nil {
				span.Error(err)
			}
			return ProviderResponse{}, err
		}
		messages = result.Messages
		p.ResetStatefulChaining()
		p.logger.Info("compressed conversation", "messagesBefore", result.Stats.MessagesBefore,
			"messagesAfter", result.Stats.MessagesAfter, "tokensSaved", result.Stats.TokensSaved)
	}

	// Step 3: translate outbound.
	input := p.translator.TranslateOutbound(messages)

	// Step 4: build request.
	profile := profileFor(p.cfg.Model)
	effectiveMaxTokens := profile.MaxOutputTokens
	if maxTokens != nil {
		effectiveMaxTokens = *maxTokens
	}
	temp := p.cfg.Temperature
	if temperature != nil {
		temp = *temperature
	}
	req := WireRequest{
		Model:           p.cfg.Model,
		Input:           input,
		Instructions:    system,
		MaxOutputTokens: effectiveMaxTokens,
		Temperature:     &temp,
		Stream:          false,
	}
	chainID := p.currentChainID()
	if p.isChainingEnabled() && chainID != "" {
		req.PreviousResponseID = chainID
	}
	if profile.IsReasoning {
		req.Reasoning = &WireReasoning{Effort: reasoningEffort}
	}
	if len(tools) > 0 {
		req.Tools = buildWireTools(tools)
	}

	// Step 5+6: POST and HTTP-error handling.
	wireResp, err := p.post(ctx, req)
	if err != nil {
		if isContextOverflow(err) {
			p.ResetStatefulChaining()
			overflow := &ErrContextOverflow{Message: err.Error()}
			if span != nil {
				span.Error(overflow)
			}
			return ProviderResponse{}, overflow
		}
		if span != nil {
			span.Error(err)
		}
		return ProviderResponse{}, err
	}

	// Step 7: record chaining.
	if wireResp.ID != "" && p.isChainingEnabled() {
		p.setChainID(wireResp.ID)
	}
	chainWasLive := chainID != ""

	// Step 8: poll loop.
	for wireResp.Status == StatusQueued || wireResp.Status == StatusInProgress {
		if err := sleepCtx(ctx, p.pollInterval); err != nil {
			return ProviderResponse{}, err
		}
		wireResp, err = p.poll(ctx, wireResp.ID)
		if err != nil {
			if span != nil {
				span.Error(err)
			}
			return ProviderResponse{}, err
		}
	}

	// Step 9: terminal status check.
	if wireResp.Status == StatusFailed || wireResp.Status == StatusCancelled {
		msg := "response was cancelled"
		if wireResp.Error != nil {
			msg = wireResp.Error.Message
		} else if wireResp.Status == StatusFailed {
			msg = "response failed with no error detail"
		}
		err := &ErrTerminalStatus{Status: wireResp.Status, Message: msg}
		if span != nil {
			span.Error(err)
		}
		return ProviderResponse{}, err
	}

	// Step 10: structural validation.
	if len(wireResp.Output) == 0 {
		p.ResetStatefulChaining()
		err := &ErrProtocolViolation{Message: "response.output was empty", ChainWasLive: chainWasLive}
		if span != nil {
			span.Error(err)
		}
		return ProviderResponse{}, err
	}

	// Step 11: translate inbound.
	providerResp := p.translator.TranslateInbound(wireResp.Output, wireResp.Usage)

	// Step 12: emptiness check.
	if isEmptyContent(providerResp.Content) {
		p.ResetStatefulChaining()
		err := &ErrEmptyOutput{ChainWasLive: chainWasLive}
		if span != nil {
			span.Error(err)
		}
		return ProviderResponse{}, err
	}

	// Step 13: return.
	if span != nil {
		span.SetAttr(StringAttr("response.stopReason", string(providerResp.StopReason)))
	}
	return providerResp, nil
}

func isEmptyContent(blocks []Block) bool {
	if len(blocks) == 0 {
		return true
	}
	if len(blocks) == 1 && blocks[0].Type == BlockText && blocks[0].Text == "" {
		return true
	}
	return false
}

func buildWireTools(tools []ToolDefinition) []WireTool {
	out := make([]WireTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, WireTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return out
}

// --- guarded state accessors ---

func (p *Pipeline) isChainingEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enableChaining
}

func (p *Pipeline) currentChainID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastResponseID
}

func (p *Pipeline) setChainID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastResponseID = id
}

// beginCompressionIfNeeded checks whether compression should run (autocompact
// enabled, zone critical, guard not already set) and, if so, sets the guard
// and returns (true, false). If the guard is already set (recursive
// invocation from within compression itself), returns (true, true) so the
// caller skips compressing again and leaves the guard alone — the call that
// set the guard owns the clear.
func (p *Pipeline) beginCompressionIfNeeded(stats ContextStats) (shouldCompress bool, guardAlreadySet bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.autoCompactEnabled || !stats.ShouldCompress {
		return false, false
	}
	if p.isGeneratingSummary {
		return true, true
	}
	p.isGeneratingSummary = true
	return true, false
}

func (p *Pipeline) endCompression() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isGeneratingSummary = false
}

// forceBeginCompression sets the summary-generation guard unconditionally,
// used by ManualCompact which bypasses the zone/autocompact gating in
// beginCompressionIfNeeded.
func (p *Pipeline) forceBeginCompression() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isGeneratingSummary = true
}

// --- HTTP transport ---

func (p *Pipeline) post(ctx context.Context, req WireRequest) (WireResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return WireResponse{}, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return WireResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return p.do(httpReq)
}

func (p *Pipeline) poll(ctx context.Context, id string) (WireResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/responses/"+id, nil)
	if err != nil {
		return WireResponse{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	return p.do(httpReq)
}

func (p *Pipeline) do(httpReq *http.Request) (WireResponse, error) {
	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return WireResponse{}, fmt.Errorf("fetch failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return WireResponse{}, fmt.Errorf("read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return WireResponse{}, p.httpErr(httpResp, data)
	}

	var wireResp WireResponse
	if err := json.Unmarshal(data, &wireResp); err != nil {
		return WireResponse{}, fmt.Errorf("decode response body: %w", err)
	}
	return wireResp, nil
}

// httpErr builds an ErrHTTP from a non-2xx response, parsing the body as
// JSON when possible to extract error.code/error.message, and parsing the
// retry-after / x-ratelimit-reset / ratelimit-reset headers in that order.
func (p *Pipeline) httpErr(resp *http.Response, body []byte) error {
	var parsed struct {
		Error *WireError `json:"error"`
	}
	_ = json.Unmarshal(body, &parsed)

	herr := &ErrHTTP{Status: resp.StatusCode, Body: string(body)}
	if parsed.Error != nil {
		herr.Code = parsed.Error.Code
		herr.Body = parsed.Error.Message + " (raw: " + string(body) + ")"
	}

	nowMS := time.Now().UnixMilli()
	for _, header := range []string{"retry-after", "x-ratelimit-reset", "ratelimit-reset"} {
		if v := resp.Header.Get(header); v != "" {
			if d := ParseRetryDelayHeader(v, nowMS); d > 0 {
				herr.RetryAfter = int(d.Milliseconds())
				break
			}
		}
	}
	return herr
}

func isContextOverflow(err error) bool {
	var he *ErrHTTP
	if errors.As(err, &he) {
		return he.Code == "context_length_exceeded"
	}
	return false
}

// sleepCtx sleeps for d or returns ctx.Err() if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
