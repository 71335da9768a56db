// Package adapter bridges a prompt-based, XML-encoded tool-calling host to a
// stateful, asynchronously-polled Responses-style HTTP API.
package adapter

import "encoding/json"

// --- Host-side content blocks ---

// BlockType discriminates the host-side content block union.
type BlockType string

const (
	BlockText           BlockType = "text"
	BlockImage          BlockType = "image"
	BlockToolInvocation BlockType = "tool_invocation"
	BlockToolResult     BlockType = "tool_result"
)

// Block is a tagged union over the four host-side content block kinds.
// Exactly one of the kind-specific fields is populated, selected by Type.
type Block struct {
	Type BlockType `json:"type"`

	// Text
	Text string `json:"text,omitempty"`

	// Image
	MediaType string `json:"mediaType,omitempty"`
	Data      string `json:"data,omitempty"` // base64, when Source == "base64"
	URL       string `json:"url,omitempty"`  // when Source == "url"
	Source    string `json:"source,omitempty"`

	// ToolInvocation — an intent to invoke a named tool with structured args.
	InvocationID string         `json:"id,omitempty"`
	Name         string         `json:"name,omitempty"`
	Input        map[string]any `json:"input,omitempty"`

	// ToolResult — the host-executed result of a prior invocation. Content is
	// a tagged string|blocks union: exactly one of Content and ResultBlocks is
	// populated, a plain-text result taking the Content branch and a
	// structured result (e.g. a file read that returned text and an image)
	// taking ResultBlocks.
	ResultForID  string  `json:"invocationId,omitempty"`
	Content      string  `json:"content,omitempty"`
	ResultBlocks []Block `json:"resultBlocks,omitempty"`
	IsError      bool    `json:"isError,omitempty"`
}

func TextBlock(text string) Block { return Block{Type: BlockText, Text: text} }

// --- Conversation messages ---

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of the conversation. Content may be a plain string
// (Text non-empty, Blocks empty) or a sequence of blocks.
type Message struct {
	Role    Role    `json:"role"`
	Text    string  `json:"text,omitempty"`
	Blocks  []Block `json:"blocks,omitempty"`
}

// ContentBlocks normalizes a Message's content into a block slice, whether
// it was constructed from a plain string or an explicit block list.
func (m Message) ContentBlocks() []Block {
	if len(m.Blocks) > 0 {
		return m.Blocks
	}
	if m.Text == "" {
		return nil
	}
	return []Block{TextBlock(m.Text)}
}

func UserMessage(text string) Message      { return Message{Role: RoleUser, Text: text} }
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Text: text} }
func SystemMessage(text string) Message    { return Message{Role: RoleSystem, Text: text} }

// --- Wire input items (host -> remote) ---

type WireItemType string

const (
	WireMessageItem   WireItemType = "message"
	WireFunctionCall  WireItemType = "function_call"
	WireFunctionOut   WireItemType = "function_call_output"
)

// WireInputItem is a tagged union over the three input item kinds the
// remote API accepts. This adapter only ever emits WireMessageItem items
// (see translator.go); the other two are modeled so the shape is pluggable
// for a host that produces real structured call ids.
type WireInputItem struct {
	Type WireItemType `json:"type"`

	// MessageItem
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// FunctionCall
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// FunctionCallOutput
	Output string `json:"output,omitempty"`
}

// --- Wire response (remote -> host) ---

type ResponseStatus string

const (
	StatusQueued     ResponseStatus = "queued"
	StatusInProgress ResponseStatus = "in_progress"
	StatusCompleted  ResponseStatus = "completed"
	StatusFailed     ResponseStatus = "failed"
	StatusCancelled  ResponseStatus = "cancelled"
)

// WireUsage mirrors the remote API's usage object.
type WireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// WireError mirrors the remote API's error object.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputContentFragment is one typed fragment of an output "message" item's
// content array, e.g. {type: output_text, text: "..."}.
type OutputContentFragment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// OutputItem is one element of WireResponse.Output: either a "message" item
// (assistant text, possibly split across output_text fragments) or an
// unexpected "function_call" item.
type OutputItem struct {
	Type    string                  `json:"type"` // "message" | "function_call"
	Role    string                  `json:"role,omitempty"`
	Content []OutputContentFragment `json:"content,omitempty"`

	// function_call fields, present only when Type == "function_call"
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// WireResponse is the full JSON body of the remote /responses resource,
// returned by both POST (initial) and GET (poll) calls.
type WireResponse struct {
	ID        string         `json:"id"`
	Object    string         `json:"object"`
	Created   int64          `json:"created"`
	Model     string         `json:"model"`
	Status    ResponseStatus `json:"status"`
	Output    []OutputItem   `json:"output"`
	Usage     *WireUsage     `json:"usage,omitempty"`
	Error     *WireError     `json:"error,omitempty"`
}

// WireReasoning carries the reasoning-effort hint for reasoning-class models.
type WireReasoning struct {
	Effort string `json:"effort"`
}

// WireTool is the flattened tool definition shape the remote API expects
// when tools are supplied (the host defaults to omitting tools — see
// translator.go's outbound rationale).
type WireTool struct {
	Type        string          `json:"type"` // "function"
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// WireRequest is the JSON body POSTed to <baseURL>/responses.
type WireRequest struct {
	Model              string          `json:"model"`
	Input              []WireInputItem `json:"input"`
	Instructions       string          `json:"instructions,omitempty"`
	MaxOutputTokens    int             `json:"max_output_tokens,omitempty"`
	Tools              []WireTool      `json:"tools,omitempty"`
	PreviousResponseID string          `json:"previous_response_id,omitempty"`
	Reasoning          *WireReasoning  `json:"reasoning,omitempty"`
	Temperature        *float64        `json:"temperature,omitempty"`
	Stream             bool            `json:"stream"`
}

// ToolDefinition describes a tool the host may ask the model to use. Only
// used to build WireTool entries when the caller explicitly opts in.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// --- Normalized response (remote -> host, post-translation) ---

type StopReason string

const (
	StopStop      StopReason = "stop"
	StopToolUse   StopReason = "tool_use"
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
)

// Usage is the host-facing token accounting for one createMessage call.
type Usage struct {
	InputTokens      int `json:"inputTokens"`
	OutputTokens     int `json:"outputTokens"`
	CacheReadTokens  int `json:"cacheReadTokens"`
	CacheWriteTokens int `json:"cacheWriteTokens"`
}

// ProviderResponse is the host-facing, translated result of one createMessage call.
type ProviderResponse struct {
	Content    []Block    `json:"content"`
	StopReason StopReason `json:"stopReason"`
	Usage      *Usage     `json:"usage,omitempty"`
}

// --- Host-facing streamed output ---

type StreamEventType string

const (
	EventText  StreamEventType = "text"
	EventUsage StreamEventType = "usage"
)

// StreamEvent is one element of the event slice CreateMessage returns: a
// run of EventText entries followed by a single, optional EventUsage entry.
type StreamEvent struct {
	Type             StreamEventType `json:"type"`
	Text             string          `json:"text,omitempty"`
	InputTokens      int             `json:"inputTokens,omitempty"`
	OutputTokens     int             `json:"outputTokens,omitempty"`
	CacheReadTokens  int             `json:"cacheReadTokens,omitempty"`
	CacheWriteTokens int             `json:"cacheWriteTokens,omitempty"`
}

// --- Model profile ---

// ModelProfile describes a model's capabilities and cost, used both for
// context-window math and for the getModel() host-facing API.
type ModelProfile struct {
	ContextWindow   int
	MaxOutputTokens int
	IsReasoning     bool
	SupportsImages  bool
	InputPrice      float64
	OutputPrice     float64
	Description     string
}

// ModelInfo is the host-facing shape returned by GetModel.
type ModelInfo struct {
	MaxTokens           int     `json:"maxTokens"`
	ContextWindow       int     `json:"contextWindow"`
	SupportsPromptCache bool    `json:"supportsPromptCache"`
	SupportsImages      bool    `json:"supportsImages"`
	InputPrice          float64 `json:"inputPrice"`
	OutputPrice         float64 `json:"outputPrice"`
	Description         string  `json:"description"`
}

// --- Compression stats ---

// CompressionStats summarizes one compression event's effect on the
// conversation, for logging and for the notice block shown to the model.
type CompressionStats struct {
	ID             string `json:"id"`
	MessagesBefore int    `json:"messagesBefore"`
	MessagesAfter  int    `json:"messagesAfter"`
	TokensBefore   int    `json:"tokensBefore"`
	TokensAfter    int    `json:"tokensAfter"`
	TokensSaved    int    `json:"tokensSaved"`
	Timestamp      int64  `json:"timestamp"`
}

// CompressionResult is the C3 Compressor's output.
type CompressionResult struct {
	Summary  string
	Messages []Message
	Stats    CompressionStats
}

// --- Context monitor stats ---

type Zone string

const (
	ZoneSafe     Zone = "safe"
	ZoneWarning  Zone = "warning"
	ZoneCritical Zone = "critical"
)

// ContextStats is the C2 Context Monitor's output for one message set.
type ContextStats struct {
	Tokens         int     `json:"tokens"`
	Limit          int     `json:"limit"`
	Percentage     float64 `json:"percentage"`
	Remaining      int     `json:"remaining"`
	Zone           Zone    `json:"zone"`
	ShouldCompress bool    `json:"shouldCompress"`
}
