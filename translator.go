package adapter

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// knownToolNames is the fixed registry of host-defined tool names the
// translator scans for when classifying an inbound message as tool_use.
var knownToolNames = []string{
	"execute_command",
	"read_file",
	"write_to_file",
	"replace_in_file",
	"search_files",
	"list_files",
	"list_code_definition_names",
	"browser_action",
	"use_mcp_tool",
	"access_mcp_resource",
	"ask_followup_question",
	"plan_mode_respond",
	"load_mcp_documentation",
	"attempt_completion",
	"new_task",
	"condense",
	"summarize_task",
	"report_bug",
	"new_rule",
	"web_fetch",
}

// Translator implements the bidirectional C4 mapping between host-side
// content blocks and the remote API's wire input/output items.
//
// Outbound translation is deliberately lossy on structure but lossless on
// content: every host block flattens into inline text within a single
// MessageItem per message, avoiding the unpaired call-ids that a structured
// function_call/function_call_output mapping would require.
type Translator struct {
	logger *slog.Logger
}

// NewTranslator constructs a Translator. A nil logger falls back to
// slog.Default().
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger}
}

// TranslateOutbound converts a host message sequence into wire input items.
// Messages whose trimmed text is empty after block flattening are skipped.
func (t *Translator) TranslateOutbound(messages []Message) []WireInputItem {
	items := make([]WireInputItem, 0, len(messages))
	for _, m := range messages {
		text := t.flattenBlocks(m.ContentBlocks())
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		role := string(m.Role)
		if m.Role != RoleUser && m.Role != RoleAssistant {
			// The wire MessageItem only carries user|assistant roles; a
			// preserved system anchor (e.g. from compression) rides along
			// as a user turn so the model still sees its content.
			role = string(RoleUser)
		}
		items = append(items, WireInputItem{
			Type:    WireMessageItem,
			Role:    role,
			Content: text,
		})
	}
	return items
}

// flattenBlocks concatenates the text representation of each block in
// sequence, per-block-kind rules.
func (t *Translator) flattenBlocks(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Type {
		case BlockText:
			sb.WriteString(b.Text)
		case BlockImage:
			sb.WriteString("[Image provided by user]")
		case BlockToolInvocation:
			sb.WriteString(toolInvocationXML(b))
		case BlockToolResult:
			sb.WriteString("\n[Tool Result]\n")
			sb.WriteString(toolResultBody(b))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// toolInvocationXML renders a ToolInvocation block as an XML-ish fragment:
// <name>\n<key>value</key>\n...</name>. String values are inlined as-is;
// non-string values are JSON-encoded; nil values become empty strings.
func toolInvocationXML(b Block) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(b.Name)
	sb.WriteString(">\n")
	for k, v := range b.Input {
		sb.WriteString("<")
		sb.WriteString(k)
		sb.WriteString(">")
		sb.WriteString(xmlValue(v))
		sb.WriteString("</")
		sb.WriteString(k)
		sb.WriteString(">\n")
	}
	sb.WriteString("</")
	sb.WriteString(b.Name)
	sb.WriteString(">")
	return sb.String()
}

func xmlValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// toolResultBody returns a ToolResult block's body: its string content
// verbatim, or its structured content JSON-encoded when the result came
// back as nested blocks instead of plain text.
func toolResultBody(b Block) string {
	if len(b.ResultBlocks) > 0 {
		data, err := json.Marshal(b.ResultBlocks)
		if err != nil {
			return b.Content
		}
		return string(data)
	}
	return b.Content
}

// TranslateInbound converts the remote API's output items into a
// normalized ProviderResponse.
func (t *Translator) TranslateInbound(output []OutputItem, usage *WireUsage) ProviderResponse {
	var blocks []Block
	stopReason := StopStop

	for _, item := range output {
		switch item.Type {
		case "message":
			text := concatOutputText(item.Content)
			blocks = append(blocks, TextBlock(text))
			if containsKnownToolTag(text) {
				stopReason = StopToolUse
			}
		case "function_call":
			// Unexpected — the outbound side never emits
			// structured calls, so a server that replies with one is
			// surprising. Convert back to the XML form and log a warning.
			t.logger.Warn("received unexpected function_call output item", "name", item.Name, "call_id", item.CallID)
			xml := toolInvocationXML(Block{
				Name:  item.Name,
				Input: decodeArguments(item.Arguments),
			})
			blocks = append(blocks, TextBlock(xml))
			stopReason = StopToolUse
		}
	}

	resp := ProviderResponse{Content: blocks, StopReason: stopReason}
	if usage != nil {
		resp.Usage = &Usage{
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
		}
	}
	return resp
}

// concatOutputText concatenates the text of every output_text fragment in
// order. Empty strings are preserved, not elided.
func concatOutputText(fragments []OutputContentFragment) string {
	var sb strings.Builder
	for _, f := range fragments {
		if f.Type == "output_text" {
			sb.WriteString(f.Text)
		}
	}
	return sb.String()
}

// containsKnownToolTag reports whether text contains an opening tag for any
// tool name in the fixed registry.
func containsKnownToolTag(text string) bool {
	for _, name := range knownToolNames {
		if strings.Contains(text, "<"+name+">") || strings.Contains(text, "<"+name+" ") {
			return true
		}
	}
	return false
}

// decodeArguments best-effort decodes a function_call's JSON-string
// arguments into a map for XML re-rendering; a decode failure yields an
// empty map rather than an error, since this is a defensive fallback path.
func decodeArguments(raw string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return map[string]any{}
	}
	return m
}
