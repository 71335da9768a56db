package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// summaryInstruction is the fixed instruction appended to the conversation
// before the re-entrant call that generates a compression summary. The
// model is asked for a structured, section-delimited summary so the splice
// back into the message sequence is predictable. The nine sections are part
// of the contract: a downstream agent resuming from this summary is trained
// against this exact shape, so the section list is not negotiable per call.
const summaryInstruction = `Your task is to create a detailed summary of the conversation so far, ` +
	`paying close attention to the user's explicit requests and your previous actions.
This summary should be thorough in capturing technical details, code patterns, and architectural
decisions that would be essential for continuing development work without losing context.

Structure your summary using the following sections:

1. Primary Request and Intent
2. Key Technical Concepts
3. Files and Code Sections
4. Errors and fixes
5. Problem Solving
6. All user messages
7. Pending Tasks
8. Current Work
9. Suggested Next Step

For section 4, list every error encountered and how it was fixed. For section 6, list ALL
non-tool-result user messages verbatim, in order; these capture explicit feedback and must not
be summarized. For section 9, propose the single next action, grounded directly in the most
recent work, and quote the user's own words for anything that constrains or redirects it.

Output only the summary, with no preamble.`

// defaultPreserveFirst and defaultPreserveLast control the splice shape: the
// opening message anchors the task, the trailing messages keep the
// immediate thread of conversation intact.
const (
	defaultPreserveFirst = true
	defaultPreserveLast  = 3
)

// compress implements the C3 Compressor. It re-enters the pipeline with
// tools disabled to obtain a structured summary, then splices the
// conversation down to [first?] + [summary as a user turn] + [last N].
//
// Summary-generation failure is propagated, not swallowed: a half-compressed
// conversation is worse than a createMessage call that fails loudly and
// leaves the caller free to retry or fall back to a larger model.
func (p *Pipeline) compress(ctx context.Context, messages []Message) (CompressionResult, error) {
	before := CountTotalTokens(messages)

	instructed := append(append([]Message{}, messages...), UserMessage(summaryInstruction))
	resp, err := p.createMessageOnce(ctx, "", instructed, nil, nil, nil)
	if err != nil {
		return CompressionResult{}, &ErrCompressionFailed{Cause: err}
	}

	summaryText := extractSummaryText(resp.Content)
	if strings.TrimSpace(summaryText) == "" {
		return CompressionResult{}, &ErrCompressionFailed{Cause: errors.New("summary generation produced no text")}
	}

	// Splice once with the bare summary to measure the shape the final
	// message set will take, so the notice can report accurate before/after
	// counts. The counts it reports are a few tokens shy of truly final,
	// since the notice's own text isn't counted in the measurement it
	// describes — a report can't include its own size without chasing its
	// tail.
	prelim := spliceCompressed(messages, summaryText, defaultPreserveFirst, defaultPreserveLast)
	messagesAfter := len(prelim)
	tokensAfter := CountTotalTokens(prelim)

	stats := CompressionStats{
		ID:             NewID(),
		MessagesBefore: len(messages),
		MessagesAfter:  messagesAfter,
		TokensBefore:   before,
		TokensAfter:    tokensAfter,
		TokensSaved:    before - tokensAfter,
		Timestamp:      NowUnix(),
	}

	notice := compressionNotice(summaryText, stats)
	compressed := spliceCompressed(messages, notice, defaultPreserveFirst, defaultPreserveLast)

	return CompressionResult{Summary: summaryText, Messages: compressed, Stats: stats}, nil
}

// compressionNotice builds the synthetic user turn that replaces the
// compressed prefix: the before/after message and token counts so the
// agent can see what was dropped, followed by a directive to continue
// without re-confirming anything the summary already covers.
func compressionNotice(summary string, stats CompressionStats) string {
	return fmt.Sprintf(
		"[Context compressed: %d messages (%d tokens) -> %d messages (%d tokens), saving %d tokens.\n"+
			"Continue the conversation from where it left off using the summary below. Do not ask the "+
			"user to re-confirm or re-explain anything already captured here; proceed directly with the "+
			"pending work.]\n\n%s",
		stats.MessagesBefore, stats.TokensBefore, stats.MessagesAfter, stats.TokensAfter, stats.TokensSaved, summary)
}

func extractSummaryText(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		if b.Type == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// spliceCompressed builds the post-compression message sequence: the
// original first message (when preserveFirst and present), a synthetic user
// message carrying the given notice text, and the trailing preserveLast
// messages. The tail window never re-includes the first message already
// preserved.
func spliceCompressed(messages []Message, notice string, preserveFirst bool, preserveLast int) []Message {
	var out []Message
	if preserveFirst && len(messages) > 0 {
		out = append(out, messages[0])
	}
	out = append(out, UserMessage(notice))

	tailFloor := 0
	if preserveFirst && len(messages) > 0 {
		tailFloor = 1
	}
	start := len(messages) - preserveLast
	if start < tailFloor {
		start = tailFloor
	}
	out = append(out, messages[start:]...)
	return out
}
