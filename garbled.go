package adapter

import "strings"

// defaultGarbledPatterns is a small, externalized set of substrings that
// tend to show up when a model has lost the thread — repeated boilerplate,
// truncated tags, or the kind of stuck loop an XML-tool-calling model falls
// into under confusion. The pattern set is a defensive layer, not a
// correctness layer; expect it to drift.
var defaultGarbledPatterns = []string{
	"<tool_name>",
	"[ERROR: ",
	"undefined undefined undefined",
}

// GarbledDetector scans translated text against a configured pattern list
// to flag likely model confusion.
type GarbledDetector struct {
	patterns []string
}

// NewGarbledDetector constructs a detector. A nil/empty patterns slice
// falls back to defaultGarbledPatterns.
func NewGarbledDetector(patterns []string) *GarbledDetector {
	if len(patterns) == 0 {
		patterns = defaultGarbledPatterns
	}
	return &GarbledDetector{patterns: patterns}
}

// Check scans text for a configured pattern and returns the first match, or
// ("", false) when no pattern matches.
func (g *GarbledDetector) Check(text string) (string, bool) {
	for _, p := range g.patterns {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}
