package adapter

// defaultProfile is the conservative fallback for any model identifier not
// present in modelProfiles: 128k context, 16k output, non-reasoning,
// no images.
var defaultProfile = ModelProfile{
	ContextWindow:   128_000,
	MaxOutputTokens: 16_000,
	IsReasoning:     false,
	SupportsImages:  false,
	InputPrice:      0,
	OutputPrice:     0,
	Description:     "Unknown model (conservative default profile)",
}

// modelProfiles is the adapter's constant, enumerated table of recognized
// reasoning and non-reasoning models. Reasoning models opt into the
// reasoning-effort hint; non-reasoning models do not.
var modelProfiles = map[string]ModelProfile{
	"gpt-5-codex": {
		ContextWindow:   272_000,
		MaxOutputTokens: 128_000,
		IsReasoning:     true,
		SupportsImages:  true,
		InputPrice:      1.25,
		OutputPrice:     10.00,
		Description:     "GPT-5 Codex — reasoning-class coding model",
	},
	"gpt-5-codex-mini": {
		ContextWindow:   272_000,
		MaxOutputTokens: 64_000,
		IsReasoning:     true,
		SupportsImages:  true,
		InputPrice:      0.25,
		OutputPrice:     2.00,
		Description:     "GPT-5 Codex Mini — smaller reasoning-class coding model",
	},
	"gpt-5": {
		ContextWindow:   272_000,
		MaxOutputTokens: 128_000,
		IsReasoning:     true,
		SupportsImages:  true,
		InputPrice:      1.25,
		OutputPrice:     10.00,
		Description:     "GPT-5 — general-purpose reasoning model",
	},
	"gpt-4.1": {
		ContextWindow:   1_047_576,
		MaxOutputTokens: 32_768,
		IsReasoning:     false,
		SupportsImages:  true,
		InputPrice:      2.00,
		OutputPrice:     8.00,
		Description:     "GPT-4.1 — non-reasoning long-context model",
	},
	"gpt-4.1-mini": {
		ContextWindow:   1_047_576,
		MaxOutputTokens: 32_768,
		IsReasoning:     false,
		SupportsImages:  true,
		InputPrice:      0.40,
		OutputPrice:     1.60,
		Description:     "GPT-4.1 Mini — non-reasoning long-context model",
	},
	"o3": {
		ContextWindow:   200_000,
		MaxOutputTokens: 100_000,
		IsReasoning:     true,
		SupportsImages:  true,
		InputPrice:      2.00,
		OutputPrice:     8.00,
		Description:     "o3 — reasoning-class model",
	},
	"o4-mini": {
		ContextWindow:   200_000,
		MaxOutputTokens: 100_000,
		IsReasoning:     true,
		SupportsImages:  true,
		InputPrice:      1.10,
		OutputPrice:     4.40,
		Description:     "o4-mini — smaller reasoning-class model",
	},
}

// profileFor returns the configured profile for model, falling back to
// defaultProfile when model is unrecognized.
func profileFor(model string) ModelProfile {
	if p, ok := modelProfiles[model]; ok {
		return p
	}
	return defaultProfile
}

// ToModelInfo converts a ModelProfile to the host-facing getModel() shape.
// supportsPromptCache is always false
func (p ModelProfile) ToModelInfo() ModelInfo {
	return ModelInfo{
		MaxTokens:           p.MaxOutputTokens,
		ContextWindow:       p.ContextWindow,
		SupportsPromptCache: false,
		SupportsImages:      p.SupportsImages,
		InputPrice:          p.InputPrice,
		OutputPrice:         p.OutputPrice,
		Description:         p.Description,
	}
}

// reasoningEffort is the fixed effort hint attached to requests for
// reasoning-class models.
const reasoningEffort = "high"
