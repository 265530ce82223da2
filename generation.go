package dialoguesdk

import "context"

// ──────────────────────────────────────────────
// Generation Boundary — external text-generation call
// ──────────────────────────────────────────────

// GenerateFn is the opaque downstream text-generation call. The engine
// never invokes it; callers hand it the bundle's Text() plus sampling
// parameters. Retry on failure is the caller's concern — the engine only
// guarantees GenerateDirectives is re-invocable for the same transcript
// state.
type GenerateFn func(ctx context.Context, prompt string, params SamplingParams) (string, error)

// SamplingParams are configuration for the generation call, not engine
// logic.
type SamplingParams struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	MaxTokens        int     `json:"max_tokens"`
}

// samplingPresets tunes generation per personality: expressive tags run
// hotter, analytical ones cooler, and every preset carries penalties that
// back up the engine's anti-repetition constraints.
var samplingPresets = map[PersonalityTag]SamplingParams{
	TagDirect:        {Temperature: 0.7, TopP: 0.9, PresencePenalty: 0.4, FrequencyPenalty: 0.5, MaxTokens: 220},
	TagCollaborative: {Temperature: 0.8, TopP: 0.95, PresencePenalty: 0.3, FrequencyPenalty: 0.4, MaxTokens: 280},
	TagAnalytical:    {Temperature: 0.55, TopP: 0.9, PresencePenalty: 0.3, FrequencyPenalty: 0.4, MaxTokens: 300},
	TagCreative:      {Temperature: 0.95, TopP: 0.95, PresencePenalty: 0.5, FrequencyPenalty: 0.5, MaxTokens: 280},
	TagSupportive:    {Temperature: 0.8, TopP: 0.95, PresencePenalty: 0.3, FrequencyPenalty: 0.4, MaxTokens: 260},
	TagSkeptical:     {Temperature: 0.65, TopP: 0.9, PresencePenalty: 0.4, FrequencyPenalty: 0.5, MaxTokens: 240},
	TagBalanced:      {Temperature: 0.75, TopP: 0.95, PresencePenalty: 0.35, FrequencyPenalty: 0.45, MaxTokens: 260},
}

// SamplingFor returns the sampling preset for a personality tag string.
// Unrecognized tags get the balanced preset.
func SamplingFor(rawTag string) SamplingParams {
	tag, _ := ParsePersonalityTag(rawTag)
	return samplingPresets[tag]
}
