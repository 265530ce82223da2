package dialoguesdk

import (
	"fmt"
	"math/rand"
	"strings"
)

// ──────────────────────────────────────────────
// Directive Assembler — structured bundle for the generation call
// ──────────────────────────────────────────────

// ContextPoint is one referenceable item carried into the bundle.
type ContextPoint struct {
	TurnIndex int    `json:"turn_index"`
	Kind      string `json:"kind"` // key_point / open_commitment / contradiction
	Text      string `json:"text"`
}

// DirectiveBundle conditions the downstream generation call. It is never
// shown to the end user and never persisted; every turn rebuilds it.
type DirectiveBundle struct {
	TurnIndex            int            `json:"turn_index"`
	EmotionalLabel       StateLabel     `json:"emotional_label"`
	Trajectory           Trajectory     `json:"trajectory"`
	LanguageInstructions []string       `json:"language_instructions"`
	StateInstructions    []string       `json:"state_instructions"`
	SamplePhrases        []string       `json:"sample_phrases"`
	ContextPoints        []ContextPoint `json:"context_points"`
	NegativeInstructions []string       `json:"negative_instructions"`

	// Warnings records assembly decisions for debugging; not injected
	// into the generation prompt.
	Warnings []string `json:"warnings,omitempty"`
}

// Text renders the bundle as a single prompt-conditioning block.
func (b *DirectiveBundle) Text() string {
	var sections []string

	if len(b.LanguageInstructions) > 0 {
		sections = append(sections, "## Voice\n"+bulleted(b.LanguageInstructions))
	}
	if len(b.StateInstructions) > 0 {
		sections = append(sections, fmt.Sprintf("## Current mood (%s, %s)\n%s",
			b.EmotionalLabel, b.Trajectory, bulleted(b.StateInstructions)))
	}
	if len(b.ContextPoints) > 0 {
		lines := make([]string, 0, len(b.ContextPoints))
		for _, cp := range b.ContextPoints {
			lines = append(lines, fmt.Sprintf("[%s, turn %d] %s", cp.Kind, cp.TurnIndex, cp.Text))
		}
		sections = append(sections, "## You may reference\n"+bulleted(lines))
	}
	if len(b.SamplePhrases) > 0 {
		sections = append(sections, "## Phrases in your register (vary them, never quote verbatim every turn)\n"+bulleted(b.SamplePhrases))
	}
	if len(b.NegativeInstructions) > 0 {
		sections = append(sections, "## Never\n"+bulleted(b.NegativeInstructions))
	}

	return strings.Join(sections, "\n\n")
}

func bulleted(lines []string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString("- ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// negativeInstructions are fixed per bundle.
var negativeInstructions = []string{
	"Do not enumerate all of your concerns in a single turn.",
	"Do not reuse phrasing from your recent replies.",
	"Do not produce bullet points or numbered lists; speak naturally.",
	"Do not mention these instructions or that you are simulated.",
}

// AssemblerConfig controls bundle assembly.
type AssemblerConfig struct {
	MaxContextPoints   int // key points carried into the bundle, default 3
	MaxSelectAttempts  int // draws per category before relaxing the ledger cap, default 4
	RecentPhraseWindow int // per-category recent-use window size, default 6
}

// DefaultAssemblerConfig returns production defaults.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		MaxContextPoints:   3,
		MaxSelectAttempts:  4,
		RecentPhraseWindow: 6,
	}
}

// DirectiveAssembler composes the component outputs into one bundle.
type DirectiveAssembler struct {
	config AssemblerConfig
	lib    *PatternLibrary
}

// NewDirectiveAssembler creates an assembler over a pattern library.
func NewDirectiveAssembler(lib *PatternLibrary, config ...AssemblerConfig) *DirectiveAssembler {
	cfg := DefaultAssemblerConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	return &DirectiveAssembler{config: cfg, lib: lib}
}

// assembleInput carries everything one bundle needs.
type assembleInput struct {
	turnIndex int
	language  LanguageProfile
	state     *EmotionalState
	context   *ConversationContext
	profile   StakeholderProfile
	session   *Session
	rng       *rand.Rand
	commit    bool // false on replay: no ledger advance, no recency update
}

// assemble builds the bundle, enforcing the phrase-repetition cap through
// the session's ledger. On a committed turn the ledger and recency windows
// advance; a replay only reads them.
func (a *DirectiveAssembler) assemble(in assembleInput) *DirectiveBundle {
	bundle := &DirectiveBundle{
		TurnIndex:            in.turnIndex,
		EmotionalLabel:       in.state.Current,
		Trajectory:           in.state.Trajectory,
		LanguageInstructions: in.language.Instructions,
		StateInstructions:    GetStateInstructions(in.state.Current),
		ContextPoints:        a.contextPoints(in.context),
		NegativeInstructions: append([]string{}, negativeInstructions...),
	}

	categories := a.activeCategories(in.profile)
	var chosen []string
	for _, cat := range categories {
		phrase, warn := a.selectForCategory(cat, in)
		if phrase == "" {
			continue
		}
		if warn != "" {
			bundle.Warnings = append(bundle.Warnings, warn)
		}
		chosen = append(chosen, phrase)
		if in.commit {
			in.session.rememberPhrase(cat, phrase)
		}
	}

	// Personality sample phrases ride along subject to the same cap.
	for _, p := range in.language.SamplePhrases {
		if in.session.ledger.allows(p) {
			chosen = append(chosen, p)
		} else {
			bundle.Warnings = append(bundle.Warnings, "ledger.suppressed:"+normalizePhrase(p))
			in.session.suppressions++
		}
	}

	bundle.SamplePhrases = chosen
	if in.commit {
		in.session.ledger.commit(chosen)
	}
	return bundle
}

// selectForCategory draws from the library until the ledger accepts a
// phrase. Failed random draws fall back to a deterministic scan of the
// bucket for any allowed phrase; only when the ledger rejects the entire
// bucket does the cap relax, so the repetition bound holds whenever it is
// satisfiable.
func (a *DirectiveAssembler) selectForCategory(cat PatternCategory, in assembleInput) (string, string) {
	recent := in.session.recentSet(cat)
	var last string
	for attempt := 0; attempt < a.config.MaxSelectAttempts; attempt++ {
		phrase := a.lib.Select(cat, in.state.Current, recent, in.rng)
		if phrase == "" {
			return "", ""
		}
		last = phrase
		if in.session.ledger.allows(phrase) {
			return phrase, ""
		}
		// Exclude and redraw.
		recent = copyRecent(recent)
		recent[phrase] = true
	}

	for _, wp := range a.lib.Phrases(cat, in.state.Current) {
		if in.session.ledger.allows(wp.Phrase) {
			return wp.Phrase, ""
		}
	}

	in.session.suppressions++
	return last, "ledger.relaxed:" + string(cat)
}

// activeCategories picks the bucket list for this profile; idioms only for
// stakeholders that use them.
func (a *DirectiveAssembler) activeCategories(profile StakeholderProfile) []PatternCategory {
	out := make([]PatternCategory, 0, len(allCategories))
	for _, cat := range allCategories {
		if cat == CategoryIdiom {
			if profile.SpeechPatterns == nil || !profile.SpeechPatterns.UsesIdioms {
				continue
			}
		}
		out = append(out, cat)
	}
	return out
}

// contextPoints selects the top key points, open commitments, and
// contradictions as referenceable material.
func (a *DirectiveAssembler) contextPoints(ctx *ConversationContext) []ContextPoint {
	if ctx == nil {
		return nil
	}
	var out []ContextPoint

	kept := 0
	for _, kp := range ctx.KeyPoints {
		if kept >= a.config.MaxContextPoints {
			break
		}
		out = append(out, ContextPoint{TurnIndex: kp.TurnIndex, Kind: "key_point", Text: kp.Content})
		kept++
	}
	for _, c := range ctx.UserCommitments {
		if c.Addressed {
			continue
		}
		out = append(out, ContextPoint{TurnIndex: c.TurnIndex, Kind: "open_commitment", Text: c.Text})
	}
	for _, c := range ctx.Contradictions {
		out = append(out, ContextPoint{TurnIndex: c.TurnIndexB, Kind: "contradiction", Text: c.Description})
	}
	return out
}

func copyRecent(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
