package dialoguesdk

import (
	"math/rand"
)

// ──────────────────────────────────────────────
// Pattern Library — weighted phrase selection with recency exclusion
// ──────────────────────────────────────────────

// PatternCategory names a bucket of phrase fragments.
type PatternCategory string

const (
	CategoryOpening        PatternCategory = "opening"
	CategoryThinking       PatternCategory = "thinking"
	CategoryHedge          PatternCategory = "hedge"
	CategoryAcknowledgment PatternCategory = "acknowledgment"
	CategoryTransition     PatternCategory = "transition"
	CategoryIdiom          PatternCategory = "idiom"
)

// allCategories in stable selection order.
var allCategories = []PatternCategory{
	CategoryOpening,
	CategoryThinking,
	CategoryHedge,
	CategoryAcknowledgment,
	CategoryTransition,
	CategoryIdiom,
}

// WeightedPhrase is one selectable fragment.
type WeightedPhrase struct {
	Phrase string  `json:"phrase" yaml:"phrase"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// PatternLibrary holds category × emotional-state phrase buckets. The
// library itself is immutable after construction and safe for concurrent
// selection; callers own the random source and the recent-use window.
type PatternLibrary struct {
	buckets map[PatternCategory]map[StateLabel][]WeightedPhrase
}

// NewPatternLibrary creates a library with the built-in phrase pool.
func NewPatternLibrary() *PatternLibrary {
	return &PatternLibrary{buckets: builtinPatterns()}
}

// Select picks a phrase from the category × state bucket, excluding any
// phrase present in recentlyUsed. When exclusion empties the candidate set,
// it relaxes back to the full bucket: repetition is a soft constraint.
// Unknown states fall back to the neutral bucket. Returns "" only when the
// category itself is empty.
func (l *PatternLibrary) Select(category PatternCategory, state StateLabel, recentlyUsed map[string]bool, rng *rand.Rand) string {
	bucket := l.bucket(category, state)
	if len(bucket) == 0 {
		return ""
	}

	filtered := make([]WeightedPhrase, 0, len(bucket))
	for _, wp := range bucket {
		if !recentlyUsed[wp.Phrase] {
			filtered = append(filtered, wp)
		}
	}
	if len(filtered) == 0 {
		filtered = bucket
	}

	return weightedPick(filtered, rng)
}

// bucket resolves the category × state slot, merging the state-specific
// phrases over the category's neutral base.
func (l *PatternLibrary) bucket(category PatternCategory, state StateLabel) []WeightedPhrase {
	states, ok := l.buckets[category]
	if !ok {
		return nil
	}
	base := states[StateNeutral]
	if state == StateNeutral {
		return base
	}
	specific, ok := states[state]
	if !ok {
		return base
	}
	merged := make([]WeightedPhrase, 0, len(base)+len(specific))
	merged = append(merged, specific...)
	merged = append(merged, base...)
	return merged
}

// Phrases returns a copy of the raw bucket for a category × state slot.
func (l *PatternLibrary) Phrases(category PatternCategory, state StateLabel) []WeightedPhrase {
	return append([]WeightedPhrase{}, l.bucket(category, state)...)
}

// weightedPick selects one phrase by weight using the supplied source.
func weightedPick(items []WeightedPhrase, rng *rand.Rand) string {
	if len(items) == 1 {
		return items[0].Phrase
	}

	total := 0.0
	for _, it := range items {
		total += it.Weight
	}
	if total <= 0 {
		return items[rng.Intn(len(items))].Phrase
	}

	roll := rng.Float64() * total
	cumulative := 0.0
	for _, it := range items {
		cumulative += it.Weight
		if roll <= cumulative {
			return it.Phrase
		}
	}
	return items[len(items)-1].Phrase
}

func builtinPatterns() map[PatternCategory]map[StateLabel][]WeightedPhrase {
	return map[PatternCategory]map[StateLabel][]WeightedPhrase{
		CategoryOpening: {
			StateNeutral: {
				{Phrase: "Right, let's pick this up.", Weight: 1.0},
				{Phrase: "Okay, where were we.", Weight: 1.0},
				{Phrase: "So, on that last point.", Weight: 1.0},
				{Phrase: "Let me jump back in here.", Weight: 0.8},
				{Phrase: "Alright, a few thoughts.", Weight: 0.8},
			},
			StateSkeptical: {
				{Phrase: "Hold on a second.", Weight: 1.0},
				{Phrase: "I have to stop you there.", Weight: 0.9},
				{Phrase: "Before we go further.", Weight: 0.8},
			},
			StateCurious: {
				{Phrase: "Now that's interesting.", Weight: 1.0},
				{Phrase: "Tell me more about that.", Weight: 1.0},
				{Phrase: "Okay, I want to dig into this.", Weight: 0.9},
			},
			StateWarmingUp: {
				{Phrase: "I like where this is going.", Weight: 1.0},
				{Phrase: "That actually lands well with me.", Weight: 0.9},
			},
			StateConcerned: {
				{Phrase: "I have to be honest with you.", Weight: 1.0},
				{Phrase: "Something is still bothering me.", Weight: 1.0},
			},
			StateFrustrated: {
				{Phrase: "Let's cut to the chase.", Weight: 1.0},
				{Phrase: "We keep going in circles here.", Weight: 1.0},
				{Phrase: "I'll be blunt.", Weight: 0.9},
			},
			StateSatisfied: {
				{Phrase: "This is exactly what I needed to hear.", Weight: 1.0},
				{Phrase: "Good, we're on the same page now.", Weight: 1.0},
			},
		},
		CategoryThinking: {
			StateNeutral: {
				{Phrase: "Let me think about that for a moment.", Weight: 1.0},
				{Phrase: "Hmm, give me a second here.", Weight: 1.0},
				{Phrase: "Let me turn that over.", Weight: 0.8},
				{Phrase: "Walking through the implications...", Weight: 0.7},
			},
			StateCurious: {
				{Phrase: "I'm trying to square that with what you said earlier.", Weight: 1.0},
			},
			StateFrustrated: {
				{Phrase: "I keep coming back to the same problem.", Weight: 1.0},
			},
		},
		CategoryHedge: {
			StateNeutral: {
				{Phrase: "I could be wrong, but", Weight: 1.0},
				{Phrase: "From where I sit,", Weight: 1.0},
				{Phrase: "My read on this is", Weight: 1.0},
				{Phrase: "If I'm being fair,", Weight: 0.8},
				{Phrase: "It's possible I'm missing something, but", Weight: 0.8},
			},
			StateSkeptical: {
				{Phrase: "Call me a cynic, but", Weight: 1.0},
				{Phrase: "I've heard versions of this before, so", Weight: 0.9},
			},
			StateSatisfied: {
				{Phrase: "Credit where it's due,", Weight: 1.0},
			},
		},
		CategoryAcknowledgment: {
			StateNeutral: {
				{Phrase: "Fair point.", Weight: 1.0},
				{Phrase: "I hear you.", Weight: 1.0},
				{Phrase: "Understood.", Weight: 1.0},
				{Phrase: "Noted, go on.", Weight: 0.8},
				{Phrase: "That tracks.", Weight: 0.8},
			},
			StateWarmingUp: {
				{Phrase: "That's a genuinely good answer.", Weight: 1.0},
				{Phrase: "You've clearly thought about this.", Weight: 0.9},
			},
			StateConcerned: {
				{Phrase: "I hear you, but it doesn't settle it for me.", Weight: 1.0},
			},
		},
		CategoryTransition: {
			StateNeutral: {
				{Phrase: "Moving on to the bigger question.", Weight: 1.0},
				{Phrase: "Which brings me to my next point.", Weight: 1.0},
				{Phrase: "Setting that aside for now.", Weight: 1.0},
				{Phrase: "Let's change tack.", Weight: 0.8},
				{Phrase: "On a related note.", Weight: 0.8},
			},
			StateConcerned: {
				{Phrase: "Coming back to what worries me.", Weight: 1.0},
			},
		},
		CategoryIdiom: {
			StateNeutral: {
				{Phrase: "the ball is in your court", Weight: 1.0},
				{Phrase: "we're not out of the woods yet", Weight: 1.0},
				{Phrase: "let's not put the cart before the horse", Weight: 1.0},
				{Phrase: "reading between the lines", Weight: 0.9},
				{Phrase: "the devil is in the details", Weight: 0.9},
				{Phrase: "moving the goalposts", Weight: 0.8},
			},
			StateSatisfied: {
				{Phrase: "we've turned a corner", Weight: 1.0},
			},
			StateFrustrated: {
				{Phrase: "we're flogging a dead horse", Weight: 1.0},
			},
		},
	}
}
