package dialoguesdk

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ──────────────────────────────────────────────
// Stakeholder Profile & Transcript — core data model
// ──────────────────────────────────────────────

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerStakeholder Speaker = "stakeholder"
)

// Turn is a single utterance in the transcript. Immutable once appended.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

// PersonalityTag is the closed set of recognized stakeholder personalities.
type PersonalityTag string

const (
	TagDirect        PersonalityTag = "direct"
	TagCollaborative PersonalityTag = "collaborative"
	TagAnalytical    PersonalityTag = "analytical"
	TagCreative      PersonalityTag = "creative"
	TagSupportive    PersonalityTag = "supportive"
	TagSkeptical     PersonalityTag = "skeptical"

	// TagBalanced is the designed fallback for unrecognized tags.
	// It is never an error to hit it.
	TagBalanced PersonalityTag = "balanced"
)

// ParsePersonalityTag normalizes a free-form tag string into the closed set.
// Unrecognized values return (TagBalanced, false).
func ParsePersonalityTag(raw string) (PersonalityTag, bool) {
	switch PersonalityTag(strings.ToLower(strings.TrimSpace(raw))) {
	case TagDirect:
		return TagDirect, true
	case TagCollaborative:
		return TagCollaborative, true
	case TagAnalytical:
		return TagAnalytical, true
	case TagCreative:
		return TagCreative, true
	case TagSupportive:
		return TagSupportive, true
	case TagSkeptical:
		return TagSkeptical, true
	case TagBalanced:
		return TagBalanced, true
	default:
		return TagBalanced, false
	}
}

// StyleLevel is a coarse three-step scale used by CommunicationStyle.
type StyleLevel string

const (
	LevelLow      StyleLevel = "low"
	LevelModerate StyleLevel = "moderate"
	LevelHigh     StyleLevel = "high"
)

// QuestioningStyle describes how the stakeholder probes the user.
type QuestioningStyle string

const (
	QuestioningDirect      QuestioningStyle = "direct"
	QuestioningExploratory QuestioningStyle = "exploratory"
	QuestioningChallenging QuestioningStyle = "challenging"
)

// CommunicationStyle refines personality defaults. Empty fields fall back
// to the personality-tag defaults.
type CommunicationStyle struct {
	Directness              StyleLevel       `json:"directness,omitempty"`
	Formality               StyleLevel       `json:"formality,omitempty"`
	EmotionalExpressiveness StyleLevel       `json:"emotional_expressiveness,omitempty"`
	QuestioningStyle        QuestioningStyle `json:"questioning_style,omitempty"`
}

// SpeechPatterns holds optional speech-level tuning knobs.
type SpeechPatterns struct {
	AverageSentenceLength int  `json:"average_sentence_length,omitempty"` // words, 0 = unset
	UsesIdioms            bool `json:"uses_idioms,omitempty"`
	UsesHumor             bool `json:"uses_humor,omitempty"`
	ThinkingPauses        bool `json:"thinking_pauses,omitempty"`
}

// StakeholderProfile is the immutable per-session stakeholder definition.
// Concerns are fixed for the life of a session: the tracker only flips them
// between addressed and unaddressed, never adds or removes.
type StakeholderProfile struct {
	PersonalityTag     string              `json:"personality_tag"`
	Concerns           []string            `json:"concerns"`
	CommunicationStyle *CommunicationStyle `json:"communication_style,omitempty"`
	SpeechPatterns     *SpeechPatterns     `json:"speech_patterns,omitempty"`
}

// Fingerprint returns a stable hash of the profile value, used as the
// personality-derivation cache key.
func (p StakeholderProfile) Fingerprint() uint64 {
	b, err := json.Marshal(p)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}

// lastUserTurn returns the newest user turn in the slice, or nil.
func lastUserTurn(turns []Turn) *Turn {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Speaker == SpeakerUser {
			return &turns[i]
		}
	}
	return nil
}

// userTurns filters the transcript down to user turns, preserving order.
func userTurns(transcript []Turn) []Turn {
	out := make([]Turn, 0, len(transcript))
	for _, t := range transcript {
		if t.Speaker == SpeakerUser {
			out = append(out, t)
		}
	}
	return out
}
