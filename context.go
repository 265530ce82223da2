package dialoguesdk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ──────────────────────────────────────────────
// Context Analyzer — key points, commitments, contradictions
// ──────────────────────────────────────────────

// KeyPoint is a transcript turn worth referencing back.
type KeyPoint struct {
	TurnIndex  int     `json:"turn_index"`
	Speaker    Speaker `json:"speaker"`
	Content    string  `json:"content"`
	Importance float64 `json:"importance"` // 0.0-1.0
}

// Commitment is a user pledge of future action.
type Commitment struct {
	TurnIndex int    `json:"turn_index"`
	Text      string `json:"text"`
	Addressed bool   `json:"addressed"`
}

// Contradiction pairs two user turns with opposite claims on one topic.
// TurnIndexA < TurnIndexB always holds.
type Contradiction struct {
	TurnIndexA  int    `json:"turn_index_a"`
	TurnIndexB  int    `json:"turn_index_b"`
	Description string `json:"description"`
}

// ConversationContext is recomputed from the full transcript each call.
// Extraction is deterministic: the same transcript yields the same context.
type ConversationContext struct {
	KeyPoints       []KeyPoint      `json:"key_points"`
	UserCommitments []Commitment    `json:"user_commitments"`
	Contradictions  []Contradiction `json:"contradictions"`
	TopicsDiscussed []string        `json:"topics_discussed"`
}

// AnalyzerConfig controls extraction thresholds.
type AnalyzerConfig struct {
	TopKeyPoints   int // key points kept globally by score, default 5
	LookbackTurns  int // contradiction comparison window (user turns), default 12
	MinSharedTerms int // shared content terms to call two turns same-topic, default 2
	MinTopicCount  int // occurrences before a term becomes a topic, default 2
}

// DefaultAnalyzerConfig returns production defaults.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		TopKeyPoints:   5,
		LookbackTurns:  12,
		MinSharedTerms: 2,
		MinTopicCount:  2,
	}
}

// ContextAnalyzer extracts referenceable context from a transcript.
// It is stateless per call and safe for concurrent use across sessions.
type ContextAnalyzer struct {
	config AnalyzerConfig
	logger *logrus.Logger
}

// NewContextAnalyzer creates an analyzer.
func NewContextAnalyzer(logger *logrus.Logger, config ...AnalyzerConfig) *ContextAnalyzer {
	cfg := DefaultAnalyzerConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ContextAnalyzer{config: cfg, logger: logger}
}

// Analyze runs the full extraction. An empty transcript yields an empty
// context, never an error.
func (a *ContextAnalyzer) Analyze(transcript []Turn, concerns []string) *ConversationContext {
	if len(transcript) == 0 {
		a.logger.Debug("context analyzer: empty transcript, returning empty context")
		return &ConversationContext{}
	}

	commitments := a.TrackCommitments(transcript)
	contradictions := a.FindContradictions(transcript)
	keyPoints := a.extractKeyPoints(transcript, concerns, commitments, contradictions)

	return &ConversationContext{
		KeyPoints:       keyPoints,
		UserCommitments: commitments,
		Contradictions:  contradictions,
		TopicsDiscussed: a.extractTopics(transcript, concerns),
	}
}

// ExtractKeyPoints scores every turn and keeps the global top-K plus any
// turn that created a commitment or contradiction.
func (a *ContextAnalyzer) ExtractKeyPoints(transcript []Turn, concerns []string) []KeyPoint {
	commitments := a.TrackCommitments(transcript)
	contradictions := a.FindContradictions(transcript)
	return a.extractKeyPoints(transcript, concerns, commitments, contradictions)
}

func (a *ContextAnalyzer) extractKeyPoints(transcript []Turn, concerns []string, commitments []Commitment, contradictions []Contradiction) []KeyPoint {
	forced := make(map[int]bool)
	for _, c := range commitments {
		forced[c.TurnIndex] = true
	}
	for _, c := range contradictions {
		forced[c.TurnIndexA] = true
		forced[c.TurnIndexB] = true
	}

	scored := make([]KeyPoint, 0, len(transcript))
	for _, turn := range transcript {
		scored = append(scored, KeyPoint{
			TurnIndex:  turn.Index,
			Speaker:    turn.Speaker,
			Content:    turn.Content,
			Importance: importanceScore(turn.Content, concerns),
		})
	}

	// Top-K by score. Sort a copy of positions so the final output keeps
	// transcript order, which makes extraction order-stable.
	byScore := make([]int, len(scored))
	for i := range byScore {
		byScore[i] = i
	}
	sort.SliceStable(byScore, func(i, j int) bool {
		return scored[byScore[i]].Importance > scored[byScore[j]].Importance
	})
	keep := make(map[int]bool)
	for i := 0; i < len(byScore) && i < a.config.TopKeyPoints; i++ {
		keep[byScore[i]] = true
	}

	var out []KeyPoint
	for i, kp := range scored {
		if keep[i] || forced[kp.TurnIndex] {
			out = append(out, kp)
		}
	}
	return out
}

// importanceScore is a bounded additive heuristic over a turn's content.
func importanceScore(content string, concerns []string) float64 {
	score := 0.2

	switch words := wordCount(content); {
	case words >= 20:
		score += 0.2
	case words >= 10:
		score += 0.1
	}
	if hasDigit(content) {
		score += 0.15
	}
	if containsAny(content, decisionMarkers) {
		score += 0.2
	}
	if containsAny(content, commitmentMarkers) {
		score += 0.2
	}
	for _, concern := range concerns {
		if mentionsConcern(content, concern) {
			score += 0.15
			break
		}
	}
	return clampFloat(score, 0, 1)
}

// TrackCommitments finds user turns with first-person future-oriented
// concrete language, and marks them addressed when a later turn references
// their fulfillment.
func (a *ContextAnalyzer) TrackCommitments(transcript []Turn) []Commitment {
	var out []Commitment
	for i, turn := range transcript {
		if turn.Speaker != SpeakerUser {
			continue
		}
		if !containsAny(turn.Content, commitmentMarkers) {
			continue
		}
		// Concreteness: enough words to carry an actual pledge.
		if wordCount(turn.Content) < 4 {
			continue
		}
		c := Commitment{TurnIndex: turn.Index, Text: turn.Content}
		terms := termSet(turn.Content)
		for _, later := range transcript[i+1:] {
			if !containsAny(later.Content, fulfillmentMarkers) {
				continue
			}
			if sharedTermCount(terms, termSet(later.Content)) >= a.config.MinSharedTerms {
				c.Addressed = true
				break
			}
		}
		out = append(out, c)
	}
	return out
}

// FindContradictions compares each user turn against earlier user turns
// within the look-back window. Two turns on the same topic with opposite
// polarity are flagged. Cost stays linear in transcript length times the
// window size.
func (a *ContextAnalyzer) FindContradictions(transcript []Turn) []Contradiction {
	users := userTurns(transcript)
	var out []Contradiction
	seen := make(map[[2]int]bool)

	for j := 1; j < len(users); j++ {
		b := users[j]
		bTerms := termSet(b.Content)
		bNeg := isNegated(b.Content)

		start := j - a.config.LookbackTurns
		if start < 0 {
			start = 0
		}
		for i := start; i < j; i++ {
			aTurn := users[i]
			if sharedTermCount(termSet(aTurn.Content), bTerms) < a.config.MinSharedTerms {
				continue
			}
			if isNegated(aTurn.Content) == bNeg {
				continue
			}
			pair := [2]int{aTurn.Index, b.Index}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			out = append(out, Contradiction{
				TurnIndexA:  aTurn.Index,
				TurnIndexB:  b.Index,
				Description: fmt.Sprintf("turn %d (%q) contradicts turn %d (%q)", b.Index, trimForLabel(b.Content), aTurn.Index, trimForLabel(aTurn.Content)),
			})
		}
	}
	return out
}

// extractTopics collects recurring content terms plus any mentioned concern.
func (a *ContextAnalyzer) extractTopics(transcript []Turn, concerns []string) []string {
	counts := make(map[string]int)
	for _, turn := range transcript {
		for t := range termSet(turn.Content) {
			counts[t]++
		}
	}

	topicSet := make(map[string]bool)
	for term, n := range counts {
		if n >= a.config.MinTopicCount {
			topicSet[term] = true
		}
	}
	for _, concern := range concerns {
		for _, turn := range transcript {
			if mentionsConcern(turn.Content, concern) {
				topicSet[strings.ToLower(concern)] = true
				break
			}
		}
	}

	topics := make([]string, 0, len(topicSet))
	for t := range topicSet {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// trimForLabel shortens content for contradiction descriptions.
func trimForLabel(s string) string {
	const max = 60
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
