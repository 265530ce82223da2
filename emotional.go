package dialoguesdk

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ──────────────────────────────────────────────
// Emotional State Tracker — per-session state machine
// ──────────────────────────────────────────────

// StateLabel is the stakeholder's current emotional state.
type StateLabel string

const (
	StateNeutral    StateLabel = "neutral"
	StateSkeptical  StateLabel = "skeptical"
	StateCurious    StateLabel = "curious"
	StateWarmingUp  StateLabel = "warming_up"
	StateConcerned  StateLabel = "concerned"
	StateFrustrated StateLabel = "frustrated"
	StateSatisfied  StateLabel = "satisfied"
)

// Trajectory is the short-term directional trend across transitions.
type Trajectory string

const (
	TrajectoryImproving Trajectory = "improving"
	TrajectoryDeclining Trajectory = "declining"
	TrajectoryStable    Trajectory = "stable"
)

// positiveStates are the states a conversation moves toward when going well.
var positiveStates = map[StateLabel]bool{
	StateCurious:   true,
	StateWarmingUp: true,
	StateSatisfied: true,
}

// negativeStates are the states a conversation declines into.
var negativeStates = map[StateLabel]bool{
	StateSkeptical:  true,
	StateConcerned:  true,
	StateFrustrated: true,
}

// EmotionalState is the mutable per-session emotional snapshot.
// ConcernsAddressed and ConcernsUnaddressed always partition the profile's
// concern set: every concern sits in exactly one of the two.
type EmotionalState struct {
	Current             StateLabel `json:"current"`
	Intensity           float64    `json:"intensity"`
	ConcernsAddressed   []string   `json:"concerns_addressed"`
	ConcernsUnaddressed []string   `json:"concerns_unaddressed"`
	Trajectory          Trajectory `json:"trajectory"`

	// RecentMoves holds the direction (+1/-1/0) of the last two transitions.
	RecentMoves []int `json:"recent_moves"`
	// IgnoredTurns counts consecutive user turns that left each unaddressed
	// concern untouched.
	IgnoredTurns map[string]int `json:"ignored_turns"`
}

// NewEmotionalState creates the session-start state: neutral, moderate
// intensity, all concerns unaddressed.
func NewEmotionalState(concerns []string) *EmotionalState {
	unaddressed := make([]string, len(concerns))
	copy(unaddressed, concerns)
	return &EmotionalState{
		Current:             StateNeutral,
		Intensity:           0.4,
		ConcernsAddressed:   []string{},
		ConcernsUnaddressed: unaddressed,
		Trajectory:          TrajectoryStable,
		IgnoredTurns:        make(map[string]int),
	}
}

// clone deep-copies the state so Analyze never mutates its input.
func (s *EmotionalState) clone() *EmotionalState {
	out := *s
	out.ConcernsAddressed = append([]string{}, s.ConcernsAddressed...)
	out.ConcernsUnaddressed = append([]string{}, s.ConcernsUnaddressed...)
	out.RecentMoves = append([]int{}, s.RecentMoves...)
	out.IgnoredTurns = make(map[string]int, len(s.IgnoredTurns))
	for k, v := range s.IgnoredTurns {
		out.IgnoredTurns[k] = v
	}
	return &out
}

// stateBaselines give each state a characteristic intensity. Tie-breaking
// between candidate next states picks the baseline closest to the current
// intensity, which keeps transitions from whiplashing.
var stateBaselines = map[StateLabel]float64{
	StateNeutral:    0.40,
	StateCurious:    0.45,
	StateWarmingUp:  0.55,
	StateSatisfied:  0.60,
	StateSkeptical:  0.55,
	StateConcerned:  0.65,
	StateFrustrated: 0.80,
}

// adjacency lists the plausible next states for each (state, direction).
// Direction: +1 positive signal, -1 negative signal.
var adjacency = map[StateLabel]map[int][]StateLabel{
	StateNeutral: {
		+1: {StateCurious, StateWarmingUp},
		-1: {StateSkeptical, StateConcerned},
	},
	StateSkeptical: {
		+1: {StateCurious, StateWarmingUp},
		-1: {StateFrustrated, StateConcerned},
	},
	StateCurious: {
		+1: {StateWarmingUp, StateSatisfied},
		-1: {StateSkeptical, StateFrustrated},
	},
	StateWarmingUp: {
		+1: {StateSatisfied, StateWarmingUp},
		-1: {StateCurious, StateConcerned},
	},
	StateConcerned: {
		+1: {StateWarmingUp, StateCurious},
		-1: {StateFrustrated, StateConcerned},
	},
	StateFrustrated: {
		+1: {StateConcerned, StateCurious},
		-1: {StateFrustrated},
	},
	StateSatisfied: {
		+1: {StateSatisfied},
		-1: {StateConcerned, StateCurious},
	},
}

// TrackerConfig controls signal thresholds.
type TrackerConfig struct {
	VagueTurnMaxWords    int     // turns shorter than this with no substance read as vague, default 8
	StrongTurnMinWords   int     // minimum length for the strong-argument heuristic, default 25
	IgnoredConcernTurns  int     // consecutive ignoring turns before a negative signal, default 2
	StrongSignal         float64 // |signal| at or above this is "strong", default 0.5
	NeutralSignalEpsilon float64 // |signal| below this holds the current state, default 0.1
}

// DefaultTrackerConfig returns production defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		VagueTurnMaxWords:    8,
		StrongTurnMinWords:   25,
		IgnoredConcernTurns:  2,
		StrongSignal:         0.5,
		NeutralSignalEpsilon: 0.1,
	}
}

// EmotionalTracker advances a session's emotional state once per new user
// turn. It never fails out of Analyze: malformed input holds the state.
type EmotionalTracker struct {
	config TrackerConfig
	logger *logrus.Logger
}

// NewEmotionalTracker creates a tracker.
func NewEmotionalTracker(logger *logrus.Logger, config ...TrackerConfig) *EmotionalTracker {
	cfg := DefaultTrackerConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EmotionalTracker{config: cfg, logger: logger}
}

// Analyze computes the next emotional state from the prior state and the
// tail of the transcript (the turns since the last stakeholder reply).
// The prior state is never mutated; the returned state is a fresh value.
func (t *EmotionalTracker) Analyze(prior *EmotionalState, tail []Turn) *EmotionalState {
	if prior == nil {
		t.logger.Warn("emotional tracker called with nil state, holding neutral")
		return NewEmotionalState(nil)
	}
	next := prior.clone()

	turn := lastUserTurn(tail)
	if turn == nil || len(turn.Content) == 0 {
		t.logger.WithField("tail_len", len(tail)).Warn("no analyzable user turn, holding emotional state")
		return next
	}

	signal := t.scoreSignal(next, turn)

	// Hold on a neutral signal.
	if math.Abs(signal) < t.config.NeutralSignalEpsilon {
		next.pushMove(0)
		next.Trajectory = next.computeTrajectory()
		return next
	}

	direction := +1
	if signal < 0 {
		direction = -1
	}

	target := t.pickNextState(next, signal, direction)
	next.Current = target

	// Intensity moves toward the new state's baseline by a bounded step.
	delta := clampFloat(math.Abs(signal), 0.1, 0.3)
	gap := stateBaselines[target] - next.Intensity
	step := clampFloat(gap, -delta, delta)
	next.Intensity = clampFloat(next.Intensity+step, 0, 1)

	next.pushMove(direction)
	next.Trajectory = next.computeTrajectory()
	return next
}

// scoreSignal implements the directional signal: newly addressed concerns
// and strong specific arguments push positive; vagueness and ignoring a
// standing concern push negative. Mutates next's concern partition and
// ignored-turn counters as a side effect.
func (t *EmotionalTracker) scoreSignal(next *EmotionalState, turn *Turn) float64 {
	signal := 0.0

	// 1. Concern classification against each unaddressed concern.
	addressedNow := 0
	remaining := next.ConcernsUnaddressed[:0:0]
	for _, concern := range next.ConcernsUnaddressed {
		if concernAddressedBy(turn.Content, concern) {
			next.ConcernsAddressed = append(next.ConcernsAddressed, concern)
			delete(next.IgnoredTurns, concern)
			addressedNow++
			continue
		}
		remaining = append(remaining, concern)
	}
	next.ConcernsUnaddressed = remaining
	signal += 0.4 * float64(addressedNow)

	// 2. Ignored-concern streaks. A mention resets the streak even when it
	// falls short of addressing the concern.
	for _, concern := range next.ConcernsUnaddressed {
		if mentionsConcern(turn.Content, concern) {
			next.IgnoredTurns[concern] = 0
			continue
		}
		next.IgnoredTurns[concern]++
		if next.IgnoredTurns[concern] == t.config.IgnoredConcernTurns {
			signal -= 0.2
		}
	}

	// 3. Vague, non-substantive turn.
	words := wordCount(turn.Content)
	if addressedNow == 0 && words < t.config.VagueTurnMaxWords &&
		!hasDigit(turn.Content) && !containsAny(turn.Content, commitmentMarkers) {
		signal -= 0.3
	}

	// 4. Strong specific argument: long and concrete.
	if words >= t.config.StrongTurnMinWords &&
		(hasDigit(turn.Content) || containsAny(turn.Content, decisionMarkers)) {
		signal += 0.3
	}

	return signal
}

// pickNextState applies the adjacency table, the satisfied gate, and the
// smallest-intensity-change tie-break.
func (t *EmotionalTracker) pickNextState(state *EmotionalState, signal float64, direction int) StateLabel {
	// Strongly positive with every concern addressed: satisfied, from anywhere.
	if signal >= t.config.StrongSignal && len(state.ConcernsUnaddressed) == 0 {
		return StateSatisfied
	}

	candidates := adjacency[state.Current][direction]
	filtered := make([]StateLabel, 0, len(candidates))
	for _, c := range candidates {
		if c == StateSatisfied && len(state.ConcernsUnaddressed) > 0 {
			continue
		}
		filtered = append(filtered, c)
	}
	if len(filtered) == 0 {
		return state.Current
	}

	best := filtered[0]
	bestGap := math.Abs(stateBaselines[best] - state.Intensity)
	for _, c := range filtered[1:] {
		gap := math.Abs(stateBaselines[c] - state.Intensity)
		if gap < bestGap {
			best, bestGap = c, gap
		}
	}
	return best
}

// concernAddressedBy reports whether the content plausibly addresses the
// concern: related terms plus commitment language or concrete specifics.
func concernAddressedBy(content, concern string) bool {
	if !mentionsConcern(content, concern) {
		return false
	}
	return containsAny(content, commitmentMarkers) ||
		containsAny(content, decisionMarkers) ||
		hasDigit(content)
}

func (s *EmotionalState) pushMove(direction int) {
	s.RecentMoves = append(s.RecentMoves, direction)
	if len(s.RecentMoves) > 2 {
		s.RecentMoves = s.RecentMoves[len(s.RecentMoves)-2:]
	}
}

func (s *EmotionalState) computeTrajectory() Trajectory {
	if len(s.RecentMoves) < 2 {
		return TrajectoryStable
	}
	a, b := s.RecentMoves[0], s.RecentMoves[1]
	switch {
	case a > 0 && b > 0:
		return TrajectoryImproving
	case a < 0 && b < 0:
		return TrajectoryDeclining
	default:
		return TrajectoryStable
	}
}

// stateInstructions maps each state to generation guidance.
var stateInstructions = map[StateLabel][]string{
	StateNeutral: {
		"Keep an even, professional tone without strong signals either way.",
		"Ask clarifying questions before taking positions.",
	},
	StateSkeptical: {
		"Push back on claims that lack evidence; ask for specifics.",
		"Use guarded language and qualify agreement heavily.",
	},
	StateCurious: {
		"Lean in with follow-up questions about details that interest you.",
		"Signal genuine interest while withholding final judgment.",
	},
	StateWarmingUp: {
		"Acknowledge good points explicitly and build on them.",
		"Soften earlier objections without dropping them entirely.",
	},
	StateConcerned: {
		"Return to your unresolved concerns; name what is still missing.",
		"Stay polite but make the discomfort audible.",
	},
	StateFrustrated: {
		"Use impatient markers and direct challenges.",
		"Shorten replies; interrupt pleasantries to get to the point.",
	},
	StateSatisfied: {
		"Express confidence in the direction and talk next steps.",
		"Be generous with agreement while staying businesslike.",
	},
}

// GetStateInstructions returns generation guidance for a state. Unknown
// states fall back to neutral guidance.
func GetStateInstructions(state StateLabel) []string {
	if ins, ok := stateInstructions[state]; ok {
		return append([]string{}, ins...)
	}
	return append([]string{}, stateInstructions[StateNeutral]...)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
