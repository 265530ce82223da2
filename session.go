package dialoguesdk

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ──────────────────────────────────────────────
// Session — single-owner per-conversation state
// ──────────────────────────────────────────────

// Session owns all mutable per-conversation state: the emotional state, the
// phrase ledger, the per-category recency windows, and the last processed
// turn index. Exactly one generation request may advance it at a time; the
// engine serializes on the session's mutex, never on a global lock.
type Session struct {
	ID      string
	Profile StakeholderProfile

	mu            sync.Mutex
	state         *EmotionalState
	ledger        *phraseLedger
	recentPhrases map[PatternCategory][]string
	recentWindow  int
	lastTurnIndex int
	suppressions  int64
	rng           *rand.Rand
	createdAt     time.Time
	updatedAt     time.Time
}

// newSession builds a fresh session. A zero seed derives one from the
// session id and the clock; a nonzero seed gives deterministic replay for
// tests.
func newSession(id string, profile StakeholderProfile, capRatio float64, window int, seed int64) *Session {
	if seed == 0 {
		seed = int64(xxhash.Sum64String(id)) ^ time.Now().UnixNano()
	}
	return &Session{
		ID:            id,
		Profile:       profile,
		state:         NewEmotionalState(profile.Concerns),
		ledger:        newPhraseLedger(capRatio),
		recentPhrases: make(map[PatternCategory][]string),
		recentWindow:  window,
		lastTurnIndex: -1,
		rng:           rand.New(rand.NewSource(seed)),
		createdAt:     time.Now(),
		updatedAt:     time.Now(),
	}
}

// State returns a copy of the current emotional state.
func (s *Session) State() *EmotionalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// LastTurnIndex returns the index of the last processed turn, -1 before
// the first.
func (s *Session) LastTurnIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTurnIndex
}

// rememberPhrase appends to the category's rolling recent-use window.
func (s *Session) rememberPhrase(cat PatternCategory, phrase string) {
	window := s.recentPhrases[cat]
	window = append(window, phrase)
	if len(window) > s.recentWindow {
		window = window[len(window)-s.recentWindow:]
	}
	s.recentPhrases[cat] = window
}

// recentSet returns the category's recent phrases as a membership set.
func (s *Session) recentSet(cat PatternCategory) map[string]bool {
	out := make(map[string]bool)
	for _, p := range s.recentPhrases[cat] {
		out[p] = true
	}
	return out
}

// ──────────────────────────────────────────────
// Session snapshots — recoverable engine state
// ──────────────────────────────────────────────

// SessionSnapshot is the serializable form of a session's mutable state.
// It lets a session survive a process restart; the transcript itself is the
// session layer's problem, not ours.
type SessionSnapshot struct {
	ID            string              `json:"id"`
	Profile       StakeholderProfile  `json:"profile"`
	State         *EmotionalState     `json:"state"`
	LedgerCounts  map[string]int      `json:"ledger_counts"`
	BundleCount   int                 `json:"bundle_count"`
	LastTurnIndex int                 `json:"last_turn_index"`
	RecentPhrases map[string][]string `json:"recent_phrases"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Snapshot captures the session's current state. Callers holding no lock
// may use it at any time.
func (s *Session) Snapshot() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *SessionSnapshot {
	recent := make(map[string][]string, len(s.recentPhrases))
	for cat, phrases := range s.recentPhrases {
		recent[string(cat)] = append([]string{}, phrases...)
	}
	return &SessionSnapshot{
		ID:            s.ID,
		Profile:       s.Profile,
		State:         s.state.clone(),
		LedgerCounts:  s.ledger.exportCounts(),
		BundleCount:   s.ledger.bundles,
		LastTurnIndex: s.lastTurnIndex,
		RecentPhrases: recent,
		UpdatedAt:     s.updatedAt,
	}
}

// restoreSession rebuilds a session from a snapshot.
func restoreSession(snap *SessionSnapshot, capRatio float64, window int, seed int64) *Session {
	s := newSession(snap.ID, snap.Profile, capRatio, window, seed)
	if snap.State != nil {
		s.state = snap.State.clone()
	}
	s.ledger.restoreCounts(snap.LedgerCounts, snap.BundleCount)
	s.lastTurnIndex = snap.LastTurnIndex
	for cat, phrases := range snap.RecentPhrases {
		s.recentPhrases[PatternCategory(cat)] = append([]string{}, phrases...)
	}
	s.updatedAt = snap.UpdatedAt
	return s
}
