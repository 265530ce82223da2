package dialoguesdk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

// ──────────────────────────────────────────────
// Engine — the per-turn directive pipeline
// ──────────────────────────────────────────────

// ErrSessionNotFound is returned when a session id is unknown to both the
// registry and the configured store.
var ErrSessionNotFound = errors.New("session not found")

// Config controls the engine. Zero values fall back to defaults.
type Config struct {
	Tracker   TrackerConfig
	Analyzer  AnalyzerConfig
	Assembler AssemblerConfig

	// RepetitionCap bounds how often a 3+-word phrase may repeat across a
	// session's bundles, default 0.30.
	RepetitionCap float64

	// AnalysisTailTurns limits how far back the tracker reads when
	// classifying the newest user activity, default 6.
	AnalysisTailTurns int

	// Seed makes phrase selection deterministic when nonzero (tests).
	Seed int64

	// Store, when set, receives a snapshot after every committed turn and
	// backs session recovery on registry misses.
	Store SessionStore

	// PatternFile is an optional YAML overlay merged over the built-in
	// phrase pool.
	PatternFile string

	Logger *logrus.Logger
}

// DefaultConfig returns the recommended baseline.
func DefaultConfig() Config {
	return Config{
		Tracker:           DefaultTrackerConfig(),
		Analyzer:          DefaultAnalyzerConfig(),
		Assembler:         DefaultAssemblerConfig(),
		RepetitionCap:     0.30,
		AnalysisTailTurns: 6,
	}
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	BundlesProduced    int64
	ReplaysObserved    int64
	PhraseSuppressions int64
}

// Engine runs the personality → emotional-state → context → assembly
// pipeline once per stakeholder turn. The personality derivation and the
// pattern library are pure and shared across sessions without locking; all
// mutable state hangs off the per-session objects.
type Engine struct {
	config    Config
	lib       *PatternLibrary
	tracker   *EmotionalTracker
	analyzer  *ContextAnalyzer
	assembler *DirectiveAssembler
	logger    *logrus.Logger

	smu      sync.RWMutex
	sessions map[string]*Session

	pmu          sync.RWMutex
	personaCache map[uint64]LanguageProfile

	flight singleflight.Group

	bundles      atomic.Int64
	replays      atomic.Int64
	suppressions atomic.Int64
}

// NewEngine creates an engine. A broken pattern overlay file is logged and
// skipped; the built-in pool always loads.
func NewEngine(config ...Config) *Engine {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.RepetitionCap == 0 {
		cfg.RepetitionCap = 0.30
	}
	if cfg.AnalysisTailTurns == 0 {
		cfg.AnalysisTailTurns = 6
	}
	if cfg.Assembler.RecentPhraseWindow == 0 {
		cfg.Assembler = DefaultAssemblerConfig()
	}
	if cfg.Tracker.IgnoredConcernTurns == 0 {
		cfg.Tracker = DefaultTrackerConfig()
	}
	if cfg.Analyzer.TopKeyPoints == 0 {
		cfg.Analyzer = DefaultAnalyzerConfig()
	}

	lib := NewPatternLibrary()
	if cfg.PatternFile != "" {
		if err := lib.LoadPatternFile(cfg.PatternFile); err != nil {
			cfg.Logger.WithError(err).Warn("pattern overlay not loaded, using built-ins")
		}
	}

	return &Engine{
		config:       cfg,
		lib:          lib,
		tracker:      NewEmotionalTracker(cfg.Logger, cfg.Tracker),
		analyzer:     NewContextAnalyzer(cfg.Logger, cfg.Analyzer),
		assembler:    NewDirectiveAssembler(lib, cfg.Assembler),
		logger:       cfg.Logger,
		sessions:     make(map[string]*Session),
		personaCache: make(map[uint64]LanguageProfile),
	}
}

// PatternLibrary exposes the engine's library, e.g. for overlay merging.
func (e *Engine) PatternLibrary() *PatternLibrary {
	return e.lib
}

// CreateSession registers a new session for the profile. When no id is
// supplied a UUID is minted.
func (e *Engine) CreateSession(profile StakeholderProfile, id ...string) *Session {
	sid := uuid.NewString()
	if len(id) > 0 && id[0] != "" {
		sid = id[0]
	}
	s := newSession(sid, profile, e.config.RepetitionCap, e.config.Assembler.RecentPhraseWindow, e.config.Seed)
	e.smu.Lock()
	e.sessions[sid] = s
	e.smu.Unlock()
	e.logger.WithFields(logrus.Fields{
		"session_id": sid,
		"tag":        profile.PersonalityTag,
		"concerns":   len(profile.Concerns),
	}).Debug("session created")
	return s
}

// Session looks up a registered session.
func (e *Engine) Session(id string) (*Session, bool) {
	e.smu.RLock()
	defer e.smu.RUnlock()
	s, ok := e.sessions[id]
	return s, ok
}

// CloseSession drops the session from the registry and, when a store is
// configured, deletes its snapshot.
func (e *Engine) CloseSession(ctx context.Context, id string) error {
	e.smu.Lock()
	delete(e.sessions, id)
	e.smu.Unlock()
	if e.config.Store != nil {
		return e.config.Store.Delete(ctx, id)
	}
	return nil
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		BundlesProduced:    e.bundles.Load(),
		ReplaysObserved:    e.replays.Load(),
		PhraseSuppressions: e.suppressions.Load(),
	}
}

// GenerateDirectives runs the full per-turn pipeline and returns the
// directive bundle for the stakeholder's next reply.
//
// Duplicate concurrent requests for the same (session, turn) collapse into
// one execution; a request whose turn index does not exceed the session's
// last processed index is treated as a replay: the bundle is reassembled
// from current state with no transition and no ledger advance.
func (e *Engine) GenerateDirectives(ctx context.Context, sessionID string, transcript []Turn, turnIndex int) (*DirectiveBundle, error) {
	session, err := e.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%d", sessionID, turnIndex)
	v, err, _ := e.flight.Do(key, func() (interface{}, error) {
		return e.generate(ctx, session, transcript, turnIndex)
	})
	if err != nil {
		return nil, err
	}
	return v.(*DirectiveBundle), nil
}

func (e *Engine) generate(ctx context.Context, session *Session, transcript []Turn, turnIndex int) (*DirectiveBundle, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	language := e.derivePersonality(session.Profile)
	convCtx := e.analyzer.Analyze(transcript, session.Profile.Concerns)

	replay := turnIndex <= session.lastTurnIndex
	if replay {
		e.replays.Inc()
		e.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"turn":       turnIndex,
			"last_turn":  session.lastTurnIndex,
		}).Debug("replayed turn, holding state")
	} else {
		session.state = e.tracker.Analyze(session.state, e.analysisTail(transcript))
	}

	before := session.suppressions
	bundle := e.assembler.assemble(assembleInput{
		turnIndex: turnIndex,
		language:  language,
		state:     session.state,
		context:   convCtx,
		profile:   session.Profile,
		session:   session,
		rng:       session.rng,
		commit:    !replay,
	})
	e.suppressions.Add(session.suppressions - before)

	if !replay {
		session.lastTurnIndex = turnIndex
		e.bundles.Inc()
		if e.config.Store != nil {
			if err := e.config.Store.Save(ctx, session.snapshotLocked()); err != nil {
				e.logger.WithError(err).WithField("session_id", session.ID).Warn("session snapshot not saved")
			}
		}
	}

	e.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"turn":       turnIndex,
		"state":      session.state.Current,
		"trajectory": session.state.Trajectory,
		"replay":     replay,
	}).Debug("directive bundle assembled")

	return bundle, nil
}

// resolveSession returns the registered session, falling back to the
// snapshot store when one is configured.
func (e *Engine) resolveSession(ctx context.Context, sessionID string) (*Session, error) {
	if s, ok := e.Session(sessionID); ok {
		return s, nil
	}
	if e.config.Store == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	snap, err := e.config.Store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	s := restoreSession(snap, e.config.RepetitionCap, e.config.Assembler.RecentPhraseWindow, e.config.Seed)
	e.smu.Lock()
	// Another request may have restored it first; keep the winner.
	if existing, ok := e.sessions[sessionID]; ok {
		s = existing
	} else {
		e.sessions[sessionID] = s
	}
	e.smu.Unlock()
	e.logger.WithField("session_id", sessionID).Info("session restored from snapshot store")
	return s, nil
}

// derivePersonality caches the pure derivation per profile value.
func (e *Engine) derivePersonality(profile StakeholderProfile) LanguageProfile {
	key := profile.Fingerprint()
	e.pmu.RLock()
	cached, ok := e.personaCache[key]
	e.pmu.RUnlock()
	if ok {
		return cached
	}
	derived := DerivePersonality(profile)
	e.pmu.Lock()
	e.personaCache[key] = derived
	e.pmu.Unlock()
	return derived
}

// analysisTail returns the last few transcript turns for the tracker.
func (e *Engine) analysisTail(transcript []Turn) []Turn {
	n := e.config.AnalysisTailTurns
	if len(transcript) <= n {
		return transcript
	}
	return transcript[len(transcript)-n:]
}
