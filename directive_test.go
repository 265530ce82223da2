package dialoguesdk

import (
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Phrase Ledger & Directive Assembler tests
// ══════════════════════════════════════════════

func TestLedger_ShortPhrasesNeverCapped(t *testing.T) {
	l := newPhraseLedger(0.3)
	for i := 0; i < 50; i++ {
		if !l.allows("Bottom line:") {
			t.Fatal("phrases under three words are never capped")
		}
		l.commit([]string{"Bottom line:"})
	}
}

func TestLedger_RepetitionBound(t *testing.T) {
	l := newPhraseLedger(0.3)
	phrase := "the ball is in your court"

	appearances := 0
	const bundles = 20
	for i := 0; i < bundles; i++ {
		var shipped []string
		if l.allows(phrase) {
			shipped = append(shipped, phrase)
			appearances++
		}
		l.commit(shipped)
	}

	if appearances == 0 {
		t.Fatal("cap must not suppress the phrase entirely")
	}
	if ratio := float64(appearances) / float64(bundles); ratio > 0.3+1e-9 {
		t.Fatalf("phrase shipped in %.0f%% of bundles, cap is 30%%", ratio*100)
	}
}

func TestLedger_NormalizationCollapsesVariants(t *testing.T) {
	l := newPhraseLedger(0.3)
	l.commit([]string{"The Ball is in   your court"})
	l.commit([]string{})
	l.commit([]string{})

	// Same phrase modulo case/whitespace counts against the same key.
	if l.counts[phraseKey("the ball is in your court")] != 1 {
		t.Fatal("normalization should collapse case and whitespace variants")
	}
}

func TestLedger_SnapshotRoundTrip(t *testing.T) {
	l := newPhraseLedger(0.3)
	l.commit([]string{"we're not out of the woods yet", "Fair point."})
	l.commit([]string{"we're not out of the woods yet"})

	restored := newPhraseLedger(0.3)
	restored.restoreCounts(l.exportCounts(), l.bundles)

	if restored.bundles != 2 {
		t.Fatalf("expected 2 bundles, got %d", restored.bundles)
	}
	if restored.counts[phraseKey("we're not out of the woods yet")] != 2 {
		t.Fatal("counts lost in round trip")
	}
}

func TestAssemble_BundleShape(t *testing.T) {
	profile := StakeholderProfile{
		PersonalityTag: "skeptical",
		Concerns:       []string{"timeline"},
		SpeechPatterns: &SpeechPatterns{UsesIdioms: true},
	}
	session := newSession("s1", profile, 0.3, 6, 99)
	assembler := NewDirectiveAssembler(NewPatternLibrary())
	analyzer := NewContextAnalyzer(quietLogger())

	transcript := []Turn{
		userTurn(0, "I'll have the schedule locked by Friday."),
	}
	bundle := assembler.assemble(assembleInput{
		turnIndex: 1,
		language:  DerivePersonality(profile),
		state:     session.state,
		context:   analyzer.Analyze(transcript, profile.Concerns),
		profile:   profile,
		session:   session,
		rng:       session.rng,
		commit:    true,
	})

	if bundle.TurnIndex != 1 {
		t.Fatalf("turn index not carried: %d", bundle.TurnIndex)
	}
	if len(bundle.LanguageInstructions) == 0 || len(bundle.StateInstructions) == 0 {
		t.Fatal("bundle missing instruction sections")
	}
	if len(bundle.SamplePhrases) == 0 {
		t.Fatal("bundle missing sample phrases")
	}
	if len(bundle.NegativeInstructions) == 0 {
		t.Fatal("bundle missing negative instructions")
	}

	foundCommitment := false
	for _, cp := range bundle.ContextPoints {
		if cp.Kind == "open_commitment" && cp.TurnIndex == 0 {
			foundCommitment = true
		}
	}
	if !foundCommitment {
		t.Fatal("open commitment should be referenceable")
	}

	text := bundle.Text()
	for _, section := range []string{"## Voice", "## Current mood", "## Never"} {
		if !strings.Contains(text, section) {
			t.Fatalf("rendered bundle missing section %q", section)
		}
	}
}

func TestAssemble_IdiomsOnlyWhenProfileUsesThem(t *testing.T) {
	lib := NewPatternLibrary()
	assembler := NewDirectiveAssembler(lib)

	idioms := make(map[string]bool)
	for _, wp := range lib.Phrases(CategoryIdiom, StateNeutral) {
		idioms[wp.Phrase] = true
	}

	profile := StakeholderProfile{PersonalityTag: "direct"}
	session := newSession("s-noidiom", profile, 0.3, 6, 7)
	bundle := assembler.assemble(assembleInput{
		turnIndex: 0,
		language:  DerivePersonality(profile),
		state:     session.state,
		context:   &ConversationContext{},
		profile:   profile,
		session:   session,
		rng:       session.rng,
		commit:    true,
	})
	for _, p := range bundle.SamplePhrases {
		if idioms[p] {
			t.Fatalf("idiom %q offered to a no-idiom profile", p)
		}
	}
}

func TestAssemble_RepetitionBoundAcrossSession(t *testing.T) {
	profile := StakeholderProfile{
		PersonalityTag: "direct",
		Concerns:       []string{"timeline"},
		SpeechPatterns: &SpeechPatterns{UsesIdioms: true},
	}
	session := newSession("s-rep", profile, 0.3, 6, 1234)
	assembler := NewDirectiveAssembler(NewPatternLibrary())
	language := DerivePersonality(profile)

	const bundles = 12
	occurrences := make(map[string]int)
	for i := 0; i < bundles; i++ {
		bundle := assembler.assemble(assembleInput{
			turnIndex: i,
			language:  language,
			state:     session.state,
			context:   &ConversationContext{},
			profile:   profile,
			session:   session,
			rng:       session.rng,
			commit:    true,
		})
		seen := make(map[string]bool)
		for _, p := range bundle.SamplePhrases {
			key := normalizePhrase(p)
			if wordCount(p) >= 3 && !seen[key] {
				seen[key] = true
				occurrences[key]++
			}
		}
	}

	for phrase, n := range occurrences {
		if ratio := float64(n) / float64(bundles); ratio > 0.3+1e-9 {
			t.Fatalf("phrase %q appeared in %d/%d bundles (%.0f%%), cap is 30%%", phrase, n, bundles, ratio*100)
		}
	}
}
