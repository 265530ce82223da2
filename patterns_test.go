package dialoguesdk

import (
	"math/rand"
	"testing"
)

// ══════════════════════════════════════════════
// Pattern Library tests
// ══════════════════════════════════════════════

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestSelect_ExcludesRecentlyUsed(t *testing.T) {
	lib := NewPatternLibrary()
	rng := testRng()

	// Exclude all but one neutral opening phrase; selection must return
	// the survivor every time.
	bucket := lib.Phrases(CategoryOpening, StateNeutral)
	if len(bucket) < 2 {
		t.Fatal("test needs at least two neutral openings")
	}
	survivor := bucket[0].Phrase
	recent := make(map[string]bool)
	for _, wp := range bucket[1:] {
		recent[wp.Phrase] = true
	}

	for i := 0; i < 20; i++ {
		if got := lib.Select(CategoryOpening, StateNeutral, recent, rng); got != survivor {
			t.Fatalf("expected %q, got %q", survivor, got)
		}
	}
}

func TestSelect_RelaxesWhenExclusionEmptiesBucket(t *testing.T) {
	lib := NewPatternLibrary()
	rng := testRng()

	recent := make(map[string]bool)
	for _, wp := range lib.Phrases(CategoryHedge, StateNeutral) {
		recent[wp.Phrase] = true
	}

	// Exhausted exclusion falls back to the full bucket rather than failing.
	got := lib.Select(CategoryHedge, StateNeutral, recent, rng)
	if got == "" {
		t.Fatal("selection must relax exclusion, not return empty")
	}
}

func TestSelect_UnknownStateFallsBackToNeutral(t *testing.T) {
	lib := NewPatternLibrary()

	neutral := make(map[string]bool)
	for _, wp := range lib.Phrases(CategoryTransition, StateNeutral) {
		neutral[wp.Phrase] = true
	}

	rng := testRng()
	for i := 0; i < 20; i++ {
		got := lib.Select(CategoryTransition, StateLabel("euphoric"), nil, rng)
		if !neutral[got] {
			t.Fatalf("unknown state should draw from the neutral bucket, got %q", got)
		}
	}
}

func TestSelect_StateBucketMergesOverNeutral(t *testing.T) {
	lib := NewPatternLibrary()
	rng := testRng()

	valid := make(map[string]bool)
	for _, wp := range lib.Phrases(CategoryOpening, StateFrustrated) {
		valid[wp.Phrase] = true
	}

	sawSpecific := false
	for i := 0; i < 100; i++ {
		got := lib.Select(CategoryOpening, StateFrustrated, nil, rng)
		if !valid[got] {
			t.Fatalf("phrase %q outside the frustrated opening bucket", got)
		}
		if got == "Let's cut to the chase." || got == "We keep going in circles here." || got == "I'll be blunt." {
			sawSpecific = true
		}
	}
	if !sawSpecific {
		t.Fatal("state-specific phrases never selected in 100 draws")
	}
}

func TestSelect_DeterministicWithSeed(t *testing.T) {
	lib := NewPatternLibrary()

	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		pa := lib.Select(CategoryAcknowledgment, StateNeutral, nil, a)
		pb := lib.Select(CategoryAcknowledgment, StateNeutral, nil, b)
		if pa != pb {
			t.Fatalf("draw %d diverged: %q vs %q", i, pa, pb)
		}
	}
}

func TestSelect_EmptyCategoryReturnsEmpty(t *testing.T) {
	lib := NewPatternLibrary()
	if got := lib.Select(PatternCategory("sonnets"), StateNeutral, nil, testRng()); got != "" {
		t.Fatalf("unknown category should return empty, got %q", got)
	}
}

func TestMergePatternYAML_AppendsPhrases(t *testing.T) {
	lib := NewPatternLibrary()
	before := len(lib.Phrases(CategoryOpening, StateSkeptical))

	doc := []byte(`patterns:
  opening:
    skeptical:
      - phrase: "Convince me."
        weight: 2.0
      - phrase: "I'm listening, barely."
`)
	if err := lib.MergePatternYAML(doc); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	after := lib.Phrases(CategoryOpening, StateSkeptical)
	if len(after) != before+2 {
		t.Fatalf("expected %d phrases, got %d", before+2, len(after))
	}
	for _, wp := range after {
		if wp.Phrase == "I'm listening, barely." && wp.Weight != 1.0 {
			t.Fatalf("missing weight should default to 1.0, got %v", wp.Weight)
		}
	}
}

func TestMergePatternYAML_BadDocument(t *testing.T) {
	lib := NewPatternLibrary()
	if err := lib.MergePatternYAML([]byte("patterns: [not a map")); err == nil {
		t.Fatal("expected parse error")
	}
}
