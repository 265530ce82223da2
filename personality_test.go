package dialoguesdk

import (
	"reflect"
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Personality Engine tests
// ══════════════════════════════════════════════

func TestDerive_UnrecognizedTagFallsBackToBalanced(t *testing.T) {
	unknown := []string{"martian", "", "DIRECTOR", "aggressive", "  "}
	for _, raw := range unknown {
		got := DerivePersonality(StakeholderProfile{PersonalityTag: raw, Concerns: []string{"timeline"}})
		want := DerivePersonality(StakeholderProfile{PersonalityTag: "balanced", Concerns: []string{"timeline"}})
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("tag %q: expected balanced-profile output, got %+v", raw, got)
		}
	}
}

func TestDerive_EveryRecognizedTagHasContent(t *testing.T) {
	tags := []string{"direct", "collaborative", "analytical", "creative", "supportive", "skeptical", "balanced"}
	for _, tag := range tags {
		lp := DerivePersonality(StakeholderProfile{PersonalityTag: tag})
		if len(lp.Instructions) == 0 {
			t.Fatalf("tag %q: no instructions", tag)
		}
		if len(lp.SamplePhrases) == 0 {
			t.Fatalf("tag %q: no sample phrases", tag)
		}
	}
}

func TestDerive_TagNormalization(t *testing.T) {
	a := DerivePersonality(StakeholderProfile{PersonalityTag: "Direct"})
	b := DerivePersonality(StakeholderProfile{PersonalityTag: " direct "})
	c := DerivePersonality(StakeholderProfile{PersonalityTag: "direct"})
	if !reflect.DeepEqual(a, c) || !reflect.DeepEqual(b, c) {
		t.Fatal("tag parsing should be case- and whitespace-insensitive")
	}
}

func TestDerive_CommunicationStyleOverridesDefaults(t *testing.T) {
	base := DerivePersonality(StakeholderProfile{PersonalityTag: "direct"})
	refined := DerivePersonality(StakeholderProfile{
		PersonalityTag: "direct",
		CommunicationStyle: &CommunicationStyle{
			Formality: LevelHigh,
		},
	})

	if reflect.DeepEqual(base, refined) {
		t.Fatal("style refinement should change the instruction set")
	}
	if !containsInstruction(refined.Instructions, "formal register") {
		t.Fatalf("expected formal-register instruction, got %v", refined.Instructions)
	}
	// Unset fields keep the tag default: direct stays blunt.
	if !containsInstruction(refined.Instructions, "blunt") {
		t.Fatalf("directness default should survive partial style override: %v", refined.Instructions)
	}
}

func TestDerive_SpeechPatternsRefine(t *testing.T) {
	lp := DerivePersonality(StakeholderProfile{
		PersonalityTag: "supportive",
		SpeechPatterns: &SpeechPatterns{
			AverageSentenceLength: 12,
			UsesIdioms:            true,
			ThinkingPauses:        true,
		},
	})
	if !containsInstruction(lp.Instructions, "idiom") {
		t.Fatalf("expected idiom instruction, got %v", lp.Instructions)
	}
	if !containsInstruction(lp.Instructions, "12 words") {
		t.Fatalf("expected sentence-length instruction, got %v", lp.Instructions)
	}
	if !containsInstruction(lp.Instructions, "thinking markers") {
		t.Fatalf("expected thinking-pause instruction, got %v", lp.Instructions)
	}
}

func TestDerive_PureAndRepeatable(t *testing.T) {
	p := StakeholderProfile{PersonalityTag: "analytical", Concerns: []string{"budget", "quality"}}
	first := DerivePersonality(p)
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(DerivePersonality(p), first) {
			t.Fatal("derivation must be deterministic per profile value")
		}
	}
}

func TestSamplingFor_UnknownTagGetsBalancedPreset(t *testing.T) {
	if SamplingFor("martian") != SamplingFor("balanced") {
		t.Fatal("unknown tag should use the balanced sampling preset")
	}
	if SamplingFor("creative").Temperature <= SamplingFor("analytical").Temperature {
		t.Fatal("creative should sample hotter than analytical")
	}
}

func containsInstruction(instructions []string, fragment string) bool {
	for _, ins := range instructions {
		if strings.Contains(strings.ToLower(ins), strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
