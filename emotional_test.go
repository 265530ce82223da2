package dialoguesdk

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// ══════════════════════════════════════════════
// Emotional State Tracker tests
// ══════════════════════════════════════════════

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func userTurn(index int, content string) Turn {
	return Turn{Speaker: SpeakerUser, Content: content, Index: index, Timestamp: time.Now()}
}

func stakeholderTurn(index int, content string) Turn {
	return Turn{Speaker: SpeakerStakeholder, Content: content, Index: index, Timestamp: time.Now()}
}

func TestAnalyze_TimelineConcernScenario(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"timeline"})

	next := tracker.Analyze(state, []Turn{
		userTurn(0, "We'll have it ready by next Friday, no doubt."),
	})

	if next.Current != StateCurious && next.Current != StateWarmingUp {
		t.Fatalf("expected curious or warming_up, got %s", next.Current)
	}
	if len(next.ConcernsAddressed) != 1 || next.ConcernsAddressed[0] != "timeline" {
		t.Fatalf("timeline should be addressed, got %v", next.ConcernsAddressed)
	}
	if len(next.ConcernsUnaddressed) != 0 {
		t.Fatalf("no concerns should remain, got %v", next.ConcernsUnaddressed)
	}
}

func TestAnalyze_PositiveFromSkepticalNeverDeclines(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"budget"})
	state.Current = StateSkeptical
	state.Intensity = 0.5

	next := tracker.Analyze(state, []Turn{
		userTurn(0, "I'll send the full cost breakdown today, it comes in at 40k, well under what we discussed."),
	})

	if next.Current == StateFrustrated || next.Current == StateConcerned {
		t.Fatalf("positive signal from skeptical must not decline, got %s", next.Current)
	}
	if next.Current != StateCurious && next.Current != StateWarmingUp {
		t.Fatalf("expected curious or warming_up, got %s", next.Current)
	}
}

func TestAnalyze_ConcernPartitionInvariant(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	concerns := []string{"timeline", "budget", "quality"}
	state := NewEmotionalState(concerns)

	turns := []string{
		"Hello there.",
		"We'll deliver by Friday the 12th.",
		"Hmm, maybe.",
		"The cost is 30k total, I'll confirm the invoice this week.",
		"Our testing process is solid, we agreed on full regression coverage.",
		"Right.",
	}
	for i, content := range turns {
		state = tracker.Analyze(state, []Turn{userTurn(i, content)})

		seen := make(map[string]int)
		for _, c := range state.ConcernsAddressed {
			seen[c]++
		}
		for _, c := range state.ConcernsUnaddressed {
			seen[c]++
		}
		if len(seen) != len(concerns) {
			t.Fatalf("turn %d: partition lost concerns: %v", i, seen)
		}
		for c, n := range seen {
			if n != 1 {
				t.Fatalf("turn %d: concern %q appears %d times", i, c, n)
			}
		}
	}
}

func TestAnalyze_EmptyTailHoldsState(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"timeline"})
	state.Current = StateCurious
	state.Intensity = 0.6

	for _, tail := range [][]Turn{
		nil,
		{},
		{stakeholderTurn(0, "So, where were we?")},
		{userTurn(1, "")},
	} {
		next := tracker.Analyze(state, tail)
		if next.Current != StateCurious || next.Intensity != 0.6 {
			t.Fatalf("state must hold on unanalyzable input, got %s/%v", next.Current, next.Intensity)
		}
	}
}

func TestAnalyze_DoesNotMutateInput(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	prior := NewEmotionalState([]string{"timeline"})

	_ = tracker.Analyze(prior, []Turn{userTurn(0, "We'll have it done by Friday, confirmed.")})

	if prior.Current != StateNeutral || len(prior.ConcernsUnaddressed) != 1 {
		t.Fatal("Analyze must not mutate the prior state")
	}
}

func TestAnalyze_VagueTurnsDecline(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"timeline"})

	state = tracker.Analyze(state, []Turn{userTurn(0, "Yeah, sure, whatever works.")})
	state = tracker.Analyze(state, []Turn{userTurn(1, "We'll see.")})

	if !negativeStates[state.Current] {
		t.Fatalf("two vague turns should land in a negative state, got %s", state.Current)
	}
	if state.Trajectory != TrajectoryDeclining {
		t.Fatalf("expected declining trajectory, got %s", state.Trajectory)
	}
}

func TestAnalyze_SatisfiedRequiresAllConcernsAddressed(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"timeline", "budget"})
	state.Current = StateWarmingUp
	state.Intensity = 0.55

	// Strong turn addressing only the timeline: budget still open, so
	// satisfied is off the table.
	next := tracker.Analyze(state, []Turn{
		userTurn(0, "I'll personally make sure the schedule holds: delivery lands on March 3rd, we agreed the milestones last week and I will walk you through each one."),
	})
	if next.Current == StateSatisfied {
		t.Fatal("satisfied must be gated on all concerns addressed")
	}

	// Now the budget lands too.
	next = tracker.Analyze(next, []Turn{
		userTurn(1, "And on budget: the total cost is 42k fixed, I'll sign the cap into the contract today so there is zero overrun risk for your team."),
	})
	if next.Current != StateSatisfied {
		t.Fatalf("strong positive with everything addressed should satisfy, got %s", next.Current)
	}
}

func TestAnalyze_IntensityStaysClamped(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"timeline"})
	state.Intensity = 0.95
	state.Current = StateFrustrated

	for i := 0; i < 10; i++ {
		state = tracker.Analyze(state, []Turn{userTurn(i, "Hmm.")})
		if state.Intensity < 0 || state.Intensity > 1 {
			t.Fatalf("intensity out of range: %v", state.Intensity)
		}
	}
}

func TestAnalyze_TrajectoryImproving(t *testing.T) {
	tracker := NewEmotionalTracker(quietLogger())
	state := NewEmotionalState([]string{"timeline", "budget"})
	state.Current = StateSkeptical

	state = tracker.Analyze(state, []Turn{userTurn(0, "We'll hit the deadline, delivery is set for Friday the 9th.")})
	state = tracker.Analyze(state, []Turn{userTurn(1, "And I'll cap the cost at 25k, confirmed with finance.")})

	if state.Trajectory != TrajectoryImproving {
		t.Fatalf("two positive moves should read improving, got %s", state.Trajectory)
	}
}

func TestGetStateInstructions_KnownAndUnknown(t *testing.T) {
	if len(GetStateInstructions(StateFrustrated)) == 0 {
		t.Fatal("frustrated must have instructions")
	}
	unknown := GetStateInstructions(StateLabel("giddy"))
	neutral := GetStateInstructions(StateNeutral)
	if len(unknown) != len(neutral) {
		t.Fatal("unknown state should fall back to neutral instructions")
	}
}
