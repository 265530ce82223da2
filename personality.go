package dialoguesdk

import "fmt"

// ──────────────────────────────────────────────
// Personality Engine — tag → language instruction mapping
// ──────────────────────────────────────────────

// LanguageProfile is the personality engine's output: generation
// instructions plus characteristic phrases. Pure per profile value, so the
// engine caches it by profile fingerprint.
type LanguageProfile struct {
	Instructions  []string `json:"instructions"`
	SamplePhrases []string `json:"sample_phrases"`
}

// personalityTemplate bundles the per-tag defaults.
type personalityTemplate struct {
	instructions  []string
	samplePhrases []string
	style         CommunicationStyle // tag defaults, used for absent fields
}

// personalityTable is the closed mapping. Append-only refinement on top:
// communication style and speech patterns add instructions, never replace.
var personalityTable = map[PersonalityTag]personalityTemplate{
	TagDirect: {
		instructions: []string{
			"Prefer short sentences, minimal hedging, assertive verbs.",
			"State positions first, reasons second.",
			"Skip pleasantries once the conversation is underway.",
		},
		samplePhrases: []string{
			"Bottom line:",
			"Here's where I stand.",
			"Give it to me straight.",
		},
		style: CommunicationStyle{
			Directness:              LevelHigh,
			Formality:               LevelLow,
			EmotionalExpressiveness: LevelModerate,
			QuestioningStyle:        QuestioningDirect,
		},
	},
	TagCollaborative: {
		instructions: []string{
			"Use inclusive language: 'we', 'together', 'let's'.",
			"Invite input before settling a point.",
			"Frame disagreement as joint problem-solving.",
		},
		samplePhrases: []string{
			"How do we make this work for both of us?",
			"Let's build on that.",
			"What would you need from me?",
		},
		style: CommunicationStyle{
			Directness:              LevelModerate,
			Formality:               LevelModerate,
			EmotionalExpressiveness: LevelHigh,
			QuestioningStyle:        QuestioningExploratory,
		},
	},
	TagAnalytical: {
		instructions: []string{
			"Ask for numbers, evidence, and concrete definitions.",
			"Break claims into parts before responding.",
			"Prefer precise, qualified statements over broad ones.",
		},
		samplePhrases: []string{
			"What does the data say?",
			"Let's define what success looks like here.",
			"Walk me through the assumptions.",
		},
		style: CommunicationStyle{
			Directness:              LevelModerate,
			Formality:               LevelHigh,
			EmotionalExpressiveness: LevelLow,
			QuestioningStyle:        QuestioningChallenging,
		},
	},
	TagCreative: {
		instructions: []string{
			"Reach for analogies and unexpected comparisons.",
			"Explore tangents briefly before returning to the point.",
			"Favor vivid, informal language over business-speak.",
		},
		samplePhrases: []string{
			"Here's a different angle on it.",
			"Picture it this way.",
			"What if we flipped that around?",
		},
		style: CommunicationStyle{
			Directness:              LevelModerate,
			Formality:               LevelLow,
			EmotionalExpressiveness: LevelHigh,
			QuestioningStyle:        QuestioningExploratory,
		},
	},
	TagSupportive: {
		instructions: []string{
			"Acknowledge effort and intent before critiquing.",
			"Soften objections with encouragement.",
			"Check in on how the other side is feeling about the discussion.",
		},
		samplePhrases: []string{
			"I can see the work behind this.",
			"We'll figure it out.",
			"That's a reasonable place to start.",
		},
		style: CommunicationStyle{
			Directness:              LevelLow,
			Formality:               LevelModerate,
			EmotionalExpressiveness: LevelHigh,
			QuestioningStyle:        QuestioningExploratory,
		},
	},
	TagSkeptical: {
		instructions: []string{
			"Probe weak points; ask for proof before accepting claims.",
			"Reference past disappointments and unmet promises.",
			"Agree slowly and conditionally.",
		},
		samplePhrases: []string{
			"I've heard that before.",
			"What happens when that slips?",
			"Show me, don't tell me.",
		},
		style: CommunicationStyle{
			Directness:              LevelHigh,
			Formality:               LevelModerate,
			EmotionalExpressiveness: LevelLow,
			QuestioningStyle:        QuestioningChallenging,
		},
	},
	TagBalanced: {
		instructions: []string{
			"Keep a moderate, even-handed tone.",
			"Mix questions and statements in roughly equal measure.",
			"Stay professional without being stiff.",
		},
		samplePhrases: []string{
			"That seems reasonable.",
			"Help me understand this part.",
			"Let's take it step by step.",
		},
		style: CommunicationStyle{
			Directness:              LevelModerate,
			Formality:               LevelModerate,
			EmotionalExpressiveness: LevelModerate,
			QuestioningStyle:        QuestioningExploratory,
		},
	},
}

// DerivePersonality maps a stakeholder profile to language instructions and
// sample phrases. Unrecognized personality tags silently resolve to the
// balanced template; that is a designed fallback, not an error path.
func DerivePersonality(profile StakeholderProfile) LanguageProfile {
	tag, _ := ParsePersonalityTag(profile.PersonalityTag)
	tpl := personalityTable[tag]

	out := LanguageProfile{
		Instructions:  append([]string{}, tpl.instructions...),
		SamplePhrases: append([]string{}, tpl.samplePhrases...),
	}

	style := tpl.style
	if cs := profile.CommunicationStyle; cs != nil {
		if cs.Directness != "" {
			style.Directness = cs.Directness
		}
		if cs.Formality != "" {
			style.Formality = cs.Formality
		}
		if cs.EmotionalExpressiveness != "" {
			style.EmotionalExpressiveness = cs.EmotionalExpressiveness
		}
		if cs.QuestioningStyle != "" {
			style.QuestioningStyle = cs.QuestioningStyle
		}
	}
	out.Instructions = append(out.Instructions, styleInstructions(style)...)

	if sp := profile.SpeechPatterns; sp != nil {
		out.Instructions = append(out.Instructions, speechInstructions(sp)...)
	}

	return out
}

// styleInstructions renders the resolved communication style as guidance.
func styleInstructions(style CommunicationStyle) []string {
	var out []string
	switch style.Directness {
	case LevelHigh:
		out = append(out, "Be blunt; say what you mean on the first pass.")
	case LevelLow:
		out = append(out, "Approach disagreements sideways; hint before stating.")
	}
	switch style.Formality {
	case LevelHigh:
		out = append(out, "Keep a formal register; avoid slang and contractions.")
	case LevelLow:
		out = append(out, "Keep it conversational; contractions and casual asides are fine.")
	}
	switch style.EmotionalExpressiveness {
	case LevelHigh:
		out = append(out, "Let feelings show in word choice and emphasis.")
	case LevelLow:
		out = append(out, "Keep emotional language to a minimum; stay matter-of-fact.")
	}
	switch style.QuestioningStyle {
	case QuestioningDirect:
		out = append(out, "Ask pointed yes/no questions.")
	case QuestioningExploratory:
		out = append(out, "Ask open-ended questions that widen the discussion.")
	case QuestioningChallenging:
		out = append(out, "Ask questions that test the other side's claims.")
	}
	return out
}

// speechInstructions renders optional speech patterns as guidance.
func speechInstructions(sp *SpeechPatterns) []string {
	var out []string
	if sp.AverageSentenceLength > 0 {
		out = append(out, fmt.Sprintf("Aim for sentences around %d words long.", sp.AverageSentenceLength))
	}
	if sp.UsesIdioms {
		out = append(out, "Work a business idiom into replies now and then.")
	}
	if sp.UsesHumor {
		out = append(out, "Allow an occasional dry joke or wry remark.")
	}
	if sp.ThinkingPauses {
		out = append(out, "Use thinking markers ('hmm', 'let me see') before weighing in.")
	}
	return out
}
