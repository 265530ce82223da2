package dialoguesdk

import (
	"strings"
	"unicode"
)

// ──────────────────────────────────────────────
// Text Heuristics — shared rule-based scanning helpers
// ──────────────────────────────────────────────

// Lightweight keyword tables in the same spirit as the emotional tone
// detector: weighted surface matching, no NLP dependency, zero LLM cost.

var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "are": true,
	"was": true, "were": true, "will": true, "with": true, "that": true,
	"this": true, "have": true, "has": true, "had": true, "not": true,
	"you": true, "your": true, "our": true, "out": true, "about": true,
	"can": true, "could": true, "would": true, "should": true, "there": true,
	"what": true, "when": true, "where": true, "how": true, "why": true,
	"all": true, "any": true, "its": true, "it's": true, "into": true,
	"just": true, "than": true, "then": true, "them": true, "they": true,
	"been": true, "being": true, "from": true, "some": true, "more": true,
	"very": true, "way": true, "get": true, "got": true, "lets": true,
	"let's": true, "we'll": true, "i'll": true, "we're": true, "i'm": true,
	"going": true, "think": true, "really": true, "also": true, "make": true,
	"sure": true, "well": true, "yes": true, "okay": true, "here": true,
	"don't": true, "won't": true, "can't": true, "doesn't": true,
}

// commitmentMarkers open first-person future-oriented pledges.
var commitmentMarkers = []string{
	"i'll ", "i will ", "we'll ", "we will ", "i'm going to ",
	"we're going to ", "i am going to ", "we are going to ",
	"i can have ", "we can have ", "i commit ", "we commit ",
	"i promise ", "we promise ", "let me get back ", "i'll make sure ",
}

// negationMarkers flip the polarity of a claim.
var negationMarkers = []string{
	"not ", "n't ", "n't.", "n't,", "no way", "never ", "cannot ",
	"impossible", "unable to", "won't happen", "out of the question",
}

// decisionMarkers signal that a turn carries a decision or agreement.
var decisionMarkers = []string{
	"decided", "decide", "agree", "agreed", "confirm", "confirmed",
	"approve", "approved", "final", "signed off", "green light", "commit",
}

// fulfillmentMarkers signal that a prior pledge has been acted on.
var fulfillmentMarkers = []string{
	"done", "delivered", "finished", "completed", "as promised",
	"sent it", "it's ready", "took care of", "sorted", "shipped",
}

// concernLexicon expands common concern labels into related surface terms,
// so "we'll have it ready by friday" still registers against "timeline".
var concernLexicon = map[string][]string{
	"timeline": {
		"deadline", "schedule", "date", "week", "month", "friday", "monday",
		"tuesday", "wednesday", "thursday", "saturday", "sunday", "quarter",
		"by then", "on time", "delay", "soon", "eta", "ready by", "deliver by",
	},
	"budget": {
		"cost", "price", "pricing", "expensive", "cheap", "afford", "dollar",
		"spend", "spending", "quote", "invoice", "fee", "discount", "money",
	},
	"quality": {
		"defect", "bug", "reliable", "reliability", "testing", "tested",
		"standard", "standards", "polish", "robust", "stable",
	},
	"scope": {
		"feature", "features", "requirement", "requirements", "deliverable",
		"deliverables", "include", "included", "excluded", "phase",
	},
	"security": {
		"encrypt", "encryption", "breach", "compliance", "compliant", "audit",
		"privacy", "vulnerability", "access control", "gdpr", "soc2",
	},
	"support": {
		"maintenance", "sla", "response time", "helpdesk", "on-call",
		"warranty", "training", "onboarding", "documentation",
	},
	"team": {
		"staff", "staffing", "headcount", "engineer", "engineers", "resource",
		"resources", "capacity", "bandwidth", "hire", "hiring",
	},
	"risk": {
		"risky", "contingency", "fallback", "mitigation", "exposure",
		"worst case", "guarantee", "guarantees", "insurance",
	},
}

// tokenize lowercases, strips punctuation (keeping in-word apostrophes),
// and splits into words.
func tokenize(s string) []string {
	lower := strings.ToLower(s)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// contentTerms returns the non-stopword tokens of length >= 3.
func contentTerms(s string) []string {
	var out []string
	for _, tok := range tokenize(s) {
		if len(tok) >= 3 && !stopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

// termSet builds a membership set from contentTerms.
func termSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range contentTerms(s) {
		set[t] = true
	}
	return set
}

// sharedTermCount counts content terms present in both sets.
func sharedTermCount(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}

// containsAny reports whether lower-cased s contains any of the markers.
func containsAny(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// hasDigit reports whether s contains a numeral.
func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// mentionsConcern reports whether the content plausibly touches the concern:
// either the concern's own tokens appear, or any lexicon expansion term does.
func mentionsConcern(content, concern string) bool {
	lower := strings.ToLower(content)
	for _, tok := range tokenize(concern) {
		if len(tok) >= 3 && strings.Contains(lower, tok) {
			return true
		}
	}
	key := strings.ToLower(strings.TrimSpace(concern))
	for _, term := range concernLexicon[key] {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// isNegated reports whether the claim carries a negation marker.
func isNegated(s string) bool {
	lower := strings.ToLower(s)
	if containsAny(lower, negationMarkers) {
		return true
	}
	// Trailing "n't" with no following space (end of sentence).
	return strings.HasSuffix(strings.TrimRight(lower, ".!? "), "n't")
}
