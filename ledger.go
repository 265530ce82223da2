package dialoguesdk

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ──────────────────────────────────────────────
// Phrase Ledger — per-session repetition accounting
// ──────────────────────────────────────────────

// phraseLedger tracks, per session, how many directive bundles each
// 3+-word phrase has appeared in. Before finalizing a bundle's sample
// phrases, the assembler consults it so that no phrase lands in more than
// capRatio of the bundles produced so far.
//
// Keys are xxhash digests of the normalized phrase; the ledger is hot-path
// state consulted on every selection attempt.
type phraseLedger struct {
	counts   map[uint64]int
	bundles  int
	capRatio float64
}

func newPhraseLedger(capRatio float64) *phraseLedger {
	if capRatio <= 0 || capRatio > 1 {
		capRatio = 0.3
	}
	return &phraseLedger{
		counts:   make(map[uint64]int),
		capRatio: capRatio,
	}
}

// normalizePhrase lowercases and collapses the phrase to its word sequence.
func normalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

func phraseKey(phrase string) uint64 {
	return xxhash.Sum64String(normalizePhrase(phrase))
}

// allows reports whether including the phrase in the next bundle keeps it
// within the cap. Phrases under three words are never capped. The floor of
// one occurrence keeps young sessions from blocking everything.
func (l *phraseLedger) allows(phrase string) bool {
	if wordCount(phrase) < 3 {
		return true
	}
	budget := int(l.capRatio * float64(l.bundles+1))
	if budget < 1 {
		budget = 1
	}
	return l.counts[phraseKey(phrase)]+1 <= budget
}

// commit records one finalized bundle and the phrases it shipped.
func (l *phraseLedger) commit(phrases []string) {
	l.bundles++
	seen := make(map[uint64]bool, len(phrases))
	for _, p := range phrases {
		if wordCount(p) < 3 {
			continue
		}
		k := phraseKey(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		l.counts[k]++
	}
}

// exportCounts serializes the ledger for session snapshots. JSON object
// keys must be strings, so hashes are encoded base-10.
func (l *phraseLedger) exportCounts() map[string]int {
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[strconv.FormatUint(k, 10)] = v
	}
	return out
}

// restoreCounts loads serialized state back into the ledger.
func (l *phraseLedger) restoreCounts(counts map[string]int, bundles int) {
	l.bundles = bundles
	l.counts = make(map[uint64]int, len(counts))
	for k, v := range counts {
		key, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		l.counts[key] = v
	}
}
