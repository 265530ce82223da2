package dialoguesdk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Pattern File — YAML overlay for the built-in phrase pool
// ──────────────────────────────────────────────

// patternFile is the on-disk overlay format:
//
//	patterns:
//	  opening:
//	    skeptical:
//	      - phrase: "Convince me."
//	        weight: 1.0
type patternFile struct {
	Patterns map[string]map[string][]WeightedPhrase `yaml:"patterns"`
}

// LoadPatternFile merges phrases from a YAML file over the library's
// built-in pool. Loaded phrases are appended to their bucket; existing
// phrases are never removed. Phrases with weight <= 0 default to 1.0.
func (l *PatternLibrary) LoadPatternFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read pattern file: %w", err)
	}
	return l.MergePatternYAML(data)
}

// MergePatternYAML merges an in-memory YAML document, see LoadPatternFile.
func (l *PatternLibrary) MergePatternYAML(data []byte) error {
	var doc patternFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse pattern file: %w", err)
	}

	for cat, states := range doc.Patterns {
		category := PatternCategory(cat)
		if l.buckets[category] == nil {
			l.buckets[category] = make(map[StateLabel][]WeightedPhrase)
		}
		for st, phrases := range states {
			state := StateLabel(st)
			for _, wp := range phrases {
				if wp.Phrase == "" {
					continue
				}
				if wp.Weight <= 0 {
					wp.Weight = 1.0
				}
				l.buckets[category][state] = append(l.buckets[category][state], wp)
			}
		}
	}
	return nil
}
