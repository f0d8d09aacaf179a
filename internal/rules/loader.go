package rules

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// overlayFile is the on-disk format for rule overlay files. Every section
// is additive: overlay patterns and keywords are appended after the
// built-in ones, never replacing them.
type overlayFile struct {
	Intents         map[Intent][]string     `yaml:"intents"`
	Entities        map[EntityKind][]string `yaml:"entities"`
	Sentiment       map[Sentiment][]string  `yaml:"sentiment"`
	Locations       []string                `yaml:"locations"`
	ProblemKeywords []string                `yaml:"problem_keywords"`
}

// LoadOverlays resolves the given doublestar glob patterns to YAML rule
// files and returns a copy of the catalog with their contents appended.
// Files are applied in lexical path order so overlay application is
// deterministic regardless of glob expansion order.
func (c *Catalog) LoadOverlays(globs ...string) (*Catalog, error) {
	var paths []string
	for _, g := range globs {
		matches, err := doublestar.FilepathGlob(g)
		if err != nil {
			return nil, fmt.Errorf("resolving rule glob %q: %w", g, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	// Overlapping globs may resolve the same file twice; apply each once.
	paths = slices.Compact(paths)

	merged := c.clone()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading rule file %s: %w", path, err)
		}

		var overlay overlayFile
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
		}

		merged.apply(&overlay)
	}

	return merged, nil
}

func (c *Catalog) clone() *Catalog {
	out := &Catalog{
		IntentPatterns:      make(map[Intent][]string, len(c.IntentPatterns)),
		EntityPatterns:      make(map[EntityKind][]string, len(c.EntityPatterns)),
		SentimentKeywords:   make(map[Sentiment][]string, len(c.SentimentKeywords)),
		Locations:           append([]string(nil), c.Locations...),
		ProblemKeywords:     append([]string(nil), c.ProblemKeywords...),
		TimeCluePatterns:    append([]string(nil), c.TimeCluePatterns...),
		QuantityCluePattern: c.QuantityCluePattern,
	}
	for k, v := range c.IntentPatterns {
		out.IntentPatterns[k] = append([]string(nil), v...)
	}
	for k, v := range c.EntityPatterns {
		out.EntityPatterns[k] = append([]string(nil), v...)
	}
	for k, v := range c.SentimentKeywords {
		out.SentimentKeywords[k] = append([]string(nil), v...)
	}
	return out
}

func (c *Catalog) apply(o *overlayFile) {
	for intent, patterns := range o.Intents {
		c.IntentPatterns[intent] = append(c.IntentPatterns[intent], patterns...)
	}
	for kind, patterns := range o.Entities {
		c.EntityPatterns[kind] = append(c.EntityPatterns[kind], patterns...)
	}
	for sentiment, words := range o.Sentiment {
		c.SentimentKeywords[sentiment] = append(c.SentimentKeywords[sentiment], words...)
	}
	c.Locations = append(c.Locations, o.Locations...)
	c.ProblemKeywords = append(c.ProblemKeywords, o.ProblemKeywords...)
}
