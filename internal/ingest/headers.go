package ingest

import (
	"strings"
)

// DefaultMatchThreshold is the minimum fuzzy score a header needs to be mapped.
const DefaultMatchThreshold = 0.6

// HeaderMapping maps a raw header string to the canonical field it feeds.
// Each field appears at most once; unmatched headers are absent.
type HeaderMapping map[string]Field

// Lookup returns the field mapped for header, if any.
func (m HeaderMapping) Lookup(header string) (Field, bool) {
	f, ok := m[header]
	return f, ok
}

// HasField reports whether any header maps to f.
func (m HeaderMapping) HasField(f Field) bool {
	for _, mapped := range m {
		if mapped == f {
			return true
		}
	}
	return false
}

// Coverage returns the fraction of non-blank headers that were mapped.
func (m HeaderMapping) Coverage(headers []string) float64 {
	total, mapped := 0, 0
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if strings.TrimSpace(h) == "" || seen[h] {
			continue
		}
		seen[h] = true
		total++
		if _, ok := m[h]; ok {
			mapped++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(mapped) / float64(total)
}

// HeaderMapper assigns spreadsheet headers to canonical fields.
type HeaderMapper struct {
	rules     []HeaderRule
	threshold float64
}

// NewHeaderMapper creates a mapper over an ordered rule catalog.
func NewHeaderMapper(rules []HeaderRule, threshold float64) *HeaderMapper {
	return &HeaderMapper{
		rules:     rules,
		threshold: threshold,
	}
}

// DefaultHeaderMapper returns a mapper over DefaultRules.
func DefaultHeaderMapper() *HeaderMapper {
	return NewHeaderMapper(DefaultRules, DefaultMatchThreshold)
}

// MapHeaders maps headers with the default catalog.
func MapHeaders(headers []string) HeaderMapping {
	return DefaultHeaderMapper().Map(headers)
}

// Map builds the mapping for one ingestion.
//
// Direct pattern matches (score 1.0) are assigned first, in header order, so a
// header that matches a rule outright always keeps that field no matter where
// fuzzy candidates appear. Remaining headers then take the best unclaimed rule
// whose similarity to the rule's pattern text exceeds the threshold.
func (hm *HeaderMapper) Map(headers []string) HeaderMapping {
	mapping := make(HeaderMapping, len(headers))
	claimed := make(map[Field]bool, len(hm.rules))

	for _, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		if _, done := mapping[header]; done {
			continue
		}
		for _, rule := range hm.rules {
			if claimed[rule.Field] {
				continue
			}
			if rule.Matches(header) {
				mapping[header] = rule.Field
				claimed[rule.Field] = true
				break
			}
		}
	}

	for _, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		if _, done := mapping[header]; done {
			continue
		}

		lower := strings.ToLower(strings.TrimSpace(header))
		var best Field
		bestScore := hm.threshold
		for _, rule := range hm.rules {
			if claimed[rule.Field] {
				continue
			}
			score := Similarity(lower, strings.ToLower(rule.Pattern.String()))
			if score > bestScore {
				best = rule.Field
				bestScore = score
			}
		}
		if best != "" {
			mapping[header] = best
			claimed[best] = true
		}
	}

	return mapping
}
