package ingest

import (
	"regexp"
	"sort"

	"github.com/stwalsh4118/estatedesk/internal/models"
)

var bedroomKeyPattern = regexp.MustCompile(`(?i)bed|bhk|\bbr\b|type|config|layout|typology`)

// InferBedrooms re-derives a bedroom count from open field maps for units
// persisted without one. Keys that look bedroom-related are tried first
// (any value format); then every textual value is scanned for a bedroom
// pattern, ignoring purely numeric values such as prices and areas.
func InferBedrooms(sources ...models.JSONMap) *int {
	for _, m := range sources {
		for _, key := range sortedKeys(m) {
			if !bedroomKeyPattern.MatchString(key) {
				continue
			}
			if n := NormalizeBedrooms(cellString(m[key])); n != nil {
				return n
			}
		}
	}

	for _, m := range sources {
		for _, key := range sortedKeys(m) {
			text := cellString(m[key])
			if text == "" || isNumericText(text) {
				continue
			}
			if n := NormalizeBedrooms(text); n != nil {
				return n
			}
		}
	}

	return nil
}

func sortedKeys(m models.JSONMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
