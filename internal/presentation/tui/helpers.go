package tui

import (
	"slices"

	"github.com/aretw0/weft/pkg/domain"
)

func sortedKeys(tags domain.Tags) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
