// Package matchup implements the selection core: picking a representative
// variant for a group, assembling a two-sided matchup from the filtered
// pool, and replacing a single side with a fallback cascade.
package matchup

import (
	"sort"
	"strings"

	"pindrome/internal/catalog"
)

// PickRepresentative deterministically picks the single best variant of a
// group from the candidate pool. Returns false when the group has no
// non-conversion-kit member in the pool.
//
// The pick is biased toward the variant whose normalized name matches the
// group name, toward Premium over Pro editions, and toward variants with a
// usable image; ties resolve in pool order.
func PickRepresentative(groupID, groupName string, pool []catalog.Machine) (catalog.Machine, bool) {
	var members []catalog.Machine
	for _, m := range pool {
		if m.GroupID() == groupID && !m.IsConversionKit() {
			members = append(members, m)
		}
	}
	if len(members) == 0 {
		return catalog.Machine{}, false
	}

	wantName := catalog.NormalizeName(groupName)

	// the best name match fixes the canonical manufacturer
	best := 0
	for i, m := range members {
		if nameScore(m, wantName) > nameScore(members[best], wantName) {
			best = i
		}
	}
	manufacturer := members[best].Manufacturer

	var candidates []catalog.Machine
	for _, m := range members {
		if m.Manufacturer == manufacturer {
			candidates = append(candidates, m)
		}
	}

	scores := make(map[string]int, len(candidates))
	for _, m := range candidates {
		scores[m.ID] = compositeScore(m, wantName)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].ID] > scores[candidates[j].ID]
	})

	// among equally plausible variants, one we can actually show wins
	for _, m := range candidates {
		if _, ok := m.UsableImage(); ok {
			return m, true
		}
	}
	return candidates[0], true
}

func nameScore(m catalog.Machine, wantName string) int {
	if wantName == "" {
		return 0
	}
	name := catalog.NormalizeName(m.Name)
	switch {
	case name == wantName:
		return 2
	case name != "" && (strings.Contains(name, wantName) || strings.Contains(wantName, name)):
		return 1
	default:
		return 0
	}
}

func compositeScore(m catalog.Machine, wantName string) int {
	score := 0
	switch nameScore(m, wantName) {
	case 2:
		score += 5
	case 1:
		score += 3
	}
	if m.HasFeature("premium") {
		score += 2
	} else if m.HasFeature("pro edition") {
		score++
	}
	if _, ok := m.UsableImage(); ok {
		score++
	}
	return score
}
