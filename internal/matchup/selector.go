package matchup

import (
	"math/rand/v2"

	"pindrome/internal/catalog"
)

// Matchup is the ephemeral pair presented for comparison. Never persisted.
type Matchup struct {
	Machines [2]catalog.Machine     `json:"machines"`
	Groups   [2]catalog.MachineGroup `json:"groups"`
}

// FilterPool applies the selection pipeline to the full machine pool:
// blocklisted manufacturers out, conversion kits out, then, unless the
// category set is unrestricted, only machines whose effective category is
// selected, then user-excluded groups out. Sibling lookups for category
// resolution run against the original pool, so a variant without display
// data is not orphaned by earlier filter stages.
func FilterPool(pool []catalog.Machine, cats catalog.CategorySet, excluded map[string]bool, overrides catalog.Overrides) []catalog.Machine {
	var out []catalog.Machine
	for _, m := range pool {
		if m.ManufacturerBlocked() || m.IsConversionKit() {
			continue
		}
		if !cats.Unrestricted() {
			c, ok := catalog.EffectiveCategory(m, pool, overrides)
			if !ok || !cats[c] {
				continue
			}
		}
		if excluded[m.GroupID()] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// EligibleGroups intersects the known group list with the groups that still
// have at least one surviving machine, preserving list order.
func EligibleGroups(survivors []catalog.Machine, groups []catalog.MachineGroup) []catalog.MachineGroup {
	surviving := make(map[string]bool, len(survivors))
	for _, m := range survivors {
		surviving[m.GroupID()] = true
	}
	var out []catalog.MachineGroup
	for _, g := range groups {
		if surviving[g.ID] {
			out = append(out, g)
		}
	}
	return out
}

// Select assembles a matchup of two distinct groups drawn uniformly at
// random from the eligible pool, each resolved to its representative
// variant. Returns false when fewer than two groups can be filled; the
// caller treats that as "no matchup available", not an error.
func Select(rng *rand.Rand, pool []catalog.Machine, groups []catalog.MachineGroup, cats catalog.CategorySet, excluded map[string]bool, overrides catalog.Overrides) (Matchup, bool) {
	survivors := FilterPool(pool, cats, excluded, overrides)
	eligible := EligibleGroups(survivors, groups)
	if len(eligible) < 2 {
		return Matchup{}, false
	}

	shuffled := append([]catalog.MachineGroup(nil), eligible...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var m Matchup
	filled := 0
	for _, g := range shuffled {
		rep, ok := PickRepresentative(g.ID, g.Name, survivors)
		if !ok {
			continue
		}
		m.Machines[filled] = rep
		m.Groups[filled] = g
		filled++
		if filled == 2 {
			return m, true
		}
	}
	return Matchup{}, false
}
