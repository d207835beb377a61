package matchup

import (
	"math/rand/v2"

	"pindrome/internal/catalog"
)

// Replacement is the outcome of a single-side replacement. When NeedsRefresh
// is set the cascade found nothing and the caller should rebuild the whole
// matchup instead.
type Replacement struct {
	Machine      catalog.Machine
	Group        catalog.MachineGroup
	NeedsRefresh bool
}

// Replace finds a new machine for one side of an existing matchup, keeping
// the opposite side in place. The normal filter pipeline runs first with the
// kept side's group additionally excluded; when it yields nothing the search
// broadens to the whole pool with category filters dropped (blocklist,
// conversion kits, user exclusions and the kept group still apply). Losing a
// side must never leave the caller stuck, so filter fidelity degrades before
// the cascade gives up entirely.
func Replace(rng *rand.Rand, keepGroupID string, pool []catalog.Machine, groups []catalog.MachineGroup, cats catalog.CategorySet, excluded map[string]bool, overrides catalog.Overrides) Replacement {
	barred := make(map[string]bool, len(excluded)+1)
	for id := range excluded {
		barred[id] = true
	}
	barred[keepGroupID] = true

	survivors := FilterPool(pool, cats, barred, overrides)
	eligible := EligibleGroups(survivors, groups)

	if len(eligible) == 0 {
		// broad search: ignore category filters entirely
		survivors = FilterPool(pool, catalog.NewCategorySet(catalog.CategoryAll), barred, overrides)
		eligible = EligibleGroups(survivors, groups)
		if len(eligible) == 0 {
			return Replacement{NeedsRefresh: true}
		}
	}

	shuffled := append([]catalog.MachineGroup(nil), eligible...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for _, g := range shuffled {
		if rep, ok := PickRepresentative(g.ID, g.Name, survivors); ok {
			return Replacement{Machine: rep, Group: g}
		}
	}
	return Replacement{NeedsRefresh: true}
}
