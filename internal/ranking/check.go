package ranking

import (
	"fmt"
	"sort"

	"github.com/meur/tierrank/internal/models"
)

// Report lists the ordering problems found by Check.
type Report struct {
	Violations []string `json:"violations"`
	// Dense is true when positions are exactly 0..N-1.
	Dense bool `json:"dense"`
}

// OK reports whether no invariant is violated. Gaps alone are not a violation.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Check verifies the steady-state invariants: unique tier ranks, one unique
// position per item, and items grouped by tier rank with unassigned last.
func Check(tiers []models.Tier, items []models.Item) Report {
	var r Report

	ranks := make(map[int]string, len(tiers))
	for _, t := range tiers {
		if t.Rank < 0 {
			r.Violations = append(r.Violations, fmt.Sprintf("tier %q has negative rank %d", t.Name, t.Rank))
		}
		if other, dup := ranks[t.Rank]; dup {
			r.Violations = append(r.Violations, fmt.Sprintf("tiers %q and %q share rank %d", other, t.Name, t.Rank))
		}
		ranks[t.Rank] = t.Name
	}

	ordered := append([]models.Tier(nil), tiers...)
	SortTiers(ordered)
	idx := groupIndex(ordered)

	positioned := make([]models.Item, 0, len(items))
	seen := make(map[int]string, len(items))
	for _, it := range items {
		if it.Position == nil {
			r.Violations = append(r.Violations, fmt.Sprintf("item %q has no position", it.Name))
			continue
		}
		if other, dup := seen[*it.Position]; dup {
			r.Violations = append(r.Violations, fmt.Sprintf("items %q and %q share position %d", other, it.Name, *it.Position))
		}
		seen[*it.Position] = it.Name
		positioned = append(positioned, it)
	}
	sort.SliceStable(positioned, func(i, j int) bool { return *positioned[i].Position < *positioned[j].Position })

	last := -1
	r.Dense = len(positioned) == len(items)
	for i, it := range positioned {
		if *it.Position != i {
			r.Dense = false
		}
		g := len(ordered)
		if it.Tier != nil {
			var ok bool
			if g, ok = idx[*it.Tier]; !ok {
				r.Violations = append(r.Violations, fmt.Sprintf("item %q references unknown tier %q", it.Name, *it.Tier))
				continue
			}
		}
		if g < last {
			r.Violations = append(r.Violations, fmt.Sprintf("item %q at position %d is out of tier order", it.Name, *it.Position))
		}
		if g > last {
			last = g
		}
	}
	return r
}
