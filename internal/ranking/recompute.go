package ranking

import (
	"sort"

	"github.com/meur/tierrank/internal/models"
)

// SortTiers orders tiers by ascending rank in place.
func SortTiers(tiers []models.Tier) {
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Rank < tiers[j].Rank })
}

// groupIndex maps a tier name to its lane index; unassigned is last.
func groupIndex(tiers []models.Tier) map[string]int {
	idx := make(map[string]int, len(tiers))
	for i, t := range tiers {
		idx[t.Name] = i
	}
	return idx
}

// Sequence rebuilds the global ordering. Items are grouped by tier in rank
// order with the unassigned lane last; inside a group the current position
// order is kept. Items without a position follow the positioned ones of their
// group, by name. The returned items carry dense positions 0..N-1.
//
// Items referencing a tier missing from tiers are treated as unassigned.
func Sequence(tiers []models.Tier, items []models.Item) []models.Item {
	ordered := append([]models.Tier(nil), tiers...)
	SortTiers(ordered)
	idx := groupIndex(ordered)

	lanes := make([][]models.Item, len(ordered)+1)
	for _, it := range items {
		lane := len(ordered)
		if it.Tier != nil {
			if i, ok := idx[*it.Tier]; ok {
				lane = i
			}
		}
		lanes[lane] = append(lanes[lane], it)
	}

	out := make([]models.Item, 0, len(items))
	for _, lane := range lanes {
		sort.SliceStable(lane, func(i, j int) bool { return lessInGroup(lane[i], lane[j]) })
		for _, it := range lane {
			pos := len(out)
			it.Position = &pos
			out = append(out, it)
		}
	}
	return out
}

func lessInGroup(a, b models.Item) bool {
	switch {
	case a.Position != nil && b.Position != nil:
		if *a.Position != *b.Position {
			return *a.Position < *b.Position
		}
	case a.Position != nil:
		return true
	case b.Position != nil:
		return false
	}
	return a.Name < b.Name
}

// Lanes splits items (already in position order) into the board layout.
func Lanes(tiers []models.Tier, items []models.Item) []models.Lane {
	ordered := append([]models.Tier(nil), tiers...)
	SortTiers(ordered)
	idx := groupIndex(ordered)

	lanes := make([]models.Lane, len(ordered)+1)
	for i := range ordered {
		lanes[i].Tier = &ordered[i]
		lanes[i].Items = []models.Item{}
	}
	lanes[len(ordered)].Items = []models.Item{}
	for _, it := range items {
		lane := len(ordered)
		if it.Tier != nil {
			if i, ok := idx[*it.Tier]; ok {
				lane = i
			}
		}
		lanes[lane].Items = append(lanes[lane].Items, it)
	}
	return lanes
}
