package ranking

import "github.com/meur/tierrank/internal/models"

// SwapSentinel is the rank a tier holds while it trades places with its
// neighbour. Legal ranks are never negative.
const SwapSentinel = -1

// Adjacent finds the tier named name and the tier immediately above (Up) or
// below (Down) it by rank. ok is false when the tier already sits at that
// boundary.
func Adjacent(tiers []models.Tier, name string, dir models.Direction) (target, neighbour models.Tier, ok bool, err error) {
	if !dir.Valid() {
		return target, neighbour, false, Invalid("direction", "%q is not up or down", dir)
	}
	ordered := append([]models.Tier(nil), tiers...)
	SortTiers(ordered)

	at := -1
	for i, t := range ordered {
		if t.Name == name {
			at = i
			break
		}
	}
	if at < 0 {
		return target, neighbour, false, NotFound("tier", name)
	}
	target = ordered[at]

	next := at - 1
	if dir == models.Down {
		next = at + 1
	}
	if next < 0 || next >= len(ordered) {
		return target, neighbour, false, nil
	}
	return target, ordered[next], true, nil
}

// NextRank is the rank given to a newly created tier.
func NextRank(tiers []models.Tier) int {
	next := 0
	for _, t := range tiers {
		if t.Rank+1 > next {
			next = t.Rank + 1
		}
	}
	return next
}
