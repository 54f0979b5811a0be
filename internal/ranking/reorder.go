package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meur/tierrank/internal/models"
)

// OmittedPolicy decides what a bulk reorder does with existing items the
// caller left out of the list.
type OmittedPolicy string

const (
	// OmitReject fails the reorder, naming the missing items.
	OmitReject OmittedPolicy = "reject"
	// OmitAppendUnassigned detaches missing items and places them after the
	// last listed position, keeping their previous relative order.
	OmitAppendUnassigned OmittedPolicy = "append_unassigned"
)

// Valid reports whether p is a known policy.
func (p OmittedPolicy) Valid() bool {
	return p == OmitReject || p == OmitAppendUnassigned
}

// PlanReorder validates a client-computed ordering against the current tiers
// and items and returns the complete list of assignments to write, sorted by
// position. Every entry must carry a position. Positions may have gaps but
// must be non-negative, unique, and grouped by tier rank with unassigned
// items last.
func PlanReorder(tiers []models.Tier, current []models.Item, req []models.Assignment, policy OmittedPolicy) ([]models.Assignment, error) {
	ordered := append([]models.Tier(nil), tiers...)
	SortTiers(ordered)
	idx := groupIndex(ordered)

	known := make(map[string]models.Item, len(current))
	for _, it := range current {
		known[it.Name] = it
	}

	seenItem := make(map[string]int, len(req))
	seenPos := make(map[int]string, len(req))
	plan := make([]models.Assignment, 0, len(current))
	maxPos := -1
	for k, a := range req {
		field := fmt.Sprintf("assignments[%d]", k)
		if _, ok := known[a.Item]; !ok {
			return nil, Invalid(field+".item", "unknown item %q", a.Item)
		}
		if a.Tier != nil {
			if _, ok := idx[*a.Tier]; !ok {
				return nil, Invalid(field+".tier", "unknown tier %q", *a.Tier)
			}
		}
		if a.Position == nil {
			return nil, Invalid(field+".position", "missing")
		}
		pos := *a.Position
		if pos < 0 {
			return nil, Invalid(field+".position", "negative position %d", pos)
		}
		if prev, dup := seenItem[a.Item]; dup {
			return nil, Invalid(field+".item", "item %q already listed at assignments[%d]", a.Item, prev)
		}
		if other, dup := seenPos[pos]; dup {
			return nil, Invalid(field+".position", "position %d already taken by %q", pos, other)
		}
		seenItem[a.Item] = k
		seenPos[pos] = a.Item
		if pos > maxPos {
			maxPos = pos
		}
		plan = append(plan, a)
	}

	var omitted []models.Item
	for _, it := range current {
		if _, ok := seenItem[it.Name]; !ok {
			omitted = append(omitted, it)
		}
	}
	if len(omitted) > 0 {
		switch policy {
		case OmitAppendUnassigned:
			// Previous order of the omitted items, ignoring their old tier.
			sort.SliceStable(omitted, func(i, j int) bool { return lessInGroup(omitted[i], omitted[j]) })
			for _, it := range omitted {
				maxPos++
				plan = append(plan, models.Assignment{Item: it.Name, Position: models.IntPtr(maxPos)})
			}
		default:
			names := make([]string, 0, len(omitted))
			for _, it := range omitted {
				names = append(names, it.Name)
			}
			sort.Strings(names)
			return nil, Invalid("assignments", "missing items: %s", strings.Join(names, ", "))
		}
	}

	sort.Slice(plan, func(i, j int) bool { return *plan[i].Position < *plan[j].Position })

	last := -1
	for _, a := range plan {
		g := len(ordered)
		if a.Tier != nil {
			g = idx[*a.Tier]
		}
		if g < last {
			return nil, Invalid("assignments", "item %q at position %d is out of tier order", a.Item, *a.Position)
		}
		last = g
	}
	return plan, nil
}

// DeletePolicy decides what deleting a tier does to the items that still
// reference it.
type DeletePolicy string

const (
	// DeleteReject refuses to delete a tier that is in use.
	DeleteReject DeletePolicy = "reject"
	// DeleteDetach moves the tier's items to the end of the unassigned lane.
	DeleteDetach DeletePolicy = "detach"
)

// Valid reports whether p is a known policy.
func (p DeletePolicy) Valid() bool {
	return p == DeleteReject || p == DeleteDetach
}
