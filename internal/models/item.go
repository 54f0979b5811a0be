package models

// Item represents a game that can be ranked in a tier
type Item struct {
	Name     string  `json:"name" yaml:"name"`
	Tier     *string `json:"tier" yaml:"tier,omitempty"`         // nil = unassigned
	Position *int    `json:"position" yaml:"position,omitempty"` // nil only inside a transaction
}

// Unassigned reports whether the item has no tier
func (i Item) Unassigned() bool {
	return i.Tier == nil
}

// ItemCreate is the request body for creating an item
type ItemCreate struct {
	Name string  `json:"name" yaml:"name"`
	Tier *string `json:"tier,omitempty" yaml:"tier,omitempty"`
}

// ItemAssign is the request body for moving an item to another tier
type ItemAssign struct {
	Tier *string `json:"tier"`
}

// Assignment places one item in a tier (or unassigned) at a global position.
// Position is a pointer so a missing position can be told apart from 0.
type Assignment struct {
	Item     string  `json:"item" yaml:"item"`
	Tier     *string `json:"tier" yaml:"tier"`
	Position *int    `json:"position" yaml:"position"`
}

// Reorder is the request body for a bulk reorder
type Reorder struct {
	Assignments []Assignment `json:"assignments" yaml:"assignments"`
}

// Lane is one tier (or the unassigned bucket) with its items in order
type Lane struct {
	Tier  *Tier  `json:"tier"` // nil = unassigned lane
	Items []Item `json:"items"`
}

// Board is the full ordering as a client renders it
type Board struct {
	Lanes []Lane `json:"lanes"`
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}
