package models

// Tier represents a named, colored ranking bucket
type Tier struct {
	ID    string `json:"id" yaml:"-"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Rank  int    `json:"rank" yaml:"-"`
}

// TierCreate is the request body for creating a tier
type TierCreate struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// TierUpdate is the request body for renaming or recoloring a tier
type TierUpdate struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Direction selects the neighbour a tier swaps rank with
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	return d == Up || d == Down
}

// TierMove is the request body for moving a tier
type TierMove struct {
	Direction Direction `json:"direction"`
}

// DefaultTiers returns standard S-F tier configuration
func DefaultTiers() []TierCreate {
	return []TierCreate{
		{Name: "S", Color: "#ff7f7f"},
		{Name: "A", Color: "#ffbf7f"},
		{Name: "B", Color: "#ffff7f"},
		{Name: "C", Color: "#7fff7f"},
		{Name: "D", Color: "#7fbfff"},
		{Name: "F", Color: "#ff7fff"},
	}
}
