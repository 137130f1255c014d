package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TireRank is the recommended tire knobbiness for a surface/condition,
// ordered by severity: Slick < SemiSlick < Knobs. Route aggregation takes
// the maximum, so the worst segment wins.
type TireRank int

const (
	TireSlick TireRank = iota
	TireSemiSlick
	TireKnobs
)

var tireNames = map[TireRank]string{
	TireSlick:     "slick",
	TireSemiSlick: "semi_slick",
	TireKnobs:     "knobs",
}

func (t TireRank) String() string {
	if s, ok := tireNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tire(%d)", int(t))
}

// ParseTireRank converts the wire/DB representation back to a rank.
func ParseTireRank(s string) (TireRank, error) {
	for r, name := range tireNames {
		if name == s {
			return r, nil
		}
	}
	return TireSlick, fmt.Errorf("unknown tire rank %q", s)
}

func (t TireRank) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TireRank) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	r, err := ParseTireRank(s)
	if err != nil {
		return err
	}
	*t = r
	return nil
}

// MaxTire returns the more severe of two ranks.
func MaxTire(a, b TireRank) TireRank {
	if b > a {
		return b
	}
	return a
}

// SurfaceType is a closed label for what a segment is ridden on.
type SurfaceType string

const (
	SurfaceAsphalt     SurfaceType = "asphalt"
	SurfacePavedPath   SurfaceType = "paved_path"
	SurfaceGravel      SurfaceType = "gravel"
	SurfaceForestRoad  SurfaceType = "forest_road"
	SurfaceSingletrack SurfaceType = "singletrack"
	SurfaceSand        SurfaceType = "sand"
)

// SurfaceSet is an order-independent set of surface types. Serialized as a
// sorted array so encodings are deterministic.
type SurfaceSet map[SurfaceType]struct{}

// NewSurfaceSet builds a set from the given types, collapsing duplicates.
func NewSurfaceSet(types ...SurfaceType) SurfaceSet {
	s := make(SurfaceSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts a surface type.
func (s SurfaceSet) Add(t SurfaceType) { s[t] = struct{}{} }

// Has reports membership.
func (s SurfaceSet) Has(t SurfaceType) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members in lexical order.
func (s SurfaceSet) Sorted() []SurfaceType {
	out := make([]SurfaceType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s SurfaceSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *SurfaceSet) UnmarshalJSON(data []byte) error {
	var types []SurfaceType
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}
	*s = NewSurfaceSet(types...)
	return nil
}

// SegmentAttributes are the rider-assigned terrain attributes of one segment.
type SegmentAttributes struct {
	DifficultyLevel int        `json:"difficulty_level"`
	Surfaces        SurfaceSet `json:"surface_types"`
	TireDry         TireRank   `json:"tire_dry"`
	TireWet         TireRank   `json:"tire_wet"`
}

// RouteAttributes is the route-level aggregation over segment attributes.
// TireDry and TireWet are aggregated independently: tire choice depends on
// the weather the rider will actually face, never on a combined score.
type RouteAttributes struct {
	DifficultyLevel int        `json:"difficulty_level"`
	Surfaces        SurfaceSet `json:"surface_types"`
	TireDry         TireRank   `json:"tire_dry"`
	TireWet         TireRank   `json:"tire_wet"`
}
