package usecases

import (
	"math"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// AggregateDifficulty averages per-segment difficulty levels: mean, rounded
// to one decimal, then rounded to the nearest integer. Fails
// domain.ErrNoSegments on an empty input.
func AggregateDifficulty(levels []int) (int, error) {
	if len(levels) == 0 {
		return 0, domain.ErrNoSegments
	}

	sum := 0
	for _, l := range levels {
		sum += l
	}
	mean := float64(sum) / float64(len(levels))
	tenth := math.Round(mean*10) / 10
	return int(math.Round(tenth)), nil
}

// AggregateSurfaces unions the per-segment surface sets. Order-independent,
// duplicates collapse.
func AggregateSurfaces(sets []domain.SurfaceSet) domain.SurfaceSet {
	union := domain.NewSurfaceSet()
	for _, s := range sets {
		for t := range s {
			union.Add(t)
		}
	}
	return union
}

// AggregateTires picks the worst-case rank for each condition. Dry and wet
// are aggregated completely independently: a segment's wet rating never
// influences the dry aggregate and vice versa, because tire choice is
// conditioned on the weather the rider will actually face.
func AggregateTires(dry, wet []domain.TireRank) (domain.TireRank, domain.TireRank) {
	var worstDry, worstWet domain.TireRank
	for _, r := range dry {
		worstDry = domain.MaxTire(worstDry, r)
	}
	for _, r := range wet {
		worstWet = domain.MaxTire(worstWet, r)
	}
	return worstDry, worstWet
}

// AggregateAttributes combines per-segment attributes into one route-level
// summary. Fails domain.ErrNoSegments when the list is empty.
func AggregateAttributes(attrs []domain.SegmentAttributes) (domain.RouteAttributes, error) {
	levels := make([]int, len(attrs))
	sets := make([]domain.SurfaceSet, len(attrs))
	dry := make([]domain.TireRank, len(attrs))
	wet := make([]domain.TireRank, len(attrs))
	for i, a := range attrs {
		levels[i] = a.DifficultyLevel
		sets[i] = a.Surfaces
		dry[i] = a.TireDry
		wet[i] = a.TireWet
	}

	difficulty, err := AggregateDifficulty(levels)
	if err != nil {
		return domain.RouteAttributes{}, err
	}
	tireDry, tireWet := AggregateTires(dry, wet)

	return domain.RouteAttributes{
		DifficultyLevel: difficulty,
		Surfaces:        AggregateSurfaces(sets),
		TireDry:         tireDry,
		TireWet:         tireWet,
	}, nil
}

// WaypointRouteDefaults is the attribute policy for routes built from a
// waypoint path, where no per-segment terrain data exists to aggregate from.
type WaypointRouteDefaults struct {
	DifficultyLevel int
	Surface         domain.SurfaceType
	TireDry         domain.TireRank
	TireWet         domain.TireRank
}

// DefaultWaypointAttributes is the stock policy: medium difficulty, gravel
// surface, a conservative middle for dry tires, and a safety-biased worst
// case for wet.
var DefaultWaypointAttributes = WaypointRouteDefaults{
	DifficultyLevel: 2,
	Surface:         domain.SurfaceGravel,
	TireDry:         domain.TireSemiSlick,
	TireWet:         domain.TireKnobs,
}

// RouteAttributes materializes the policy.
func (d WaypointRouteDefaults) RouteAttributes() domain.RouteAttributes {
	return domain.RouteAttributes{
		DifficultyLevel: d.DifficultyLevel,
		Surfaces:        domain.NewSurfaceSet(d.Surface),
		TireDry:         d.TireDry,
		TireWet:         d.TireWet,
	}
}
