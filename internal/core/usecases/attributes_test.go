package usecases_test

import (
	"errors"
	"testing"

	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/usecases"
)

func TestAggregateDifficulty(t *testing.T) {
	tests := []struct {
		name   string
		levels []int
		want   int
	}{
		{"single", []int{3}, 3},
		{"mean rounds down", []int{2, 2, 3}, 2},   // 2.333 -> 2.3 -> 2
		{"mean rounds up", []int{2, 3}, 3},        // 2.5 -> 3
		{"uniform", []int{4, 4, 4, 4}, 4},
		{"wide spread", []int{1, 5}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usecases.AggregateDifficulty(tt.levels)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("levels %v: got %d, want %d", tt.levels, got, tt.want)
			}
		})
	}
}

func TestAggregateDifficulty_NoSegments(t *testing.T) {
	_, err := usecases.AggregateDifficulty(nil)
	if !errors.Is(err, domain.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}

func TestAggregateSurfaces_Union(t *testing.T) {
	got := usecases.AggregateSurfaces([]domain.SurfaceSet{
		domain.NewSurfaceSet(domain.SurfaceGravel, domain.SurfaceAsphalt),
		domain.NewSurfaceSet(domain.SurfaceGravel, domain.SurfaceSingletrack),
		nil,
	})

	want := []domain.SurfaceType{domain.SurfaceAsphalt, domain.SurfaceGravel, domain.SurfaceSingletrack}
	sorted := got.Sorted()
	if len(sorted) != len(want) {
		t.Fatalf("union: got %v, want %v", sorted, want)
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("union[%d]: got %s, want %s", i, sorted[i], want[i])
		}
	}
}

func TestAggregateTires_Independence(t *testing.T) {
	// A single Knobs-dry/Slick-wet segment must never cross-influence.
	dry, wet := usecases.AggregateTires(
		[]domain.TireRank{domain.TireKnobs},
		[]domain.TireRank{domain.TireSlick},
	)
	if dry != domain.TireKnobs {
		t.Errorf("dry: got %s, want knobs", dry)
	}
	if wet != domain.TireSlick {
		t.Errorf("wet: got %s, want slick (wet list must not see the dry knobs)", wet)
	}
}

func TestAggregateTires_WorstCaseWins(t *testing.T) {
	dry, wet := usecases.AggregateTires(
		[]domain.TireRank{domain.TireSlick, domain.TireSemiSlick, domain.TireSlick},
		[]domain.TireRank{domain.TireSemiSlick, domain.TireKnobs},
	)
	if dry != domain.TireSemiSlick {
		t.Errorf("dry: got %s, want semi_slick", dry)
	}
	if wet != domain.TireKnobs {
		t.Errorf("wet: got %s, want knobs", wet)
	}
}

func TestAggregateAttributes_Empty(t *testing.T) {
	_, err := usecases.AggregateAttributes(nil)
	if !errors.Is(err, domain.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}

func TestDefaultWaypointAttributes(t *testing.T) {
	attrs := usecases.DefaultWaypointAttributes.RouteAttributes()

	if attrs.DifficultyLevel != 2 {
		t.Errorf("difficulty: got %d, want 2 (medium)", attrs.DifficultyLevel)
	}
	if !attrs.Surfaces.Has(domain.SurfaceGravel) || len(attrs.Surfaces) != 1 {
		t.Errorf("expected single gravel default surface, got %v", attrs.Surfaces.Sorted())
	}
	if attrs.TireDry != domain.TireSemiSlick {
		t.Errorf("dry: got %s, want semi_slick", attrs.TireDry)
	}
	if attrs.TireWet != domain.TireKnobs {
		t.Errorf("wet: got %s, want knobs (safety-biased)", attrs.TireWet)
	}
}
