package usecases

import (
	"github.com/imanolz/gravelpass/internal/core/domain"
	"github.com/imanolz/gravelpass/internal/core/ports"
)

// CutRequest selects an inclusive index range of a track's points.
// StartIndex <= EndIndex < len(Points) must hold; violations surface as
// typed errors and are never clamped.
type CutRequest struct {
	Points     []domain.GeoPoint
	StartIndex int
	EndIndex   int
	Name       string
}

// CutSegment copies the inclusive sub-range [StartIndex, EndIndex] into a
// fresh segment, preserving point order and every field verbatim. Bounds are
// recomputed strictly from the sub-range, not inherited from the parent.
// The segment gets its own opaque identifier from the injected generator.
func CutSegment(req CutRequest, ids ports.IDGenerator) (*domain.Segment, error) {
	if req.StartIndex > req.EndIndex {
		return nil, domain.ErrInvertedRange
	}
	if req.StartIndex < 0 || req.EndIndex >= len(req.Points) {
		return nil, domain.ErrIndexOutOfBounds
	}

	cut := make([]domain.GeoPoint, req.EndIndex-req.StartIndex+1)
	copy(cut, req.Points[req.StartIndex:req.EndIndex+1])

	bounds := domain.BoundsAt(cut[0].Latitude, cut[0].Longitude)
	for _, p := range cut[1:] {
		bounds.Extend(p.Latitude, p.Longitude)
	}

	return &domain.Segment{
		ID:     ids.NewID(),
		Name:   req.Name,
		Points: cut,
		Bounds: bounds,
	}, nil
}
