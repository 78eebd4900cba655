package usecases

import (
	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/pkg/geospatial"
)

// DefaultLandmarkRadiusKm is the maximum great-circle distance at which a
// landmark is reported.
const DefaultLandmarkRadiusKm = 1000.0

// Gazetteer resolves the nearest named landmark. It is immutable after
// construction.
type Gazetteer struct {
	landmarks []domain.Landmark
	radiusKm  float64
}

// NewGazetteer builds a gazetteer over landmarks. radiusKm <= 0 selects
// DefaultLandmarkRadiusKm.
func NewGazetteer(landmarks []domain.Landmark, radiusKm float64) *Gazetteer {
	if radiusKm <= 0 {
		radiusKm = DefaultLandmarkRadiusKm
	}
	kept := make([]domain.Landmark, 0, len(landmarks))
	for _, l := range landmarks {
		if domain.Finite(l.Lat) && domain.Finite(l.Lon) {
			kept = append(kept, l)
		}
	}
	return &Gazetteer{landmarks: kept, radiusKm: radiusKm}
}

// RadiusKm is the eligibility radius.
func (g *Gazetteer) RadiusKm() float64 { return g.radiusKm }

// Landmarks returns a copy of the table.
func (g *Gazetteer) Landmarks() []domain.Landmark {
	out := make([]domain.Landmark, len(g.landmarks))
	copy(out, g.landmarks)
	return out
}

// Nearest returns the closest landmark strictly within the radius by
// haversine distance on a 6371 km sphere.
func (g *Gazetteer) Nearest(c domain.Coordinate) (domain.Landmark, float64, bool) {
	if !c.Valid {
		return domain.Landmark{}, 0, false
	}
	best := -1
	var bestKm float64
	for i, l := range g.landmarks {
		d := geospatial.Haversine(c.Lat, c.Lon, l.Lat, l.Lon)
		if d >= g.radiusKm {
			continue
		}
		if best < 0 || d < bestKm {
			best, bestKm = i, d
		}
	}
	if best < 0 {
		return domain.Landmark{}, 0, false
	}
	return g.landmarks[best], bestKm, true
}
