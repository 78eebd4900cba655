package usecases_test

import (
	"testing"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/geospatial"
)

func TestGazetteer_Nearest(t *testing.T) {
	g := usecases.NewGazetteer([]domain.Landmark{{Name: "X", Lat: 0, Lon: 0}}, 0)

	l, _, ok := g.Nearest(at(0, 0))
	if !ok || l.Name != "X" {
		t.Fatalf("expected X, got %+v (ok=%v)", l, ok)
	}

	if _, _, ok := g.Nearest(at(85, 0)); ok {
		t.Error("(85,0) is beyond 1000 km and must be no result")
	}
}

func TestGazetteer_RadiusIsExclusive(t *testing.T) {
	d := geospatial.Haversine(5, 0, 0, 0)
	g := usecases.NewGazetteer([]domain.Landmark{{Name: "X"}}, d)
	if _, _, ok := g.Nearest(at(5, 0)); ok {
		t.Error("a landmark exactly at the radius is not eligible")
	}
	if _, _, ok := g.Nearest(at(4.9, 0)); !ok {
		t.Error("a landmark inside the radius should be found")
	}
}

func TestGazetteer_PicksClosestWithinRadius(t *testing.T) {
	g := usecases.NewGazetteer([]domain.Landmark{
		{Name: "far", Lat: 0, Lon: 5},
		{Name: "near", Lat: 0, Lon: 1},
	}, 0)
	l, km, ok := g.Nearest(at(0, 0))
	if !ok || l.Name != "near" {
		t.Fatalf("expected near, got %+v", l)
	}
	if km >= usecases.DefaultLandmarkRadiusKm {
		t.Errorf("distance %f exceeds radius", km)
	}
}

func TestGazetteer_NeverBeyondRadius(t *testing.T) {
	g := usecases.NewGazetteer(domain.DefaultLandmarks(), 0)
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 7.5 {
			l, km, ok := g.Nearest(at(lat, lon))
			if !ok {
				continue
			}
			if got := geospatial.Haversine(lat, lon, l.Lat, l.Lon); got >= 1000 || km >= 1000 {
				t.Fatalf("(%v,%v) returned %s at %f km", lat, lon, l.Name, got)
			}
		}
	}
}

func TestGazetteer_DefaultTable(t *testing.T) {
	g := usecases.NewGazetteer(domain.DefaultLandmarks(), 0)
	if len(g.Landmarks()) != 38 {
		t.Fatalf("expected 38 landmarks, got %d", len(g.Landmarks()))
	}
	l, _, ok := g.Nearest(at(-70.9, 22.9))
	if !ok || l.Name != "Chandrayaan 3 landing site" {
		t.Errorf("got %+v", l)
	}
}

func TestGazetteer_AbsentCoordinate(t *testing.T) {
	g := usecases.NewGazetteer([]domain.Landmark{{Name: "X"}}, 0)
	if _, _, ok := g.Nearest(domain.None()); ok {
		t.Error("absent coordinate must be no result")
	}
}
