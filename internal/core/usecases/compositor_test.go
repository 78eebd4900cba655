package usecases_test

import (
	"math"
	"testing"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/usecases"
)

func TestCompose_NoDataset(t *testing.T) {
	c := usecases.Compose(domain.NoDataset, 0.3)
	if c.Map.Base != 0.3 || !c.Map.BaseVisible || c.Map.OverlayVisible {
		t.Errorf("map: %+v", c.Map)
	}
	if c.Sphere.Mode != domain.SphereBaseOnly || c.Sphere.OverlayVisible {
		t.Errorf("sphere: %+v", c.Sphere)
	}
}

func TestCompose_DatasetIsComplementary(t *testing.T) {
	for _, s := range []float64{0, 0.01, 0.25, 0.5, 0.99} {
		c := usecases.Compose(domain.AlSi, s)
		if c.Map.Overlay != s {
			t.Errorf("slider %v: overlay %v", s, c.Map.Overlay)
		}
		if math.Abs(c.Map.Base+c.Map.Overlay-1) > 1e-12 {
			t.Errorf("slider %v: map layers sum to %v", s, c.Map.Base+c.Map.Overlay)
		}
		if c.Sphere.Mode != domain.SphereBlend {
			t.Errorf("slider %v: sphere mode %s", s, c.Sphere.Mode)
		}
		if math.Abs(c.Sphere.Base+c.Sphere.Overlay-1) > 1e-12 {
			t.Errorf("slider %v: sphere layers sum to %v", s, c.Sphere.Base+c.Sphere.Overlay)
		}
	}
}

func TestCompose_FullyOpaqueSphere(t *testing.T) {
	c := usecases.Compose(domain.MgNoSi, 1)
	if c.Sphere.Mode != domain.SphereOverlayOnly {
		t.Fatalf("expected overlay-only mode, got %s", c.Sphere.Mode)
	}
	if c.Sphere.BaseVisible || !c.Sphere.ImageTexture || c.Sphere.Overlay != 1 {
		t.Errorf("sphere: %+v", c.Sphere)
	}
	// the flat map keeps the plain blend
	if c.Map.Base != 0 || c.Map.Overlay != 1 || !c.Map.BaseVisible {
		t.Errorf("map: %+v", c.Map)
	}
}

func TestCompose_ClampsSlider(t *testing.T) {
	if c := usecases.Compose(domain.AlSi, 1.7); c.Slider != 1 || c.Sphere.Mode != domain.SphereOverlayOnly {
		t.Errorf("1.7 should clamp to 1: %+v", c)
	}
	if c := usecases.Compose(domain.AlSi, -2); c.Slider != 0 {
		t.Errorf("-2 should clamp to 0: %+v", c)
	}
	if c := usecases.Compose(domain.AlSi, math.NaN()); c.Slider != domain.DefaultOpacity {
		t.Errorf("NaN should fall back to the default: %+v", c)
	}
}
