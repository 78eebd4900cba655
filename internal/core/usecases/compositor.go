package usecases

import (
	"math"

	"github.com/samirrijal/selene/internal/core/domain"
)

// ClampOpacity limits a slider value to [0,1]. NaN maps to the default.
func ClampOpacity(v float64) float64 {
	if math.IsNaN(v) {
		return domain.DefaultOpacity
	}
	return math.Max(0, math.Min(1, v))
}

// Compose derives the layer opacities of both surfaces from the dataset
// selection and the slider.
//
// Without a dataset the slider drives the base layer and no overlay is drawn.
// With a dataset the overlay takes the slider value and the base takes the
// complement. On the sphere a fully opaque overlay switches to a separate
// mode that hides the base model and shows the image texture.
func Compose(ds domain.Dataset, slider float64) domain.Composition {
	s := ClampOpacity(slider)
	c := domain.Composition{Dataset: ds, Slider: s}

	if ds.IsNone() {
		base := domain.LayerOpacity{Base: s, BaseVisible: true}
		c.Map = base
		c.Sphere = domain.SphereComposition{LayerOpacity: base, Mode: domain.SphereBaseOnly}
		return c
	}

	blend := domain.LayerOpacity{Base: 1 - s, Overlay: s, BaseVisible: true, OverlayVisible: true}
	c.Map = blend
	if s == 1 {
		c.Sphere = domain.SphereComposition{
			LayerOpacity: domain.LayerOpacity{Overlay: 1, OverlayVisible: true},
			Mode:         domain.SphereOverlayOnly,
			ImageTexture: true,
		}
		return c
	}
	c.Sphere = domain.SphereComposition{LayerOpacity: blend, Mode: domain.SphereBlend}
	return c
}
