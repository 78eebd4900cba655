package assets

import (
	"strings"
	"testing"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/pkg/tiling"
)

func TestPaths_Dataset(t *testing.T) {
	p := NewPaths("https://cdn.example.org/moon/")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"csv", p.DatasetCSV(domain.AlSi), "https://cdn.example.org/moon/TilesHigh/generated/generated/Al_Si/Al_Si.csv"},
		{"preview", p.PreviewImage(domain.FeLSi), "https://cdn.example.org/moon/TilesHigh/generated/generated/FeL_Si/FeL_Si.png"},
		{"sphere texture", p.SphereTexture(domain.CaKaSi), "https://cdn.example.org/moon/TilesHigh/generated/generated/CaKa_Si.png"},
		{"overlay tile", p.OverlayTile(domain.MgAl, tiling.TileCoordinate{Zoom: 3, Column: 5, Row: -2}), "https://cdn.example.org/moon/TilesHigh/generated/generated/Mg_Al/3/5/1.png"},
		{"base tile", p.BaseTile(tiling.TileCoordinate{Zoom: 0, Column: 0, Row: -1}), "https://cdn.example.org/moon/TilesHigh/base/base/0/0/0.png"},
		{"landmarks", p.LandmarksCSV(), "https://cdn.example.org/moon/data.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPaths_MgNumberUsesMg1Folder(t *testing.T) {
	p := NewPaths("assets")
	c := p.Catalogue(domain.MgNoSi)
	for _, s := range []string{c.CSV, c.Preview, c.SphereTexture, c.TileTemplate,
		p.OverlayTile(domain.MgNoSi, tiling.TileCoordinate{Zoom: 1, Row: -1})} {
		if strings.Contains(s, "#") {
			t.Errorf("path %q still contains '#'", s)
		}
		if !strings.Contains(s, "Mg1_Si") {
			t.Errorf("path %q does not use Mg1_Si", s)
		}
	}
	if c.Dataset != domain.MgNoSi {
		t.Errorf("catalogue should keep the display name, got %q", c.Dataset)
	}
}

func TestPaths_OtherNamesUnchanged(t *testing.T) {
	p := NewPaths("")
	for _, d := range domain.Datasets {
		if d == domain.MgNoSi {
			continue
		}
		want := "TilesHigh/generated/generated/" + string(d) + "/" + string(d) + ".png"
		if got := p.PreviewImage(d); got != want {
			t.Errorf("%s: got %q", d, got)
		}
	}
}

func TestPaths_Templates(t *testing.T) {
	p := NewPaths("/static")
	if got := p.BaseTemplate(); got != "/static/TilesHigh/base/base/{z}/{x}/{y}.png" {
		t.Errorf("base template %q", got)
	}
	if got := p.OverlayTemplate(domain.MgSi); got != "/static/TilesHigh/generated/generated/Mg_Si/{z}/{x}/{y}.png" {
		t.Errorf("overlay template %q", got)
	}
}
