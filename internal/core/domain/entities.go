package domain

import (
	"strings"
	"time"
)

// Dataset names an elemental-ratio overlay. The zero value is "no dataset".
type Dataset string

// NoDataset is the Idle selection: base layer only.
const NoDataset Dataset = ""

// Known overlay datasets, in sidebar order.
const (
	AlSi   Dataset = "Al_Si"
	MgSi   Dataset = "Mg_Si"
	MgAl   Dataset = "Mg_Al"
	CaKaSi Dataset = "CaKa_Si"
	MgNoSi Dataset = "Mg#_Si"
	FeLSi  Dataset = "FeL_Si"
)

// Datasets lists every selectable overlay in display order.
var Datasets = []Dataset{AlSi, MgSi, MgAl, CaKaSi, MgNoSi, FeLSi}

// mgNoFolder is the only name that differs from its path segment:
// '#' cannot appear in an asset URL path.
const mgNoFolder = "Mg1_Si"

// ParseDataset resolves a user-supplied name. "", "none" and "null" select
// no dataset; the folder alias Mg1_Si is accepted for Mg#_Si.
func ParseDataset(name string) (Dataset, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "", "none", "null":
		return NoDataset, nil
	}
	if name == mgNoFolder {
		return MgNoSi, nil
	}
	for _, d := range Datasets {
		if string(d) == name {
			return d, nil
		}
	}
	return NoDataset, ErrUnknownDataset
}

// Folder returns the asset path segment for the dataset.
func (d Dataset) Folder() string {
	if d == MgNoSi {
		return mgNoFolder
	}
	return string(d)
}

// IsNone reports whether no dataset is selected.
func (d Dataset) IsNone() bool { return d == NoDataset }

// DatasetRow is one irregular sample of an overlay dataset. Any field may be
// missing in the source table; Value is nil when the cell is empty or not numeric.
type DatasetRow struct {
	Lat   float64  `json:"latitude"`
	Lon   float64  `json:"longitude"`
	Value *float64 `json:"value"`
}

// Landmark is a named surface location in the gazetteer.
type Landmark struct {
	Name string  `json:"name"`
	Lat  float64 `json:"latitude"`
	Lon  float64 `json:"longitude"`
}

// ViewMode selects which rendering surface the front-end shows.
type ViewMode string

const (
	View2D ViewMode = "2D"
	View3D ViewMode = "3D"
)

// ParseViewMode accepts "2D"/"3D" in any case.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "2D":
		return View2D, nil
	case "3D":
		return View3D, nil
	}
	return "", ErrInvalidViewMode
}

// Phase is the state of the selection state machine.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	// PhaseFailed is Idle-equivalent: the dataset stays selected for
	// compositing but its index is empty.
	PhaseFailed Phase = "failed"
)

// DefaultOpacity is applied on start and after every dataset change.
const DefaultOpacity = 0.5

// DefaultDisplayCoordinate is shown before any pointer event and after a reset.
var DefaultDisplayCoordinate = GeoCoordinate{Lat: 0, Lon: 90}

// Selection is the process-wide UI selection state.
type Selection struct {
	Dataset   Dataset   `json:"dataset"`
	ViewMode  ViewMode  `json:"view_mode"`
	Opacity   float64   `json:"opacity"`
	Phase     Phase     `json:"phase"`
	Token     uint64    `json:"token"`
	Rows      int       `json:"rows"`
	LastError string    `json:"last_error,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// InitialSelection is {None, 3D, 0.5}.
func InitialSelection() Selection {
	return Selection{
		Dataset:  NoDataset,
		ViewMode: View3D,
		Opacity:  DefaultOpacity,
		Phase:    PhaseIdle,
	}
}

// Readout is the last resolved pointer state shown by the UI.
type Readout struct {
	Coordinate Coordinate `json:"coordinate"`
	Value      *float64   `json:"value"`
	Landmark   *Landmark  `json:"landmark"`
	Surface    ViewMode   `json:"surface,omitempty"`
}

// DefaultReadout is the readout after start or a reset.
func DefaultReadout() Readout {
	return Readout{Coordinate: Some(DefaultDisplayCoordinate)}
}

// LayerOpacity is the blend of one rendering surface.
type LayerOpacity struct {
	Base           float64 `json:"base"`
	Overlay        float64 `json:"overlay"`
	BaseVisible    bool    `json:"base_visible"`
	OverlayVisible bool    `json:"overlay_visible"`
}

// SphereMode distinguishes the normal blend from the fully-opaque overlay mode.
type SphereMode string

const (
	SphereBaseOnly    SphereMode = "base"
	SphereBlend       SphereMode = "blend"
	SphereOverlayOnly SphereMode = "overlay_only"
)

// SphereComposition is the 3D surface blend.
type SphereComposition struct {
	LayerOpacity
	Mode         SphereMode `json:"mode"`
	ImageTexture bool       `json:"image_texture"`
}

// Composition is the effective opacity state of both surfaces.
type Composition struct {
	Dataset Dataset           `json:"dataset"`
	Slider  float64           `json:"slider"`
	Map     LayerOpacity      `json:"map"`
	Sphere  SphereComposition `json:"sphere"`
}

// SelectionEvent is published whenever the selection changes.
type SelectionEvent struct {
	Selection   Selection   `json:"selection"`
	Composition Composition `json:"composition"`
	Reason      string      `json:"reason"`
}

// DatasetRefreshed is published after a dataset has been re-imported.
type DatasetRefreshed struct {
	Dataset Dataset   `json:"dataset"`
	Rows    int       `json:"rows"`
	At      time.Time `json:"at"`
}
