package usecases

import (
	"fmt"
	"strconv"

	"github.com/samirrijal/selene/internal/core/domain"
)

// Display is the text the info panel shows for a readout.
type Display struct {
	Coordinate string `json:"coordinate"`
	Value      string `json:"value"`
	Landmark   string `json:"landmark"`
}

// FormatReadout renders r the way the front-end labels it. On the globe a
// missing coordinate is shown as 0,0; on the map it is left blank. Map values
// carry five decimals.
func FormatReadout(r domain.Readout) Display {
	var d Display
	switch {
	case r.Coordinate.Valid:
		d.Coordinate = fmt.Sprintf("Lat: %.3f, Long: %.3f", r.Coordinate.Lat, r.Coordinate.Lon)
	case r.Surface == domain.View3D:
		d.Coordinate = "Lat: 0.000, Long: 0.000"
	}

	if r.Value == nil {
		d.Value = "No Data"
	} else if r.Surface == domain.View2D {
		d.Value = "Value: " + strconv.FormatFloat(*r.Value, 'f', 5, 64)
	} else {
		d.Value = "Value: " + strconv.FormatFloat(*r.Value, 'f', -1, 64)
	}

	if r.Landmark == nil {
		d.Landmark = "No Landmark"
	} else {
		d.Landmark = "Landmark: " + r.Landmark.Name
	}
	return d
}
