package domain

import "errors"

var (
	ErrUnknownDataset  = errors.New("unknown dataset")
	ErrInvalidOpacity  = errors.New("opacity must be a number between 0 and 1")
	ErrInvalidViewMode = errors.New("view mode must be 2D or 3D")
	ErrNoCoordinate    = errors.New("no coordinate")
)
