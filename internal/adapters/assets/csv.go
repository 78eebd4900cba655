package assets

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/selene/internal/core/domain"
)

// ParseDatasetCSV reads a dataset table with a header row naming the
// latitude, longitude and value columns. Column order is free and other
// columns are ignored. Cells that are empty or not numeric become NaN
// coordinates or a nil value; such rows are kept so the index can skip them.
func ParseDatasetCSV(r io.Reader) ([]domain.DatasetRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	latCol, lonCol, valCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "latitude":
			latCol = i
		case "longitude":
			lonCol = i
		case "value":
			valCol = i
		}
	}

	var rows []domain.DatasetRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := domain.DatasetRow{
			Lat: number(rec, latCol),
			Lon: number(rec, lonCol),
		}
		if v := number(rec, valCol); domain.Finite(v) {
			row.Value = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseLandmarksCSV reads headerless lon,lat,name records. Records without a
// name or with unusable coordinates are skipped.
func ParseLandmarksCSV(r io.Reader) ([]domain.Landmark, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []domain.Landmark
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 3 {
			continue
		}
		lon, lat := number(rec, 0), number(rec, 1)
		name := strings.TrimSpace(strings.Join(rec[2:], ","))
		if name == "" || !domain.Finite(lat) || !domain.Finite(lon) {
			continue
		}
		out = append(out, domain.Landmark{Name: name, Lat: lat, Lon: lon})
	}
	return out, nil
}

func number(rec []string, col int) float64 {
	if col < 0 || col >= len(rec) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
