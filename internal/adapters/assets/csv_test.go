package assets_test

import (
	"math"
	"strings"
	"testing"

	"github.com/samirrijal/selene/internal/adapters/assets"
)

func TestParseDatasetCSV(t *testing.T) {
	in := "latitude,longitude,value\n0,0,5\n10,10,7\n"
	rows, err := assets.ParseDatasetCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Lat != 10 || rows[1].Lon != 10 || *rows[1].Value != 7 {
		t.Errorf("unexpected row: %+v", rows[1])
	}
}

func TestParseDatasetCSV_ColumnOrderAndExtras(t *testing.T) {
	in := "\ufeffvalue, id ,Longitude,Latitude\n0.25,a,-3,9\n"
	rows, err := assets.ParseDatasetCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Lat != 9 || rows[0].Lon != -3 || *rows[0].Value != 0.25 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestParseDatasetCSV_MalformedCells(t *testing.T) {
	in := "latitude,longitude,value\nabc,1,2\n3,,4\n5,6,n/a\n7,8\n"
	rows, err := assets.ParseDatasetCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("malformed rows are kept for the index to skip, got %d", len(rows))
	}
	if !math.IsNaN(rows[0].Lat) || !math.IsNaN(rows[1].Lon) {
		t.Errorf("non-numeric coordinates should be NaN: %+v %+v", rows[0], rows[1])
	}
	if rows[2].Value != nil || rows[3].Value != nil {
		t.Error("missing or non-numeric values should be nil")
	}
}

func TestParseDatasetCSV_Empty(t *testing.T) {
	rows, err := assets.ParseDatasetCSV(strings.NewReader(""))
	if err != nil || rows != nil {
		t.Errorf("expected no rows and no error, got %v, %v", rows, err)
	}
}

func TestParseLandmarksCSV(t *testing.T) {
	in := "-162.7863464,56.98412698,Birkhoff\n22.9,-70.9,\"Chandrayaan 3 landing site\"\nbad,1,Nowhere\n1,2\n3,4,\n"
	got, err := assets.ParseLandmarksCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 landmarks, got %+v", got)
	}
	if got[0].Name != "Birkhoff" || got[0].Lat != 56.98412698 || got[0].Lon != -162.7863464 {
		t.Errorf("columns are lon,lat,name: %+v", got[0])
	}
	if got[1].Name != "Chandrayaan 3 landing site" {
		t.Errorf("unexpected name %q", got[1].Name)
	}
}
