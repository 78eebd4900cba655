package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/samirrijal/selene/internal/core/domain"
)

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{179.5, 179.5},
		{180, 180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{-360, 0},
		{540, 180},
		{-540, -180},
		{720.25, 0.25},
		{-900, 180 - 360},
	}
	for _, tt := range tests {
		if got := domain.NormalizeLongitude(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeLongitude(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLongitude_RangeAndIdempotence(t *testing.T) {
	inputs := []float64{-1e9, -12345.678, -540, -181, -180, -0.5, 0, 181, 540, 1e6, 1e12, 1e300, -1e300, math.MaxFloat64, -math.MaxFloat64}
	for _, in := range inputs {
		got := domain.NormalizeLongitude(in)
		if got < domain.MinLongitude || got > domain.MaxLongitude {
			t.Errorf("NormalizeLongitude(%v) = %v, out of range", in, got)
		}
		if again := domain.NormalizeLongitude(got); again != got {
			t.Errorf("NormalizeLongitude not idempotent for %v: %v then %v", in, got, again)
		}
	}
}

func TestNormalizeLongitude_HugeInputReturns(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		domain.NormalizeLongitude(1e300)
		domain.NormalizeLongitude(-1e300)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NormalizeLongitude did not return for huge magnitudes")
	}
}

func TestNormalizeLongitude_NonFinitePassThrough(t *testing.T) {
	if got := domain.NormalizeLongitude(math.NaN()); !math.IsNaN(got) {
		t.Errorf("NaN should pass through, got %v", got)
	}
	if got := domain.NormalizeLongitude(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("+Inf should pass through, got %v", got)
	}
	if got := domain.NormalizeLongitude(math.Inf(-1)); !math.IsInf(got, -1) {
		t.Errorf("-Inf should pass through, got %v", got)
	}
}

func TestClampLatitude(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{90, 90},
		{-90, -90},
		{91, 90},
		{-91, -90},
		{270, 90},
		{-450, -90},
		{1e300, 90},
	}
	for _, tt := range tests {
		if got := domain.ClampLatitude(tt.in); got != tt.want {
			t.Errorf("ClampLatitude(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewGeoCoordinate(t *testing.T) {
	g := domain.NewGeoCoordinate(120, 370)
	if g.Lat != 90 || math.Abs(g.Lon-10) > 1e-9 {
		t.Errorf("got %+v, want lat 90 lon 10", g)
	}
	if !g.InRange() {
		t.Errorf("%+v should be in range", g)
	}
	if (domain.GeoCoordinate{Lat: 0, Lon: 181}).InRange() {
		t.Error("lon 181 should be out of range")
	}
}
