package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("selene-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Assets.Source != SourceAssets {
		t.Errorf("expected source %q, got %q", SourceAssets, cfg.Assets.Source)
	}
	if cfg.Assets.FetchTimeout != 15*time.Second {
		t.Errorf("expected 15s fetch timeout, got %s", cfg.Assets.FetchTimeout)
	}
	if cfg.Gazetteer.MaxRadiusKm != 1000 {
		t.Errorf("expected 1000 km radius, got %f", cfg.Gazetteer.MaxRadiusKm)
	}
	if cfg.Telemetry.ServiceName != "selene-test" {
		t.Errorf("expected service name selene-test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SELENE_ASSETS_ROOT", "https://cdn.example.org/moon")
	t.Setenv("SELENE_ASSETS_FETCH_TIMEOUT", "3s")

	cfg, err := Load("selene-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assets.Root != "https://cdn.example.org/moon" {
		t.Errorf("root not overridden: %s", cfg.Assets.Root)
	}
	if !cfg.Assets.Remote() {
		t.Error("expected remote root")
	}
	if cfg.Assets.FetchTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %s", cfg.Assets.FetchTimeout)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Assets: AssetsConfig{Source: "s3"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "assets.root", "assets.source", "gazetteer.max_radius_km"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestAssetsConfig_Remote(t *testing.T) {
	if (AssetsConfig{Root: "./public"}).Remote() {
		t.Error("local dir reported as remote")
	}
	if !(AssetsConfig{Root: "http://localhost:5173"}).Remote() {
		t.Error("http root not reported as remote")
	}
}
