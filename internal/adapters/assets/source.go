// Package assets reads dataset tables and the landmark list from the static
// asset tree, either a local directory or an HTTP(S) prefix.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/selene/internal/core/domain"
	assetpaths "github.com/samirrijal/selene/internal/pkg/assets"
)

// ErrNotFound is returned when the asset does not exist.
var ErrNotFound = errors.New("asset not found")

// Source implements ports.DatasetSource and ports.LandmarkSource over the
// asset tree. Concurrent requests for the same file share one fetch.
type Source struct {
	paths    assetpaths.Paths
	remote   bool
	client   *http.Client
	inflight singleflight.Group
}

// NewSource creates a Source rooted at root. timeout bounds each HTTP fetch.
func NewSource(root string, timeout time.Duration) *Source {
	return &Source{
		paths:  assetpaths.NewPaths(root),
		remote: strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://"),
		client: &http.Client{Timeout: timeout},
	}
}

// Paths returns the asset layout this source reads from.
func (s *Source) Paths() assetpaths.Paths { return s.paths }

// Fetch downloads and parses the CSV table of ds.
func (s *Source) Fetch(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
	if ds.IsNone() {
		return nil, nil
	}
	v, err := s.shared(ctx, s.paths.DatasetCSV(ds), func(r io.Reader) (any, error) {
		return ParseDatasetCSV(r)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.DatasetRow), nil
}

// Landmarks downloads and parses the headerless lon,lat,name landmark file.
func (s *Source) Landmarks(ctx context.Context) ([]domain.Landmark, error) {
	v, err := s.shared(ctx, s.paths.LandmarksCSV(), func(r io.Reader) (any, error) {
		return ParseLandmarksCSV(r)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Landmark), nil
}

// shared runs one fetch+parse per location at a time. Each caller still
// honours its own context; the fetch itself is bounded by the client timeout.
func (s *Source) shared(ctx context.Context, loc string, parse func(io.Reader) (any, error)) (any, error) {
	ch := s.inflight.DoChan(loc, func() (any, error) {
		rc, err := s.open(context.WithoutCancel(ctx), loc)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		v, err := parse(rc)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", loc, err)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Source) open(ctx context.Context, loc string) (io.ReadCloser, error) {
	if !s.remote {
		f, err := os.Open(filepath.FromSlash(loc))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", loc, ErrNotFound)
		}
		return f, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", loc, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: unexpected status %d", loc, resp.StatusCode)
	}
	return resp.Body, nil
}
