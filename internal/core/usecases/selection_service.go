package usecases

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/ports"
	"github.com/samirrijal/selene/internal/pkg/metrics"
	"github.com/samirrijal/selene/internal/pkg/sphere"
	"github.com/samirrijal/selene/internal/pkg/telemetry"
	"github.com/samirrijal/selene/internal/pkg/tiling"
)

// DefaultFetchTimeout bounds a dataset fetch when none is configured.
const DefaultFetchTimeout = 15 * time.Second

// CoordinatePrecision is the number of decimals pointer coordinates are
// rounded to before lookup.
const CoordinatePrecision = 3

// DefaultGlobe is the rendered body: a unit sphere at the scene origin.
var DefaultGlobe = sphere.Sphere{Radius: 1}

// Event reasons.
const (
	ReasonDataset  = "dataset"
	ReasonLoaded   = "loaded"
	ReasonOpacity  = "opacity"
	ReasonViewMode = "view_mode"
	ReasonRefresh  = "refresh"
)

// SelectionOptions tunes a SelectionService.
type SelectionOptions struct {
	FetchTimeout time.Duration
	Globe        sphere.Sphere
}

// State is a consistent copy of everything the UI shows.
type State struct {
	Selection   domain.Selection   `json:"selection"`
	Composition domain.Composition `json:"composition"`
	Readout     domain.Readout     `json:"readout"`
}

// SelectionService owns the process-wide selection. Every mutation goes
// through it; lookups read the published DatasetIndex without locking.
//
// Each dataset selection takes a new token. A load commits only while its
// token is current, so a superseded fetch can never overwrite newer state.
type SelectionService struct {
	source    ports.DatasetSource
	gazetteer *Gazetteer
	events    ports.EventPublisher
	grid      *tiling.Grid
	globe     sphere.Sphere
	timeout   time.Duration
	tracer    trace.Tracer
	index     *IndexHolder

	mu      sync.Mutex
	sel     domain.Selection
	readout domain.Readout
	cancel  context.CancelFunc
	loads   sync.WaitGroup
	now     func() time.Time
}

// NewSelectionService creates a SelectionService in the initial state
// {None, 3D, 0.5}. events may be nil.
func NewSelectionService(source ports.DatasetSource, gazetteer *Gazetteer, events ports.EventPublisher, opts SelectionOptions) *SelectionService {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Globe.Radius <= 0 {
		opts.Globe = DefaultGlobe
	}
	if gazetteer == nil {
		gazetteer = NewGazetteer(nil, 0)
	}
	s := &SelectionService{
		source:    source,
		gazetteer: gazetteer,
		events:    events,
		grid:      tiling.NewGrid(),
		globe:     opts.Globe,
		timeout:   opts.FetchTimeout,
		tracer:    otel.Tracer(telemetry.TracerName),
		index:     NewIndexHolder(),
		sel:       domain.InitialSelection(),
		readout:   domain.DefaultReadout(),
		now:       time.Now,
	}
	s.sel.ChangedAt = s.now()
	s.readout.Surface = s.sel.ViewMode
	return s
}

// Grid is the tile pyramid used to resolve 2D pointer events.
func (s *SelectionService) Grid() *tiling.Grid { return s.grid }

// Gazetteer returns the landmark table in use.
func (s *SelectionService) Gazetteer() *Gazetteer { return s.gazetteer }

// Index returns the currently published dataset index.
func (s *SelectionService) Index() *DatasetIndex { return s.index.Load() }

// Select makes ds the active dataset. The previous index is withdrawn before
// Select returns and opacity resets to the default. Selecting NoDataset also
// resets the readout. The fetch runs in the background; Wait blocks until it
// has settled.
func (s *SelectionService) Select(ctx context.Context, ds domain.Dataset) domain.Selection {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.sel.Token++
	s.sel.Dataset = ds
	s.sel.Opacity = domain.DefaultOpacity
	s.sel.Rows = 0
	s.sel.LastError = ""
	s.sel.ChangedAt = s.now()
	s.index.Replace(EmptyIndex(ds))

	if ds.IsNone() {
		s.sel.Phase = domain.PhaseIdle
		s.readout = domain.DefaultReadout()
		s.readout.Surface = s.sel.ViewMode
	} else {
		s.sel.Phase = domain.PhaseLoading
		s.readout.Value = nil
	}
	sel := s.sel
	s.mu.Unlock()

	slog.InfoContext(ctx, "dataset selected", "dataset", ds, "token", sel.Token)
	s.publishSelection(ctx, sel, ReasonDataset)
	if !ds.IsNone() {
		s.startLoad(ctx, sel.Token, ds)
	}
	return sel
}

// Reload re-fetches ds if it is still the active dataset, keeping opacity and
// the current index until the new rows commit. It reports whether a load
// was started.
func (s *SelectionService) Reload(ctx context.Context, ds domain.Dataset) bool {
	s.mu.Lock()
	if ds.IsNone() || s.sel.Dataset != ds {
		s.mu.Unlock()
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.sel.Token++
	s.sel.Phase = domain.PhaseLoading
	sel := s.sel
	s.mu.Unlock()

	slog.InfoContext(ctx, "reloading dataset", "dataset", ds, "token", sel.Token)
	s.publishSelection(ctx, sel, ReasonRefresh)
	s.startLoad(ctx, sel.Token, ds)
	return true
}

// startLoad launches the fetch for token unless a newer selection already
// superseded it. The load outlives the request that triggered it but is
// cancelled when superseded.
func (s *SelectionService) startLoad(ctx context.Context, token uint64, ds domain.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.sel.Token {
		return
	}
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		defer cancel()
		s.load(loadCtx, token, ds)
	}()
}

func (s *SelectionService) load(ctx context.Context, token uint64, ds domain.Dataset) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, telemetry.SpanDatasetLoad, trace.WithAttributes(
		attribute.String(telemetry.AttrDataset, string(ds)),
		attribute.Int64(telemetry.AttrToken, int64(token)),
	))
	defer span.End()

	start := time.Now()
	rows, err := s.source.Fetch(ctx, ds)
	var ix *DatasetIndex
	if err == nil {
		ix = NewDatasetIndex(ds, rows)
		span.SetAttributes(
			attribute.Int(telemetry.AttrRows, ix.Len()),
			attribute.Int(telemetry.AttrSkipped, ix.Skipped()),
		)
	} else {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.DatasetLoadDuration.WithLabelValues(string(ds)).Observe(time.Since(start).Seconds())

	s.commit(ctx, token, ds, ix, err)
}

// commit publishes the outcome of a load if token is still current.
func (s *SelectionService) commit(ctx context.Context, token uint64, ds domain.Dataset, ix *DatasetIndex, fetchErr error) {
	s.mu.Lock()
	if token != s.sel.Token {
		current := s.sel.Token
		s.mu.Unlock()
		metrics.StaleLoads.Inc()
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool(telemetry.AttrStaleLoad, true))
		slog.DebugContext(ctx, "discarding superseded load", "dataset", ds, "token", token, "current", current)
		return
	}
	s.cancel = nil

	if fetchErr != nil {
		outcome := "failed"
		if errors.Is(fetchErr, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		s.index.Replace(EmptyIndex(ds))
		s.sel.Phase = domain.PhaseFailed
		s.sel.Rows = 0
		s.sel.LastError = fetchErr.Error()
		metrics.DatasetLoads.WithLabelValues(string(ds), outcome).Inc()
		slog.WarnContext(ctx, "dataset load failed, continuing with empty index",
			"dataset", ds, "outcome", outcome, "error", fetchErr)
	} else {
		s.index.Replace(ix)
		s.sel.Phase = domain.PhaseLoaded
		s.sel.Rows = ix.Len()
		s.sel.LastError = ""
		metrics.DatasetLoads.WithLabelValues(string(ds), "ok").Inc()
		metrics.DatasetRows.WithLabelValues(string(ds)).Set(float64(ix.Len()))
		if ix.Skipped() > 0 {
			slog.InfoContext(ctx, "rows without usable coordinates skipped", "dataset", ds, "skipped", ix.Skipped())
		}
	}
	// The displayed value follows the new rows at the last pointer position.
	s.readout.Value = s.lookupValue(s.readout.Coordinate)
	sel := s.sel
	s.mu.Unlock()

	if s.events != nil && fetchErr == nil {
		if err := s.events.PublishDatasetLoaded(ctx, &sel); err != nil {
			slog.WarnContext(ctx, "publish dataset loaded", "error", err)
		}
	}
	s.publishSelection(ctx, sel, ReasonLoaded)
}

// Wait blocks until every started load has settled.
func (s *SelectionService) Wait() {
	s.loads.Wait()
}

// Close cancels any in-flight load and waits for it.
func (s *SelectionService) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.loads.Wait()
}

// SetOpacity moves the slider. Values are clamped to [0,1]; NaN and ±Inf are
// rejected.
func (s *SelectionService) SetOpacity(ctx context.Context, v float64) (domain.Composition, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.Composition{}, domain.ErrInvalidOpacity
	}
	s.mu.Lock()
	s.sel.Opacity = ClampOpacity(v)
	s.sel.ChangedAt = s.now()
	sel := s.sel
	s.mu.Unlock()

	s.publishSelection(ctx, sel, ReasonOpacity)
	return Compose(sel.Dataset, sel.Opacity), nil
}

// SetViewMode switches the rendering surface. Nothing else is reset.
func (s *SelectionService) SetViewMode(ctx context.Context, mode domain.ViewMode) (domain.Selection, error) {
	if mode != domain.View2D && mode != domain.View3D {
		return domain.Selection{}, domain.ErrInvalidViewMode
	}
	s.mu.Lock()
	s.sel.ViewMode = mode
	s.sel.ChangedAt = s.now()
	s.readout.Surface = mode
	sel := s.sel
	s.mu.Unlock()

	s.publishSelection(ctx, sel, ReasonViewMode)
	return sel, nil
}

// Selection returns a copy of the current selection.
func (s *SelectionService) Selection() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Composition returns the layer opacities for the current selection.
func (s *SelectionService) Composition() domain.Composition {
	sel := s.Selection()
	return Compose(sel.Dataset, sel.Opacity)
}

// Snapshot returns selection, composition and readout taken together.
func (s *SelectionService) Snapshot() State {
	s.mu.Lock()
	sel, r := s.sel, s.readout
	s.mu.Unlock()
	return State{Selection: sel, Composition: Compose(sel.Dataset, sel.Opacity), Readout: r}
}

// CurrentValue is the value shown for the last pointer position.
func (s *SelectionService) CurrentValue() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readout.Value == nil {
		return 0, false
	}
	return *s.readout.Value, true
}

// CurrentLandmarkName is the landmark shown for the last pointer position.
func (s *SelectionService) CurrentLandmarkName() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readout.Landmark == nil {
		return "", false
	}
	return s.readout.Landmark.Name, true
}

// CurrentCoordinate is the last resolved pointer coordinate.
func (s *SelectionService) CurrentCoordinate() domain.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readout.Coordinate
}

// ResolveGeo resolves a geographic coordinate directly. Longitude is wrapped
// into range; a latitude outside [-90,90] yields no coordinate.
func (s *SelectionService) ResolveGeo(ctx context.Context, lat, lon float64) domain.Readout {
	c := domain.None()
	if domain.Finite(lat) && domain.Finite(lon) && lat >= domain.MinLatitude && lat <= domain.MaxLatitude {
		c = domain.Some(domain.GeoCoordinate{Lat: lat, Lon: domain.NormalizeLongitude(lon)})
	}
	return s.resolve(ctx, c, s.Selection().ViewMode)
}

// ResolveMap resolves a pointer position on the flat map, in world units.
func (s *SelectionService) ResolveMap(ctx context.Context, p tiling.Point) domain.Readout {
	return s.resolve(ctx, tiling.WorldToGeo(p), domain.View2D)
}

// ResolveTilePixel resolves a pixel offset inside a map tile.
func (s *SelectionService) ResolveTilePixel(ctx context.Context, t tiling.TileCoordinate, px, py float64) (domain.Readout, error) {
	p, err := s.grid.TilePixelToWorld(t, px, py)
	if err != nil {
		return domain.Readout{}, err
	}
	return s.ResolveMap(ctx, p), nil
}

// ResolveSphere resolves a pointer ray cast at the globe. A miss yields no
// coordinate.
func (s *SelectionService) ResolveSphere(ctx context.Context, r sphere.Ray) domain.Readout {
	return s.resolve(ctx, sphere.Project(r, s.globe), domain.View3D)
}

func (s *SelectionService) resolve(ctx context.Context, c domain.Coordinate, surface domain.ViewMode) domain.Readout {
	_, span := s.tracer.Start(ctx, telemetry.SpanResolve, trace.WithAttributes(
		attribute.String(telemetry.AttrSurface, string(surface)),
	))
	defer span.End()

	if c.Valid {
		c.GeoCoordinate = c.Round(CoordinatePrecision)
	}
	r := domain.Readout{Coordinate: c, Surface: surface}
	if l, _, ok := s.gazetteer.Nearest(c); ok {
		r.Landmark = &l
	}

	// The value is only stored if the index it came from is still the
	// published one; a select or commit in between forces a new lookup.
	stored := false
	for attempt := 0; attempt < resolveAttempts && !stored; attempt++ {
		ix := s.index.Load()
		r.Value = valueAt(ix, c)
		s.mu.Lock()
		if s.index.Load() == ix {
			s.readout = r
			stored = true
		}
		s.mu.Unlock()
	}
	if !stored {
		s.mu.Lock()
		r.Value = valueAt(s.index.Load(), c)
		s.readout = r
		s.mu.Unlock()
	}

	recordLookup("value", c.Valid, r.Value != nil)
	recordLookup("landmark", c.Valid, r.Landmark != nil)
	return r
}

// resolveAttempts bounds the lock-free lookups before resolve falls back to
// looking up under the lock.
const resolveAttempts = 3

func (s *SelectionService) lookupValue(c domain.Coordinate) *float64 {
	return valueAt(s.index.Load(), c)
}

func valueAt(ix *DatasetIndex, c domain.Coordinate) *float64 {
	v, ok := ix.Nearest(c)
	if !ok {
		return nil
	}
	return &v
}

func recordLookup(kind string, valid, found bool) {
	result := "hit"
	switch {
	case !valid:
		result = "no_coordinate"
	case !found:
		result = "miss"
	}
	metrics.Lookups.WithLabelValues(kind, result).Inc()
}

func (s *SelectionService) publishSelection(ctx context.Context, sel domain.Selection, reason string) {
	if s.events == nil {
		return
	}
	ev := &domain.SelectionEvent{
		Selection:   sel,
		Composition: Compose(sel.Dataset, sel.Opacity),
		Reason:      reason,
	}
	if err := s.events.PublishSelection(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish selection", "reason", reason, "error", err)
	}
}
