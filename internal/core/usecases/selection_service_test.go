package usecases_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/sphere"
	"github.com/samirrijal/selene/internal/pkg/tiling"
)

var exampleRows = []domain.DatasetRow{
	{Lat: 10, Lon: 10, Value: val(5)},
	{Lat: -10, Lon: -10, Value: val(9)},
}

func newService(src *mockSource, pub *mockPublisher, opts usecases.SelectionOptions) *usecases.SelectionService {
	gaz := usecases.NewGazetteer([]domain.Landmark{{Name: "X", Lat: 0, Lon: 0}}, 0)
	if pub == nil {
		return usecases.NewSelectionService(src, gaz, nil, opts)
	}
	return usecases.NewSelectionService(src, gaz, pub, opts)
}

func TestSelectionService_InitialState(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	st := svc.Snapshot()

	if st.Selection.Dataset != domain.NoDataset || st.Selection.ViewMode != domain.View3D || st.Selection.Opacity != 0.5 {
		t.Errorf("unexpected initial selection: %+v", st.Selection)
	}
	if st.Selection.Phase != domain.PhaseIdle {
		t.Errorf("expected idle, got %s", st.Selection.Phase)
	}
	c := svc.CurrentCoordinate()
	if !c.Valid || c.Lat != 0 || c.Lon != 90 {
		t.Errorf("expected display coordinate (0,90), got %+v", c)
	}
	if _, ok := svc.CurrentValue(); ok {
		t.Error("no value expected before any selection")
	}
}

func TestSelectionService_SelectAndResolve(t *testing.T) {
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			return exampleRows, nil
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})

	sel := svc.Select(context.Background(), domain.AlSi)
	if sel.Phase != domain.PhaseLoading || sel.Token != 1 {
		t.Errorf("expected loading with token 1, got %+v", sel)
	}
	svc.Wait()

	if got := svc.Selection(); got.Phase != domain.PhaseLoaded || got.Rows != 2 {
		t.Fatalf("expected loaded with 2 rows, got %+v", got)
	}

	r := svc.ResolveGeo(context.Background(), 9, 9)
	if r.Value == nil || *r.Value != 5 {
		t.Errorf("expected value 5, got %v", r.Value)
	}
	if v, ok := svc.CurrentValue(); !ok || v != 5 {
		t.Errorf("CurrentValue = %v, %v", v, ok)
	}
	if name, ok := svc.CurrentLandmarkName(); ok {
		t.Errorf("(9,9) is over 1000 km from X, got %q", name)
	}
}

func TestSelectionService_LookupWhileLoadingIsNoResult(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			<-release
			return exampleRows, nil
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})
	svc.Select(context.Background(), domain.AlSi)

	if r := svc.ResolveGeo(context.Background(), 10, 10); r.Value != nil {
		t.Errorf("lookup during load must be no result, got %v", *r.Value)
	}

	close(release)
	svc.Wait()
	if r := svc.ResolveGeo(context.Background(), 10, 10); r.Value == nil || *r.Value != 5 {
		t.Errorf("expected 5 after load, got %v", r.Value)
	}
}

func TestSelectionService_StaleLoadIsIgnored(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			if ds == domain.AlSi {
				// ignores cancellation and completes late
				<-release
				return []domain.DatasetRow{{Lat: 0, Lon: 0, Value: val(1)}}, nil
			}
			return []domain.DatasetRow{{Lat: 0, Lon: 0, Value: val(2)}}, nil
		},
	}
	pub := &mockPublisher{}
	svc := newService(src, pub, usecases.SelectionOptions{})

	svc.Select(context.Background(), domain.AlSi)
	svc.Select(context.Background(), domain.MgSi)
	close(release)
	svc.Wait()

	sel := svc.Selection()
	if sel.Dataset != domain.MgSi || sel.Phase != domain.PhaseLoaded {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if r := svc.ResolveGeo(context.Background(), 0, 0); r.Value == nil || *r.Value != 2 {
		t.Errorf("expected the newer dataset's value 2, got %v", r.Value)
	}
	if svc.Index().Dataset() != domain.MgSi {
		t.Errorf("published index belongs to %s", svc.Index().Dataset())
	}
	pub.mu.Lock()
	loaded := len(pub.loaded)
	pub.mu.Unlock()
	if loaded != 1 {
		t.Errorf("expected exactly one loaded event, got %d", loaded)
	}
}

func TestSelectionService_SelectWithdrawsOldRowsImmediately(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			if ds == domain.MgSi {
				<-release
				return []domain.DatasetRow{{Lat: 0, Lon: 0, Value: val(2)}}, nil
			}
			return []domain.DatasetRow{{Lat: 0, Lon: 0, Value: val(1)}}, nil
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})
	svc.Select(context.Background(), domain.AlSi)
	svc.Wait()

	svc.Select(context.Background(), domain.MgSi)
	if r := svc.ResolveGeo(context.Background(), 0, 0); r.Value != nil {
		t.Errorf("lookup after select observed old rows: %v", *r.Value)
	}
	close(release)
	svc.Wait()
}

func TestSelectionService_FetchFailureIsFailSoft(t *testing.T) {
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			return nil, errors.New("404 Not Found")
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})
	svc.Select(context.Background(), domain.FeLSi)
	svc.Wait()

	sel := svc.Selection()
	if sel.Phase != domain.PhaseFailed || sel.Dataset != domain.FeLSi {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if !strings.Contains(sel.LastError, "404") {
		t.Errorf("last error not recorded: %q", sel.LastError)
	}
	if r := svc.ResolveGeo(context.Background(), 0, 0); r.Value != nil {
		t.Error("failed load must behave as an empty dataset")
	}
	if c := svc.Composition(); !c.Map.OverlayVisible {
		t.Error("the overlay is still composited after a failed fetch")
	}
}

func TestSelectionService_FetchTimeout(t *testing.T) {
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{FetchTimeout: 20 * time.Millisecond})
	svc.Select(context.Background(), domain.CaKaSi)

	done := make(chan struct{})
	go func() { svc.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not time out")
	}
	if sel := svc.Selection(); sel.Phase != domain.PhaseFailed {
		t.Errorf("expected failed phase after timeout, got %s", sel.Phase)
	}
}

func TestSelectionService_SelectNoneResets(t *testing.T) {
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			return exampleRows, nil
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})
	ctx := context.Background()

	svc.Select(ctx, domain.AlSi)
	svc.Wait()
	svc.ResolveGeo(ctx, 9, 9)
	if _, err := svc.SetOpacity(ctx, 0.8); err != nil {
		t.Fatal(err)
	}

	sel := svc.Select(ctx, domain.NoDataset)
	if sel.Opacity != 0.5 || sel.Phase != domain.PhaseIdle {
		t.Errorf("unexpected selection after reset: %+v", sel)
	}
	if _, ok := svc.CurrentValue(); ok {
		t.Error("value should be cleared")
	}
	if _, ok := svc.CurrentLandmarkName(); ok {
		t.Error("landmark should be cleared")
	}
	if c := svc.CurrentCoordinate(); c.Lat != 0 || c.Lon != 90 {
		t.Errorf("coordinate should reset to (0,90), got %+v", c)
	}
	if svc.Index().Len() != 0 {
		t.Error("index should be empty")
	}
	if len(src.Calls()) != 1 {
		t.Errorf("selecting none must not fetch, calls=%v", src.Calls())
	}
}

func TestSelectionService_DatasetChangeResetsOpacity(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	ctx := context.Background()
	svc.Select(ctx, domain.AlSi)
	svc.Wait()
	if _, err := svc.SetOpacity(ctx, 0.9); err != nil {
		t.Fatal(err)
	}
	if sel := svc.Select(ctx, domain.MgAl); sel.Opacity != 0.5 {
		t.Errorf("expected opacity reset to 0.5, got %v", sel.Opacity)
	}
	svc.Wait()
}

func TestSelectionService_SetOpacity(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	ctx := context.Background()

	c, err := svc.SetOpacity(ctx, 1.7)
	if err != nil {
		t.Fatal(err)
	}
	if c.Slider != 1 || c.Map.Base != 1 {
		t.Errorf("expected clamped slider driving the base layer, got %+v", c)
	}

	if _, err := svc.SetOpacity(ctx, math.NaN()); !errors.Is(err, domain.ErrInvalidOpacity) {
		t.Errorf("expected ErrInvalidOpacity, got %v", err)
	}
	if svc.Selection().Opacity != 1 {
		t.Error("rejected value must not change opacity")
	}
}

func TestSelectionService_SetViewModeKeepsState(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	ctx := context.Background()
	_, _ = svc.SetOpacity(ctx, 0.2)

	sel, err := svc.SetViewMode(ctx, domain.View2D)
	if err != nil {
		t.Fatal(err)
	}
	if sel.ViewMode != domain.View2D || sel.Opacity != 0.2 {
		t.Errorf("unexpected selection: %+v", sel)
	}
	if _, err := svc.SetViewMode(ctx, "4D"); !errors.Is(err, domain.ErrInvalidViewMode) {
		t.Errorf("expected ErrInvalidViewMode, got %v", err)
	}
}

func TestSelectionService_ResolveMap(t *testing.T) {
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			return exampleRows, nil
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})
	ctx := context.Background()
	svc.Select(ctx, domain.AlSi)
	svc.Wait()

	r := svc.ResolveMap(ctx, tiling.Point{X: 189.0004, Y: 99.0004})
	if !r.Coordinate.Valid || r.Coordinate.Lat != 9 || r.Coordinate.Lon != 9 {
		t.Errorf("expected (9,9) after rounding, got %+v", r.Coordinate)
	}
	if r.Value == nil || *r.Value != 5 || r.Surface != domain.View2D {
		t.Errorf("unexpected readout %+v", r)
	}

	off := svc.ResolveMap(ctx, tiling.Point{X: 400, Y: 90})
	if off.Coordinate.Valid || off.Value != nil || off.Landmark != nil {
		t.Errorf("outside the extent must be no coordinate, got %+v", off)
	}
}

func TestSelectionService_ResolveTilePixel(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	r, err := svc.ResolveTilePixel(context.Background(), tiling.TileCoordinate{Zoom: 1, Column: 0, Row: -1}, 256, 128)
	if err != nil {
		t.Fatal(err)
	}
	if r.Landmark == nil || r.Landmark.Name != "X" {
		t.Errorf("expected landmark X at (0,0), got %+v", r)
	}
	if _, err := svc.ResolveTilePixel(context.Background(), tiling.TileCoordinate{Zoom: 12}, 0, 0); err == nil {
		t.Error("expected error for zoom out of range")
	}
}

func TestSelectionService_ResolveSphere(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	ctx := context.Background()

	hit := svc.ResolveSphere(ctx, sphere.Ray{Origin: sphere.Vec3{X: -5}, Direction: sphere.Vec3{X: 1}})
	if !hit.Coordinate.Valid || hit.Coordinate.Lat != 0 || hit.Coordinate.Lon != 0 {
		t.Fatalf("expected a hit at (0,0), got %+v", hit.Coordinate)
	}
	if hit.Landmark == nil {
		t.Error("expected landmark X")
	}

	miss := svc.ResolveSphere(ctx, sphere.Ray{Origin: sphere.Vec3{X: -5, Y: 3}, Direction: sphere.Vec3{X: 1}})
	if miss.Coordinate.Valid || miss.Landmark != nil {
		t.Errorf("a miss must not resolve to the (0,0) landmark, got %+v", miss)
	}
}

func TestSelectionService_ResolveGeoRanges(t *testing.T) {
	svc := newService(&mockSource{}, nil, usecases.SelectionOptions{})
	ctx := context.Background()

	if r := svc.ResolveGeo(ctx, 95, 0); r.Coordinate.Valid {
		t.Error("latitude 95 must be no coordinate")
	}
	r := svc.ResolveGeo(ctx, 0, 360)
	if !r.Coordinate.Valid || r.Coordinate.Lon != 0 {
		t.Errorf("longitude should wrap to 0, got %+v", r.Coordinate)
	}
}

func TestSelectionService_ValueFollowsLoadedRows(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			<-release
			return exampleRows, nil
		},
	}
	svc := newService(src, nil, usecases.SelectionOptions{})
	ctx := context.Background()
	svc.ResolveGeo(ctx, 9, 9)
	svc.Select(ctx, domain.AlSi)
	close(release)
	svc.Wait()

	if v, ok := svc.CurrentValue(); !ok || v != 5 {
		t.Errorf("displayed value should follow the loaded rows, got %v %v", v, ok)
	}
}

func TestSelectionService_Reload(t *testing.T) {
	n := 0.0
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			n++
			return []domain.DatasetRow{{Lat: 0, Lon: 0, Value: val(n)}}, nil
		},
	}
	pub := &mockPublisher{}
	svc := newService(src, pub, usecases.SelectionOptions{})
	ctx := context.Background()

	if svc.Reload(ctx, domain.AlSi) {
		t.Error("reload of an inactive dataset must be a no-op")
	}

	svc.Select(ctx, domain.AlSi)
	svc.Wait()
	_, _ = svc.SetOpacity(ctx, 0.7)

	if !svc.Reload(ctx, domain.AlSi) {
		t.Fatal("expected reload of the active dataset")
	}
	svc.Wait()

	sel := svc.Selection()
	if sel.Opacity != 0.7 {
		t.Errorf("reload must not reset opacity, got %v", sel.Opacity)
	}
	if r := svc.ResolveGeo(ctx, 0, 0); r.Value == nil || *r.Value != 2 {
		t.Errorf("expected refreshed value 2, got %v", r.Value)
	}

	want := []string{"dataset", "loaded", "opacity", "refresh", "loaded"}
	got := pub.Reasons()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestSelectionService_ResolveRacingSelectNone(t *testing.T) {
	// A large gazetteer keeps each resolve busy long enough for the
	// selection to change underneath it.
	landmarks := make([]domain.Landmark, 200000)
	for i := range landmarks {
		landmarks[i] = domain.Landmark{Name: "L", Lat: float64(i%160) - 80, Lon: float64(i%360) - 180}
	}
	src := &mockSource{
		fetchFn: func(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
			return exampleRows, nil
		},
	}
	svc := usecases.NewSelectionService(src, usecases.NewGazetteer(landmarks, 0), nil, usecases.SelectionOptions{})
	defer svc.Close()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		svc.Select(ctx, domain.AlSi)
		svc.Wait()

		done := make(chan struct{})
		go func() {
			defer close(done)
			svc.ResolveGeo(ctx, 10, 10)
		}()
		time.Sleep(time.Millisecond)
		svc.Select(ctx, domain.NoDataset)
		<-done

		if v, ok := svc.CurrentValue(); ok {
			t.Fatalf("iteration %d: withdrawn dataset value %v still displayed", i, v)
		}
	}
}
