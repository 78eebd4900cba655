package telemetry

// Instrumentation names shared by spans and logs.
const (
	TracerName = "github.com/samirrijal/selene"

	// Spans
	SpanDatasetLoad    = "dataset.load"
	SpanDatasetFetch   = "dataset.fetch"
	SpanDatasetRefresh = "dataset.refresh"
	SpanResolve        = "resolve"

	// Attributes
	AttrDataset   = "selene.dataset"
	AttrToken     = "selene.selection.token"
	AttrRows      = "selene.dataset.rows"
	AttrSkipped   = "selene.dataset.skipped_rows"
	AttrSurface   = "selene.surface"
	AttrCacheHit  = "selene.cache.hit"
	AttrStaleLoad = "selene.dataset.stale"
)
