package dedupe

// Package dedupe provides the shared singleflight group used to
// deduplicate concurrent export-snapshot builds. Using a centralized
// singleflight.Group ensures that only one snapshot is assembled for a
// given encounter while other callers wait for the result.

import "golang.org/x/sync/singleflight"

// ExportGroup deduplicates export snapshot requests keyed by encounter
// id (e.g. "export:42").
var ExportGroup singleflight.Group
