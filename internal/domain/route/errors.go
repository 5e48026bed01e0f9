package route

import "errors"

// Route-generation failure taxonomy. Each failure mode is a distinct,
// inspectable value; callers compare with errors.Is.
var (
	// ErrNoCandidates means the POI search yielded nothing. The user should
	// widen their filters or increase duration.
	ErrNoCandidates = errors.New("no points of interest found in search area")

	// ErrSourceUnavailable means the POI query transport itself failed,
	// distinct from a search that found nothing.
	ErrSourceUnavailable = errors.New("point of interest source unavailable")

	// ErrRoutingUnavailable means the routing collaborator failed or returned
	// no path. Non-fatal: it triggers the straight-line polyline fallback and
	// is never surfaced to the end user.
	ErrRoutingUnavailable = errors.New("routing service unavailable")

	// ErrLocationUnavailable means no usable origin coordinate was obtainable.
	ErrLocationUnavailable = errors.New("origin location unavailable")
)
