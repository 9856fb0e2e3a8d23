package choco

// Package is one package record reported by the engine, from either a feed
// search or the local install inventory.
type Package struct {
	Name      string
	Version   string
	Summary   string
	Source    string
	SizeBytes int64
	Installed bool
}

// FeedConfiguration is one configured package feed as the engine sees it.
// The engine does not track host-level trust; that lives in the provider's
// own feed store.
type FeedConfiguration struct {
	Name     string
	Location string
	Disabled bool
	Priority int
}

// ProgressEvent is one progress report from a long-running engine call.
// Action is the engine's phase identifier (e.g. "Downloading",
// "Installing"); Percent is 0-100; Message is the free-form remainder of
// the engine's progress line.
type ProgressEvent struct {
	Action  string
	Percent int
	Message string
}

// ProgressFunc receives progress events while an engine call is in flight.
// It is invoked sequentially from the goroutine draining the engine's
// output; a nil ProgressFunc disables progress delivery for that call.
type ProgressFunc func(ProgressEvent)

// SearchFilter narrows a package query. Empty fields impose no constraint.
type SearchFilter struct {
	Name            string
	RequiredVersion string
	MinimumVersion  string
	MaximumVersion  string
}

// SessionOptions configures an engine session at initialization time.
type SessionOptions struct {
	// CacheLocation overrides the engine's download cache directory.
	CacheLocation string

	// AllowPrerelease includes prerelease versions in searches and installs.
	AllowPrerelease bool
}
