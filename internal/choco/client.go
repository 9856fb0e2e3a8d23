// Package choco wraps the Chocolatey engine behind a narrow client
// interface. The engine owns everything hard about package management —
// dependency resolution, transactional installs, feed negotiation — and this
// package deliberately knows nothing about any of it: each method is one
// blocking engine invocation that returns collected results and an explicit
// error, with progress delivered through a per-call callback while the call
// is in flight.
package choco

import (
	"context"
	"errors"
)

// ErrEngineFailure marks any failure raised by the engine itself, as
// opposed to a failure launching or talking to it. Provider operations
// branch on this to report engine errors through the host diagnostic
// channel instead of aborting.
var ErrEngineFailure = errors.New("choco: engine operation failed")

// Client is the vendor engine surface the provider consumes. One Client is
// good for any number of sequential calls after InitializeSession; methods
// are not required to be safe for concurrent use.
type Client interface {
	// InitializeSession verifies the engine is reachable and applies
	// session-wide options. Must be called before any other method.
	InitializeSession(ctx context.Context, opts SessionOptions) error

	// SetConfiguration sets one engine configuration value.
	SetConfiguration(ctx context.Context, key, value string) error

	// GetFeedConfigurations lists the feeds the engine is configured with.
	GetFeedConfigurations(ctx context.Context) ([]FeedConfiguration, error)

	// AddFeedConfiguration registers a feed with the engine, overwriting
	// any feed of the same name.
	AddFeedConfiguration(ctx context.Context, feed FeedConfiguration) error

	// RemoveFeedConfiguration removes a feed by name.
	RemoveFeedConfiguration(ctx context.Context, name string) error

	// UpdateFeed re-registers the named feed so the engine refreshes its
	// metadata for it.
	UpdateFeed(ctx context.Context, feed FeedConfiguration) error

	// GetAvailablePackages searches the configured feeds.
	GetAvailablePackages(ctx context.Context, filter SearchFilter, progress ProgressFunc) ([]Package, error)

	// GetInstalledPackages lists the local install inventory.
	GetInstalledPackages(ctx context.Context, filter SearchFilter) ([]Package, error)

	// DownloadPackage fetches a package archive into destDir without
	// installing it and returns the archive path.
	DownloadPackage(ctx context.Context, name, version, destDir string, progress ProgressFunc) (string, error)

	// InstallPackages installs the named packages, optionally pinned to a
	// version (applied to every name; callers pass one name per call when
	// versions differ).
	InstallPackages(ctx context.Context, names []string, version string, progress ProgressFunc) error

	// RemovePackages uninstalls the named packages.
	RemovePackages(ctx context.Context, names []string, progress ProgressFunc) error
}
