// Package provider implements the plugin surface a package-management host
// invokes: find, install, uninstall, download and source management, each
// forwarded to the Chocolatey engine and translated into the host's yield
// and activity callbacks. The provider owns no package-management logic of
// its own; its job is the reference token contract and the progress
// bookkeeping between the two sides.
//
// Operations are synchronous: the host calls one at a time and blocks until
// it returns. Progress state is private to each call, so a host that does
// overlap calls against one Provider still gets a coherent activity stream
// per operation.
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/feedstore"
)

// ProviderName is the name this provider reports to the host.
const ProviderName = "chocolatey"

// ProviderVersion is the plugin version reported via GetFeatures.
const ProviderVersion = "1.0.0"

// Config carries the host-supplied provider settings.
type Config struct {
	// ParentActivityID is the fixed parent under which every progress
	// activity is started.
	ParentActivityID int

	// Session options passed through to the engine.
	Session choco.SessionOptions
}

// Provider bridges the host to the engine. Create with New, then call
// InitializeProvider before any other operation.
type Provider struct {
	client choco.Client
	store  *feedstore.Store
	cfg    Config

	sessionID string

	mu          sync.Mutex
	cachedFeeds []choco.FeedConfiguration
}

// New creates a Provider over the given engine client and source registry.
// The store may be nil, in which case source trust is not persisted and
// every source is reported untrusted.
func New(client choco.Client, store *feedstore.Store, cfg Config) *Provider {
	return &Provider{
		client: client,
		store:  store,
		cfg:    cfg,
	}
}

// SessionID returns the id assigned by InitializeProvider, or "" before it.
func (p *Provider) SessionID() string {
	return p.sessionID
}

// InitializeProvider starts an engine session and assigns this provider
// instance a session id.
func (p *Provider) InitializeProvider(ctx context.Context, host Host) error {
	if err := p.client.InitializeSession(ctx, p.cfg.Session); err != nil {
		host.Error("failed to initialize engine session: %v", err)
		return fmt.Errorf("initialize provider: %w", err)
	}

	p.sessionID = uuid.NewString()
	if p.store != nil {
		if err := p.store.SetMeta("session_id", p.sessionID); err != nil {
			host.Warning("failed to persist session id: %v", err)
		}
	}

	host.Verbose("provider %s session %s initialized", ProviderName, p.sessionID)
	return nil
}

// GetFeatures reports the provider's static capabilities.
func (p *Provider) GetFeatures() map[string][]string {
	return map[string][]string{
		"supported-extensions": {"nupkg"},
		"supported-schemes":    {"http", "https", "file"},
		"provider-version":     {ProviderVersion},
	}
}

// DynamicOption describes one host-settable option for an option category.
type DynamicOption struct {
	Name     string
	Type     string
	Required bool
}

// GetDynamicOptions lists the options the provider understands for the
// given category. Unknown categories yield no options rather than an error.
func (p *Provider) GetDynamicOptions(category string) []DynamicOption {
	switch category {
	case "Package":
		return []DynamicOption{
			{Name: "AllowPrereleaseVersions", Type: "switch"},
		}
	case "Source":
		return []DynamicOption{
			{Name: "Priority", Type: "int"},
		}
	case "Install":
		return []DynamicOption{
			{Name: "PackageSaveLocation", Type: "string"},
		}
	default:
		return nil
	}
}
