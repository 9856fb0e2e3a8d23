package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/feedstore"
)

// ResolvePackageSources yields every configured package source, merging the
// engine's feed list with the provider's own trust registry. The engine
// list is cached between calls; InvalidateSources drops the cache when the
// engine configuration changes out-of-band.
func (p *Provider) ResolvePackageSources(ctx context.Context, host Host) error {
	feeds, err := p.feeds(ctx)
	if err != nil {
		host.Error("failed to resolve package sources: %v", err)
		return fmt.Errorf("resolve package sources: %w", err)
	}

	for _, feed := range feeds {
		trusted := false
		registered := false
		if p.store != nil {
			src, err := p.store.GetSource(feed.Name)
			if err != nil {
				host.Warning("trust lookup for source %s failed: %v", feed.Name, err)
			} else if src != nil {
				trusted = src.Trusted
				registered = true
			}
		}
		host.YieldPackageSource(feed.Name, feed.Location, trusted, registered)
	}
	return nil
}

// AddPackageSource registers a source with the engine and records the
// host's trust decision in the provider registry.
func (p *Provider) AddPackageSource(ctx context.Context, host Host, name, location string, trusted bool) error {
	feed := choco.FeedConfiguration{Name: name, Location: location}
	if err := p.client.AddFeedConfiguration(ctx, feed); err != nil {
		host.Error("failed to add package source %s: %v", name, err)
		return fmt.Errorf("add package source %s: %w", name, err)
	}

	if p.store != nil {
		src := &feedstore.Source{
			Name:         name,
			Location:     location,
			Trusted:      trusted,
			RegisteredAt: time.Now(),
		}
		if err := p.store.UpsertSource(src); err != nil {
			host.Warning("source %s added to engine but trust was not persisted: %v", name, err)
		}
	}

	p.InvalidateSources()
	host.YieldPackageSource(name, location, trusted, true)
	return nil
}

// RemovePackageSource removes a source from the engine and the provider
// registry.
func (p *Provider) RemovePackageSource(ctx context.Context, host Host, name string) error {
	if err := p.client.RemoveFeedConfiguration(ctx, name); err != nil {
		host.Error("failed to remove package source %s: %v", name, err)
		return fmt.Errorf("remove package source %s: %w", name, err)
	}

	if p.store != nil {
		if err := p.store.RemoveSource(name); err != nil {
			host.Warning("source %s removed from engine but not from registry: %v", name, err)
		}
	}

	p.InvalidateSources()
	host.Verbose("package source %s removed", name)
	return nil
}

// UpdatePackageSource re-registers a source so the engine refreshes its
// feed metadata.
func (p *Provider) UpdatePackageSource(ctx context.Context, host Host, name string) error {
	feeds, err := p.feeds(ctx)
	if err != nil {
		host.Error("failed to look up source %s: %v", name, err)
		return fmt.Errorf("update package source %s: %w", name, err)
	}

	for _, feed := range feeds {
		if feed.Name != name {
			continue
		}
		if err := p.client.UpdateFeed(ctx, feed); err != nil {
			host.Error("failed to update source %s: %v", name, err)
			return fmt.Errorf("update package source %s: %w", name, err)
		}
		p.InvalidateSources()
		host.Verbose("package source %s updated", name)
		return nil
	}

	host.Warning("package source %s is not configured", name)
	return nil
}

// InvalidateSources drops the cached engine feed list. Safe to call from
// any goroutine; the feed watcher calls it when the engine's sources file
// changes on disk.
func (p *Provider) InvalidateSources() {
	p.mu.Lock()
	p.cachedFeeds = nil
	p.mu.Unlock()
}

// feeds returns the engine feed list, consulting the cache first.
func (p *Provider) feeds(ctx context.Context) ([]choco.FeedConfiguration, error) {
	p.mu.Lock()
	cached := p.cachedFeeds
	p.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	feeds, err := p.client.GetFeedConfigurations(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cachedFeeds = feeds
	p.mu.Unlock()
	return feeds, nil
}
