package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/blackwell-systems/chocobridge/internal/activity"
	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/reference"
)

// FindPackage searches the configured feeds and yields one software
// identity per match. batchID correlates the yields of one host batch; an
// empty batchID gets a fresh one.
func (p *Provider) FindPackage(ctx context.Context, host Host, name, requiredVersion, minimumVersion, maximumVersion, batchID string) error {
	if batchID == "" {
		batchID = uuid.NewString()
	}
	host.Verbose("find package %q batch %s", name, batchID)

	filter := choco.SearchFilter{
		Name:            name,
		RequiredVersion: requiredVersion,
		MinimumVersion:  minimumVersion,
		MaximumVersion:  maximumVersion,
	}

	pkgs, err := p.client.GetAvailablePackages(ctx, filter, func(ev choco.ProgressEvent) {
		host.Verbose("%s %s (%d%%)", ev.Action, ev.Message, ev.Percent)
	})
	if err != nil {
		host.Error("package search failed: %v", err)
		return fmt.Errorf("find package %q: %w", name, err)
	}

	for _, pkg := range pkgs {
		p.yieldPackage(host, pkg)
	}
	return nil
}

// GetInstalledPackages yields one software identity per locally installed
// package matching the filter.
func (p *Provider) GetInstalledPackages(ctx context.Context, host Host, name, requiredVersion, minimumVersion, maximumVersion string) error {
	filter := choco.SearchFilter{
		Name:            name,
		RequiredVersion: requiredVersion,
		MinimumVersion:  minimumVersion,
		MaximumVersion:  maximumVersion,
	}

	pkgs, err := p.client.GetInstalledPackages(ctx, filter)
	if err != nil {
		host.Error("installed package query failed: %v", err)
		return fmt.Errorf("get installed packages: %w", err)
	}

	for _, pkg := range pkgs {
		p.yieldPackage(host, pkg)
	}
	return nil
}

// InstallPackage installs the package identified by token. Progress
// activities rotate as the engine moves through its phases; the final
// identity yield happens even when the engine fails, so the host always
// receives consistent identity information for the token it passed in.
func (p *Provider) InstallPackage(ctx context.Context, host Host, token string) error {
	name, version, summary, err := p.decodeToken(host, token)
	if err != nil {
		return err
	}

	tracker := activity.NewTracker(host, p.cfg.ParentActivityID, "Installing "+name)

	installErr := p.client.InstallPackages(ctx, []string{name}, version, func(ev choco.ProgressEvent) {
		tracker.Observe(ev.Action, ev.Percent, ev.Message)
	})
	tracker.Finish(installErr == nil)

	if installErr != nil {
		host.Error("install of %s failed: %v", name, installErr)
	}
	host.YieldSoftwareIdentity(token, name, version, ProviderName, summary)

	if installErr != nil {
		return fmt.Errorf("install package %s: %w", name, installErr)
	}
	host.Verbose("installed %s %s", name, version)
	return nil
}

// UninstallPackage removes the package identified by token, with the same
// rotating-activity and best-effort-yield behavior as InstallPackage.
func (p *Provider) UninstallPackage(ctx context.Context, host Host, token string) error {
	name, version, summary, err := p.decodeToken(host, token)
	if err != nil {
		return err
	}

	tracker := activity.NewTracker(host, p.cfg.ParentActivityID, "Uninstalling "+name)

	removeErr := p.client.RemovePackages(ctx, []string{name}, func(ev choco.ProgressEvent) {
		tracker.Observe(ev.Action, ev.Percent, ev.Message)
	})
	tracker.Finish(removeErr == nil)

	if removeErr != nil {
		host.Error("uninstall of %s failed: %v", name, removeErr)
	}
	host.YieldSoftwareIdentity(token, name, version, ProviderName, summary)

	if removeErr != nil {
		return fmt.Errorf("uninstall package %s: %w", name, removeErr)
	}
	host.Verbose("uninstalled %s %s", name, version)
	return nil
}

// DownloadPackage fetches the package archive identified by token into
// location and returns the archive path. Unlike install and uninstall,
// download runs under one flat activity opened before the engine call: even
// an engine failure before the first progress event leaves the host with a
// matched start/complete pair.
func (p *Provider) DownloadPackage(ctx context.Context, host Host, token, location string) (string, error) {
	name, version, summary, err := p.decodeToken(host, token)
	if err != nil {
		return "", err
	}

	span := activity.StartFlat(host, p.cfg.ParentActivityID, "Downloading "+name)

	path, downloadErr := p.client.DownloadPackage(ctx, name, version, location, func(ev choco.ProgressEvent) {
		span.Observe(ev.Action, ev.Percent, ev.Message)
	})
	span.Finish(downloadErr == nil)

	if downloadErr != nil {
		host.Error("download of %s failed: %v", name, downloadErr)
	}
	host.YieldSoftwareIdentity(token, name, version, ProviderName, summary)

	if downloadErr != nil {
		return "", fmt.Errorf("download package %s: %w", name, downloadErr)
	}
	host.Verbose("downloaded %s %s to %s", name, version, path)
	return path, nil
}

// decodeToken recovers the identity triple from a host-supplied token. The
// name is required; a token that cannot produce one is rejected through the
// diagnostic channel. Version and summary are best-effort so partially
// damaged tokens still drive a usable operation.
func (p *Provider) decodeToken(host Host, token string) (name, version, summary string, err error) {
	name, err = reference.Name(token)
	if err != nil || name == "" {
		host.Error("malformed package reference %q", token)
		if err == nil {
			err = reference.ErrMalformedToken
		}
		return "", "", "", fmt.Errorf("decode package reference: %w", err)
	}

	version, verErr := reference.Version(token)
	summary, sumErr := reference.Summary(token)
	if verErr != nil || sumErr != nil {
		host.Warning("package reference %q is missing fields, proceeding with name %q", token, name)
	}
	return name, version, summary, nil
}

// yieldPackage encodes a package into its reference token and yields it.
func (p *Provider) yieldPackage(host Host, pkg choco.Package) {
	source := pkg.Source
	if source == "" {
		source = ProviderName
	}
	token := reference.Encode(pkg.Name, pkg.Version, pkg.Summary)
	host.YieldSoftwareIdentity(token, pkg.Name, pkg.Version, source, pkg.Summary)
}
