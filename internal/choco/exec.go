package choco

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultBinary is the engine executable resolved from PATH when no
// explicit path is configured.
const DefaultBinary = "choco"

// ExecClient implements Client by invoking the engine executable. Each
// method is one engine process: spawn, drain, wait.
type ExecClient struct {
	binary string
	opts   SessionOptions
}

// NewExecClient returns an ExecClient for the given engine binary. An empty
// binary falls back to DefaultBinary.
func NewExecClient(binary string) *ExecClient {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecClient{binary: binary}
}

// InitializeSession checks that the engine responds and records the session
// options applied to later calls.
func (c *ExecClient) InitializeSession(ctx context.Context, opts SessionOptions) error {
	if _, err := c.run(ctx, "--version"); err != nil {
		return fmt.Errorf("engine not available at %q: %w", c.binary, err)
	}

	c.opts = opts

	if opts.CacheLocation != "" {
		if err := c.SetConfiguration(ctx, "cacheLocation", opts.CacheLocation); err != nil {
			return err
		}
	}
	return nil
}

// SetConfiguration sets one engine configuration value.
func (c *ExecClient) SetConfiguration(ctx context.Context, key, value string) error {
	_, err := c.run(ctx, "config", "set", "--name", key, "--value", value)
	return err
}

// GetFeedConfigurations lists the engine's configured feeds via the
// machine-readable source listing.
func (c *ExecClient) GetFeedConfigurations(ctx context.Context) ([]FeedConfiguration, error) {
	out, err := c.run(ctx, "source", "list", "--limit-output")
	if err != nil {
		return nil, err
	}
	return parseSourceList(out), nil
}

// AddFeedConfiguration registers a feed, overwriting a same-named one.
func (c *ExecClient) AddFeedConfiguration(ctx context.Context, feed FeedConfiguration) error {
	args := []string{"source", "add", "--name", feed.Name, "--source", feed.Location}
	if feed.Priority != 0 {
		args = append(args, "--priority", fmt.Sprint(feed.Priority))
	}
	if _, err := c.run(ctx, args...); err != nil {
		return err
	}
	if feed.Disabled {
		_, err := c.run(ctx, "source", "disable", "--name", feed.Name)
		return err
	}
	return nil
}

// RemoveFeedConfiguration removes a feed by name.
func (c *ExecClient) RemoveFeedConfiguration(ctx context.Context, name string) error {
	_, err := c.run(ctx, "source", "remove", "--name", name)
	return err
}

// UpdateFeed re-registers the feed so the engine refreshes its metadata.
func (c *ExecClient) UpdateFeed(ctx context.Context, feed FeedConfiguration) error {
	return c.AddFeedConfiguration(ctx, feed)
}

// GetAvailablePackages searches the configured feeds. The engine has no
// native min/max version search, so version-range filtering happens on the
// collected results.
func (c *ExecClient) GetAvailablePackages(ctx context.Context, filter SearchFilter, progress ProgressFunc) ([]Package, error) {
	args := []string{"search", "--limit-output", "--verbose"}
	if filter.Name != "" {
		args = append(args, filter.Name)
	}
	if filter.RequiredVersion != "" {
		args = append(args, "--version", filter.RequiredVersion)
	}
	if c.opts.AllowPrerelease {
		args = append(args, "--prerelease")
	}

	out, err := c.runStream(ctx, progress, args...)
	if err != nil {
		return nil, err
	}

	pkgs := parsePackageList(out, false)
	return filterVersionRange(pkgs, filter), nil
}

// GetInstalledPackages lists the local install inventory.
func (c *ExecClient) GetInstalledPackages(ctx context.Context, filter SearchFilter) ([]Package, error) {
	args := []string{"list", "--limit-output"}
	if filter.Name != "" {
		args = append(args, filter.Name)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	pkgs := parsePackageList(out, true)
	if filter.RequiredVersion != "" {
		kept := pkgs[:0]
		for _, p := range pkgs {
			if p.Version == filter.RequiredVersion {
				kept = append(kept, p)
			}
		}
		pkgs = kept
	}
	return filterVersionRange(pkgs, filter), nil
}

// DownloadPackage fetches a package archive into destDir without installing
// it and returns the archive path.
func (c *ExecClient) DownloadPackage(ctx context.Context, name, version, destDir string, progress ProgressFunc) (string, error) {
	args := []string{"download", name, "--output-directory", destDir}
	if version != "" {
		args = append(args, "--version", version)
	}

	if _, err := c.runStream(ctx, progress, args...); err != nil {
		return "", err
	}

	archive := name + ".nupkg"
	if version != "" {
		archive = name + "." + version + ".nupkg"
	}
	return filepath.Join(destDir, archive), nil
}

// InstallPackages installs the named packages.
func (c *ExecClient) InstallPackages(ctx context.Context, names []string, version string, progress ProgressFunc) error {
	args := append([]string{"install"}, names...)
	args = append(args, "--yes")
	if version != "" {
		args = append(args, "--version", version)
	}
	if c.opts.AllowPrerelease {
		args = append(args, "--prerelease")
	}

	_, err := c.runStream(ctx, progress, args...)
	return err
}

// RemovePackages uninstalls the named packages.
func (c *ExecClient) RemovePackages(ctx context.Context, names []string, progress ProgressFunc) error {
	args := append([]string{"uninstall"}, names...)
	args = append(args, "--yes")

	_, err := c.runStream(ctx, progress, args...)
	return err
}

// run executes the engine and returns its stdout. Engine exit failures are
// wrapped as ErrEngineFailure with stderr attached.
func (c *ExecClient) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: %s %s: %v (stderr: %s)",
				ErrEngineFailure, c.binary, strings.Join(args, " "), err, bytes.TrimSpace(exitErr.Stderr))
		}
		return "", fmt.Errorf("%s %s: %w", c.binary, strings.Join(args, " "), err)
	}
	return string(output), nil
}

// runStream executes the engine while scanning its stdout line by line,
// delivering progress lines to the callback and collecting everything else
// as the result output. The callback is invoked sequentially on the calling
// goroutine while the engine runs.
func (c *ExecClient) runStream(ctx context.Context, progress ProgressFunc, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", c.binary, strings.Join(args, " "), err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%s %s: %w", c.binary, strings.Join(args, " "), err)
	}

	var collected strings.Builder
	scanner := bufio.NewScanner(stdout)
	// Package descriptions can push a single list line well past the
	// default 64 KiB scanner limit.
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if ev, ok := parseProgressLine(line); ok {
			if progress != nil {
				progress(ev)
			}
			continue
		}
		collected.WriteString(line)
		collected.WriteByte('\n')
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("%w: %s %s: %v (stderr: %s)",
			ErrEngineFailure, c.binary, strings.Join(args, " "), err, bytes.TrimSpace(stderr.Bytes()))
	}
	if scanErr != nil {
		return "", fmt.Errorf("reading %s output: %w", c.binary, scanErr)
	}
	return collected.String(), nil
}
