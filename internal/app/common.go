package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/config"
	"github.com/blackwell-systems/chocobridge/internal/feedstore"
	"github.com/blackwell-systems/chocobridge/internal/feedwatch"
	"github.com/blackwell-systems/chocobridge/internal/output"
	"github.com/blackwell-systems/chocobridge/internal/provider"
)

// tableHost gathers yielded software identities so a command can render
// them as one table after the operation finishes. Activities and
// diagnostics still go straight to the console host.
type tableHost struct {
	*output.ConsoleHost
	pkgs []choco.Package
}

func (h *tableHost) YieldSoftwareIdentity(token, name, version, source, summary string) {
	h.pkgs = append(h.pkgs, choco.Package{
		Name:    name,
		Version: version,
		Summary: summary,
		Source:  source,
	})
}

// statPackage builds the table row for a downloaded archive, picking up its
// on-disk size when the file is readable.
func statPackage(name, version, path string) choco.Package {
	pkg := choco.Package{Name: name, Version: version}
	if fi, err := os.Stat(path); err == nil {
		pkg.SizeBytes = fi.Size()
	}
	return pkg
}

// bridge bundles everything a command needs to run provider operations.
type bridge struct {
	cfg      config.Config
	provider *provider.Provider
	host     *output.ConsoleHost
	store    *feedstore.Store
	watcher  *feedwatch.Watcher
}

// close releases the bridge's resources.
func (b *bridge) close() {
	if b.watcher != nil {
		if err := b.watcher.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "chocobridge: stopping feed watcher: %v\n", err)
		}
	}
	if b.store != nil {
		b.store.Close()
	}
}

// loadConfig resolves and loads the configuration file.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// newBridge builds the provider with its store, console host and feed
// watcher from the configuration. Callers must close() it.
func newBridge() (*bridge, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath, err = config.DefaultDatabasePath()
		if err != nil {
			return nil, err
		}
	}
	store, err := feedstore.New(dbPath)
	if err != nil {
		return nil, err
	}

	client := choco.NewExecClient(cfg.EngineBinary)
	prov := provider.New(client, store, provider.Config{
		ParentActivityID: cfg.ParentActivityID,
		Session:          cfg.SessionOptions(),
	})

	b := &bridge{
		cfg:      cfg,
		provider: prov,
		host:     output.NewConsoleHost(os.Stdout, flagVerbose),
		store:    store,
	}

	// Engine config edits made behind the provider's back (running the
	// engine CLI directly) drop the cached source list.
	if cfg.EngineConfigPath != "" {
		w, err := feedwatch.New(cfg.EngineConfigPath, prov.InvalidateSources, slog.Default())
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			b.host.Warning("feed watcher disabled: %v", err)
		} else {
			b.watcher = w
		}
	}

	return b, nil
}
