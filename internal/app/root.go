// Package app is the chocobridge command tree: a local harness that drives
// the provider operations directly, standing in for a package-management
// host during development and testing.
package app

import (
	"github.com/spf13/cobra"
)

var (
	configPath  string
	flagVerbose bool

	// RootCmd is the root command for chocobridge
	RootCmd = &cobra.Command{
		Use:   "chocobridge",
		Short: "Chocolatey package provider bridge",
		Long: `chocobridge bridges a package-management host to the Chocolatey engine:
it searches feeds, installs, uninstalls and downloads packages, and manages
package sources, reporting results and progress the way a provider reports
them to its host.

The commands below drive the provider surface directly, which makes them a
convenient way to exercise and debug the bridge without a host attached.

Examples:
  # Write the default configuration file
  chocobridge init

  # Search the configured feeds
  chocobridge find git

  # Install / uninstall
  chocobridge install git --version 2.44.0
  chocobridge uninstall git

  # Download an archive without installing
  chocobridge download git --output ./archives

  # Manage package sources
  chocobridge sources
  chocobridge sources add internal https://feeds.example.com/choco --trusted`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: XDG config dir)")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose diagnostic output")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
