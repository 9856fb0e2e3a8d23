package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/reference"
)

var installFlagVersion string

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a package",
	Long: `Install a package by name, optionally pinned to a version.

The engine resolves dependencies and performs the actual install; progress
is reported per engine phase as it streams in.

Examples:
  chocobridge install git
  chocobridge install git --version 2.44.0`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installFlagVersion, "version", "", "version to install (default: latest)")

	RootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	// A host hands back a token from an earlier find; the harness builds
	// the equivalent token from its arguments.
	token := reference.Encode(args[0], installFlagVersion, "")
	return b.provider.InstallPackage(ctx, b.host, token)
}
