package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/reference"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Uninstall a package",
	Args:  cobra.ExactArgs(1),
	RunE:  runUninstall,
}

func init() {
	RootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	token := reference.Encode(args[0], "", "")
	return b.provider.UninstallPackage(ctx, b.host, token)
}
