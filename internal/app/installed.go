package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/output"
)

var installedFlagVersion string

var installedCmd = &cobra.Command{
	Use:   "installed [name]",
	Short: "List locally installed packages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInstalled,
}

func init() {
	installedCmd.Flags().StringVar(&installedFlagVersion, "version", "", "exact version to match")

	RootCmd.AddCommand(installedCmd)
}

func runInstalled(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	host := &tableHost{ConsoleHost: b.host}
	if err := b.provider.GetInstalledPackages(ctx, host, name, installedFlagVersion, "", ""); err != nil {
		return err
	}
	fmt.Print(output.RenderPackageTable(host.pkgs))
	return nil
}
