package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/output"
)

var (
	findFlagVersion    string
	findFlagMinVersion string
	findFlagMaxVersion string
)

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Search the configured feeds for packages",
	Long: `Search the configured package feeds and print one line per match.

Version constraints narrow the results:
  --version       exact version
  --min-version   lowest acceptable version
  --max-version   highest acceptable version

Examples:
  chocobridge find git
  chocobridge find git --min-version 2.40 --max-version 2.47`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().StringVar(&findFlagVersion, "version", "", "exact version to match")
	findCmd.Flags().StringVar(&findFlagMinVersion, "min-version", "", "minimum version to match")
	findCmd.Flags().StringVar(&findFlagMaxVersion, "max-version", "", "maximum version to match")

	RootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	host := &tableHost{ConsoleHost: b.host}
	if err := b.provider.FindPackage(ctx, host, args[0], findFlagVersion, findFlagMinVersion, findFlagMaxVersion, ""); err != nil {
		return err
	}
	fmt.Print(output.RenderPackageTable(host.pkgs))
	return nil
}
