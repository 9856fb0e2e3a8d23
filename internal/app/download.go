package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/choco"
	"github.com/blackwell-systems/chocobridge/internal/output"
	"github.com/blackwell-systems/chocobridge/internal/reference"
)

var (
	downloadFlagVersion string
	downloadFlagOutput  string
)

var downloadCmd = &cobra.Command{
	Use:   "download <name>",
	Short: "Download a package archive without installing it",
	Long: `Download a package archive into a directory without installing it.

Examples:
  chocobridge download git --output ./archives
  chocobridge download git --version 2.44.0 --output ./archives`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadFlagVersion, "version", "", "version to download (default: latest)")
	downloadCmd.Flags().StringVarP(&downloadFlagOutput, "output", "o", ".", "output directory")

	RootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	if err := os.MkdirAll(downloadFlagOutput, 0755); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	token := reference.Encode(args[0], downloadFlagVersion, "")
	path, err := b.provider.DownloadPackage(ctx, b.host, token, downloadFlagOutput)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderPackageTable([]choco.Package{statPackage(args[0], downloadFlagVersion, path)}))
	return nil
}
