package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/output"
)

var sourcesAddFlagTrusted bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage package sources",
	Long: `List, add, remove and update package sources.

Without a subcommand, lists every source the engine is configured with,
merged with the provider's trust registry.

Examples:
  chocobridge sources
  chocobridge sources add internal https://feeds.example.com/choco --trusted
  chocobridge sources remove internal
  chocobridge sources update internal
  chocobridge sources registry`,
	RunE: runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name> <location>",
	Short: "Register a package source",
	Args:  cobra.ExactArgs(2),
	RunE:  runSourcesAdd,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a package source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

var sourcesUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Refresh a package source's feed metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesUpdate,
}

var sourcesRegistryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Show the provider's own source registry",
	Args:  cobra.NoArgs,
	RunE:  runSourcesRegistry,
}

func init() {
	sourcesAddCmd.Flags().BoolVar(&sourcesAddFlagTrusted, "trusted", false, "mark the source as trusted")

	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	sourcesCmd.AddCommand(sourcesUpdateCmd)
	sourcesCmd.AddCommand(sourcesRegistryCmd)
	RootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	return b.provider.ResolvePackageSources(ctx, b.host)
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	return b.provider.AddPackageSource(ctx, b.host, args[0], args[1], sourcesAddFlagTrusted)
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	return b.provider.RemovePackageSource(ctx, b.host, args[0])
}

func runSourcesUpdate(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx := cmd.Context()
	if err := b.provider.InitializeProvider(ctx, b.host); err != nil {
		return err
	}

	return b.provider.UpdatePackageSource(ctx, b.host, args[0])
}

func runSourcesRegistry(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	sources, err := b.store.ListSources()
	if err != nil {
		return err
	}
	fmt.Print(output.RenderSourceTable(sources))
	return nil
}
