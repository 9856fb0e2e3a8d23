package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chocobridge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the default configuration file if none exists.

The file lives under the XDG config directory and documents the engine
binary, engine config path, registry database path and progress settings.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	RootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Printf("configuration written to %s\n", path)
	return nil
}
