package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/beancounter/internal/infrastructure/config"
	"github.com/jbctechsolutions/beancounter/internal/presentation/cli/output"
)

// NewConfigCmd creates the configuration management command.
func NewConfigCmd(globals *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the beancounter configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(globals))
	cmd.AddCommand(newConfigPathCmd(globals))

	return cmd
}

func newConfigInitCmd(globals *GlobalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Long: `Write a configuration file with the default settings.

The file is written to --config when given, otherwise to
~/.beancounter/config.yaml. An existing file is kept unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd, globals)
			if err != nil {
				return err
			}

			path, loader, err := configPath(globals)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			if err := loader.Save(config.NewDefaultConfig(), path); err != nil {
				return err
			}
			formatter.Success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func newConfigPathCmd(globals *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd, globals)
			if err != nil {
				return err
			}

			path, _, err := configPath(globals)
			if err != nil {
				return err
			}

			_, statErr := os.Stat(path)
			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(map[string]any{
					"path":   path,
					"exists": statErr == nil,
				})
			}
			formatter.Println("%s", path)
			return nil
		},
	}
}

// configPath resolves the config file the other commands would read.
func configPath(globals *GlobalFlags) (string, *config.Loader, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	if globals.ConfigFile != "" {
		return globals.ConfigFile, loader, nil
	}
	return loader.DefaultConfigPath(), loader, nil
}
