// Package commands implements the splitpack subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/havonz/file-split-packer/internal/config"
	"github.com/havonz/file-split-packer/internal/logging"
)

// rootOptions carries the persistent flags and the settings they resolve to.
type rootOptions struct {
	configPath string
	debug      bool
	logFile    string

	settings *config.Settings
	cleanup  func() error
}

// NewRootCommand builds the splitpack command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "splitpack",
		Short: "Split files and directories into zip parts and restore them",
		Long: `splitpack splits a file or directory into numbered parts, each an
optionally encrypted zip container or a raw slice of one, and restores
the original from the parts.

Commands:
  split     Split a file or directory into parts
  restore   Merge parts back into the original`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  opts.setup,
		PersistentPostRunE: opts.teardown,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: .splitpack.yaml in the working directory or $HOME)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write JSON logs to this file instead of stderr")

	root.AddCommand(newSplitCommand(opts))
	root.AddCommand(newRestoreCommand(opts))
	root.AddCommand(versionCmd(version))

	return root
}

// setup loads settings, applies the persistent flags and installs the logger.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		settings.Debug = o.debug
	}
	if flags.Changed("log-file") {
		settings.LogFile = o.logFile
	}
	o.settings = settings

	// Without a log file or --debug, logs stay discarded and stderr is
	// left to the progress line.
	if settings.LogFile == "" && !settings.Debug {
		return nil
	}

	cleanup, err := logging.Setup(logging.Config{
		Path:   settings.LogFile,
		Debug:  settings.Debug,
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	o.cleanup = cleanup
	return nil
}

func (o *rootOptions) teardown(_ *cobra.Command, _ []string) error {
	if o.cleanup == nil {
		return nil
	}
	err := o.cleanup()
	o.cleanup = nil
	return err
}

func versionCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "splitpack %s\n", version)
		},
	}

	// A broken config must not hide the version.
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error { return nil }
	return cmd
}
