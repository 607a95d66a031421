package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/havonz/file-split-packer/internal/config"
	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/restore"
)

// restoreCommand holds the flags for the restore command.
type restoreCommand struct {
	root *rootOptions

	output   string
	strategy string
	password string
	extract  bool
}

func newRestoreCommand(root *rootOptions) *cobra.Command {
	c := &restoreCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "restore <part-or-directory>",
		Short: "Merge parts back into the original",
		Long: `Merge a part group back into the original file. Pass any one part of
the group, or the directory holding it. The strategy must match the one
used when splitting.`,
		Example: `  splitpack restore backup.tar.parts/
  splitpack restore photos.part-001.zip --password secret --extract
  splitpack restore disk.img.zip.part-001 --strategy zip-then-split`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	registerRestoreFlags(cobraCmd.Flags(), c)
	return cobraCmd
}

func registerRestoreFlags(flags *pflag.FlagSet, c *restoreCommand) {
	flags.StringVarP(&c.output, "output", "o", "", "output directory (default: next to the parts)")
	flags.StringVar(&c.strategy, "strategy", "", "split-then-zip or zip-then-split")
	flags.StringVar(&c.password, "password", "", "password for encrypted parts (or set "+passwordEnv+")")
	flags.BoolVar(&c.extract, "extract", false, "extract the merged file when it is a zip")
}

func (c *restoreCommand) apply(flags *pflag.FlagSet, s *config.Settings) {
	if flags.Changed("output") {
		s.OutputDir = c.output
	}
	if flags.Changed("strategy") {
		s.Strategy = c.strategy
	}
	if flags.Changed("extract") {
		s.AutoExtract = c.extract
	}
}

func (c *restoreCommand) run(cmd *cobra.Command, args []string) error {
	settings := c.root.settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	c.apply(cmd.Flags(), settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	req, err := settings.ToRestoreRequest(args[0], resolvePassword(c.password))
	if err != nil {
		return err
	}

	printer := newProgressPrinter(cmd.ErrOrStderr())
	restorer := restore.New(restore.Config{Logger: logging.L()}, printer.Print)

	outcome, err := restorer.Restore(cmd.Context(), req)
	printer.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Restored %s\n", outcome.MergedFile)
	if outcome.ExtractedDir != "" {
		fmt.Fprintf(out, "Extracted to %s\n", outcome.ExtractedDir)
	}
	return nil
}
