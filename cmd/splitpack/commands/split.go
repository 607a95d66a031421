package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/havonz/file-split-packer/internal/config"
	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/pack"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "SPLITPACK_PASSWORD"

// splitCommand holds the flags for the split command.
type splitCommand struct {
	root *rootOptions

	output    string
	by        string
	size      string
	count     uint64
	strategy  string
	dirMode   string
	password  string
	overwrite bool
	level     int
	workers   int
	dryRun    bool
}

func newSplitCommand(root *rootOptions) *cobra.Command {
	c := &splitCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "split <file-or-directory>",
		Short: "Split a file or directory into parts",
		Long: `Split a file or directory into numbered parts under <output>/<name>.parts/.

With --strategy split-then-zip every part is its own zip container holding
one slice. With zip-then-split the input is zipped once and the container
bytes are sliced; concatenating the parts yields a valid zip.`,
		Example: `  splitpack split backup.tar --size 100MiB
  splitpack split photos/ --by count --count 4 --password secret
  splitpack split disk.img --strategy zip-then-split --size 4GB -o /mnt/usb`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	registerSplitFlags(cobraCmd.Flags(), c)
	return cobraCmd
}

func registerSplitFlags(flags *pflag.FlagSet, c *splitCommand) {
	flags.StringVarP(&c.output, "output", "o", "", "output directory (default: next to the input)")
	flags.StringVar(&c.by, "by", "", "split unit: size or count")
	flags.StringVar(&c.size, "size", "", "maximum part size, e.g. 100MiB or 4GB")
	flags.Uint64Var(&c.count, "count", 0, "number of parts")
	flags.StringVar(&c.strategy, "strategy", "", "split-then-zip or zip-then-split")
	flags.StringVar(&c.dirMode, "dir-mode", "", "directory mode: compress-split-store or store-split-compress")
	flags.StringVar(&c.password, "password", "", "encrypt entries with AES-256 (or set "+passwordEnv+")")
	flags.BoolVar(&c.overwrite, "overwrite", false, "replace an existing parts directory")
	flags.IntVar(&c.level, "level", -1, "deflate level, -1 (default) to 9")
	flags.IntVar(&c.workers, "workers", 0, "parallel compression workers (0: one per CPU)")
	flags.BoolVar(&c.dryRun, "dry-run", false, "print the part layout without writing")
}

// apply overrides settings with every flag set on the command line. A
// --count without --by implies splitting by count.
func (c *splitCommand) apply(flags *pflag.FlagSet, s *config.Settings) {
	if flags.Changed("output") {
		s.OutputDir = c.output
	}
	if flags.Changed("count") && !flags.Changed("by") {
		s.SplitBy = "count"
	}
	if flags.Changed("size") && !flags.Changed("by") {
		s.SplitBy = "size"
	}
	if flags.Changed("by") {
		s.SplitBy = c.by
	}
	if flags.Changed("size") {
		s.PartSize = c.size
	}
	if flags.Changed("count") {
		s.PartCount = c.count
	}
	if flags.Changed("strategy") {
		s.Strategy = c.strategy
	}
	if flags.Changed("dir-mode") {
		s.DirSplitMode = c.dirMode
	}
	if flags.Changed("overwrite") {
		s.Overwrite = c.overwrite
	}
	if flags.Changed("level") {
		s.CompressionLevel = c.level
	}
	if flags.Changed("workers") {
		s.Workers = c.workers
	}
}

func (c *splitCommand) run(cmd *cobra.Command, args []string) error {
	settings := c.root.settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	c.apply(cmd.Flags(), settings)
	if err := settings.Validate(); err != nil {
		return err
	}

	req, err := settings.ToSplitRequest(args[0], resolvePassword(c.password))
	if err != nil {
		return err
	}

	printer := newProgressPrinter(cmd.ErrOrStderr())
	packer := pack.New(pack.Config{
		Workers: settings.Workers,
		Logger:  logging.L(),
	}, printer.Print)

	if c.dryRun {
		layout, err := packer.Plan(req)
		if err != nil {
			return err
		}
		printLayout(cmd.OutOrStdout(), layout)
		return nil
	}

	outcome, err := packer.Split(cmd.Context(), req)
	printer.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	kind := "file"
	if outcome.IsDir {
		kind = "directory"
	}
	fmt.Fprintf(out, "Split %s %q into %d part(s):\n", kind, outcome.BaseName, outcome.Parts)
	for _, f := range outcome.OutputFiles {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}

func printLayout(w io.Writer, l *pack.Layout) {
	size := humanize.IBytes(l.SourceBytes)
	if l.Estimated {
		size = "~" + size
	}
	fmt.Fprintf(w, "Input:       %s (%s)\n", l.BaseName, size)
	fmt.Fprintf(w, "Parts dir:   %s\n", l.PartsDir)
	fmt.Fprintf(w, "Parts:       %d\n", l.Plan.Parts)
	fmt.Fprintf(w, "Chunk size:  %s (%d bytes)\n", humanize.IBytes(l.Plan.ChunkSize), l.Plan.ChunkSize)
	fmt.Fprintf(w, "Part method: %s\n", l.PartMethod)
	fmt.Fprintf(w, "Parallel:    %t\n", l.Parallel)
	for _, name := range l.PartNames {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func resolvePassword(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passwordEnv)
}
