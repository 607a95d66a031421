package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havonz/file-split-packer/internal/config"
	"github.com/havonz/file-split-packer/internal/model"
	"github.com/havonz/file-split-packer/internal/testutil"
)

// isolate keeps config discovery away from the developer's files.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(passwordEnv, "")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSplitFlags_Defaults(t *testing.T) {
	cmd := &cobra.Command{}
	c := &splitCommand{}
	registerSplitFlags(cmd.Flags(), c)

	s := config.DefaultSettings()
	c.apply(cmd.Flags(), s)
	assert.Equal(t, config.DefaultSettings(), s)
}

func TestSplitFlags_Override(t *testing.T) {
	cmd := &cobra.Command{}
	c := &splitCommand{}
	registerSplitFlags(cmd.Flags(), c)

	require.NoError(t, cmd.Flags().Set("output", "/out"))
	require.NoError(t, cmd.Flags().Set("size", "4GB"))
	require.NoError(t, cmd.Flags().Set("strategy", "zip-then-split"))
	require.NoError(t, cmd.Flags().Set("level", "9"))
	require.NoError(t, cmd.Flags().Set("workers", "2"))
	require.NoError(t, cmd.Flags().Set("overwrite", "true"))

	s := config.DefaultSettings()
	s.SplitBy = "count"
	c.apply(cmd.Flags(), s)

	assert.Equal(t, "/out", s.OutputDir)
	assert.Equal(t, "size", s.SplitBy, "--size implies splitting by size")
	assert.Equal(t, "4GB", s.PartSize)
	assert.Equal(t, "zip-then-split", s.Strategy)
	assert.Equal(t, 9, s.CompressionLevel)
	assert.Equal(t, 2, s.Workers)
	assert.True(t, s.Overwrite)
}

func TestSplitFlags_CountImpliesCount(t *testing.T) {
	cmd := &cobra.Command{}
	c := &splitCommand{}
	registerSplitFlags(cmd.Flags(), c)

	require.NoError(t, cmd.Flags().Set("count", "6"))

	s := config.DefaultSettings()
	c.apply(cmd.Flags(), s)
	assert.Equal(t, "count", s.SplitBy)
	assert.Equal(t, uint64(6), s.PartCount)
}

func TestRestoreFlags_Override(t *testing.T) {
	cmd := &cobra.Command{}
	c := &restoreCommand{}
	registerRestoreFlags(cmd.Flags(), c)

	require.NoError(t, cmd.Flags().Set("extract", "true"))
	require.NoError(t, cmd.Flags().Set("strategy", "zip-then-split"))

	s := config.DefaultSettings()
	c.apply(cmd.Flags(), s)
	assert.True(t, s.AutoExtract)
	assert.Equal(t, "zip-then-split", s.Strategy)
	assert.Empty(t, s.OutputDir)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.Print(model.ProgressEvent{Phase: model.PhaseZip, ProcessedBytes: 512, TotalBytes: 2048})
	p.Print(model.ProgressEvent{Phase: model.PhaseZip, ProcessedBytes: 2048, TotalBytes: 2048})
	p.Print(model.ProgressEvent{Phase: model.PhaseSplit, ProcessedBytes: 1024, TotalBytes: 2048, PartIndex: 1, PartTotal: 2})
	p.Print(model.ProgressEvent{
		Phase:          model.PhaseSplit,
		ProcessedBytes: 2048,
		TotalBytes:     2048,
		PartIndex:      2,
		PartTotal:      2,
		Message:        "splitting part 2/2",
	})
	p.Finish()
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "512 B / 2.0 KiB ( 25%)")
	assert.Contains(t, out, "2.0 KiB / 2.0 KiB (100%)\n")
	assert.Contains(t, out, "1.0 KiB / 2.0 KiB ( 50%) part 1/2\r")
	assert.Contains(t, out, "2.0 KiB / 2.0 KiB (100%)  splitting part 2/2\n")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestVersion(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "splitpack test\n", stdout)
}

func TestSplitRestore_EndToEnd(t *testing.T) {
	for _, strategy := range []string{"split-then-zip", "zip-then-split"} {
		t.Run(strategy, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			input := filepath.Join(dir, "data.bin")
			testutil.WriteRandomFile(t, input, 11, 300_000)

			parts := filepath.Join(dir, "parts")
			stdout, _, err := execute(t, "split", input,
				"-o", parts, "--size", "100KB", "--strategy", strategy, "--password", "pw")
			require.NoError(t, err)
			assert.Contains(t, stdout, `"data.bin"`)

			restored := filepath.Join(dir, "restored")
			stdout, _, err = execute(t, "restore", filepath.Join(parts, "data.bin.parts"),
				"-o", restored, "--strategy", strategy, "--password", "pw")
			require.NoError(t, err)
			assert.Contains(t, stdout, "Restored ")

			merged := filepath.Join(restored, "data.bin")
			if strategy == "zip-then-split" {
				merged = filepath.Join(restored, "data.bin.zip")
			}
			_, err = os.Stat(merged)
			require.NoError(t, err)
		})
	}
}

func TestSplit_DryRun(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "data.bin")
	testutil.WriteRandomFile(t, input, 3, 10_000)

	stdout, _, err := execute(t, "split", input, "--count", "3", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Parts:       3")
	assert.Contains(t, stdout, "data.bin.part-001.zip")
	_, err = os.Stat(filepath.Join(dir, "data.bin.parts"))
	assert.True(t, os.IsNotExist(err), "dry run writes nothing")
}

func TestSplit_PasswordFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv(passwordEnv, "from-env")
	dir := t.TempDir()
	input := filepath.Join(dir, "data.bin")
	testutil.WriteRandomFile(t, input, 5, 5_000)

	_, _, err := execute(t, "split", input, "--count", "2")
	require.NoError(t, err)

	t.Setenv(passwordEnv, "")
	_, _, err = execute(t, "restore", filepath.Join(dir, "data.bin.parts"), "-o", filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestSplit_BadFlags(t *testing.T) {
	isolate(t)
	input := filepath.Join(t.TempDir(), "data.bin")
	testutil.WriteRandomFile(t, input, 1, 10)

	_, _, err := execute(t, "split", input, "--strategy", "sideways")
	assert.ErrorIs(t, err, model.ErrUnknownStrategy)

	_, _, err = execute(t, "split")
	assert.Error(t, err)
}
