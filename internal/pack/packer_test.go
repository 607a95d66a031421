package pack

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havonz/file-split-packer/internal/archive"
	"github.com/havonz/file-split-packer/internal/model"
	"github.com/havonz/file-split-packer/internal/planner"
	"github.com/havonz/file-split-packer/internal/testutil"
)

type events struct {
	mu  sync.Mutex
	all []model.ProgressEvent
}

func (e *events) sink(ev model.ProgressEvent) {
	e.mu.Lock()
	e.all = append(e.all, ev)
	e.mu.Unlock()
}

func (e *events) phases() map[model.Phase][]model.ProgressEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[model.Phase][]model.ProgressEvent)
	for _, ev := range e.all {
		out[ev.Phase] = append(out[ev.Phase], ev)
	}
	return out
}

func readEntry(t *testing.T, path, password string) (string, archive.Method, []byte) {
	t.Helper()
	r, err := archive.Open(path, password)
	require.NoError(t, err)
	defer r.Close()

	entry, err := r.SingleEntry()
	require.NoError(t, err)
	rc, err := entry.Open()
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return entry.Name(), entry.Method(), data
}

func TestSplit_ZipThenSplitFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "data.bin")
	data := testutil.WriteRandomFile(t, input, 11, 10_000_000)
	out := filepath.Join(dir, "out")

	rec := &events{}
	p := New(Config{}, rec.sink)
	res, err := p.Split(context.Background(), model.SplitRequest{
		InputPath: input,
		OutputDir: out,
		Unit:      model.SplitBySize,
		Size:      3_000_000,
		Strategy:  model.ZipThenSplit,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Parts)
	assert.False(t, res.IsDir)
	assert.Equal(t, "data.bin", res.BaseName)
	require.Len(t, res.OutputFiles, 4)

	var joined bytes.Buffer
	for i, path := range res.OutputFiles {
		assert.Equal(t, filepath.Join(out, "data.bin.parts", "data.bin.zip.part-00"+string(rune('1'+i))), path)
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		if i < 3 {
			assert.Len(t, b, 3_000_000)
		}
		joined.Write(b)
	}
	assert.NoFileExists(t, filepath.Join(out, "data.bin.parts", "data.bin.zip"), "intermediate container is removed")

	container := filepath.Join(dir, "joined.zip")
	require.NoError(t, os.WriteFile(container, joined.Bytes(), 0644))
	name, _, got := readEntry(t, container, "")
	assert.Equal(t, "data.bin", name)
	assert.True(t, bytes.Equal(data, got))

	phases := rec.phases()
	assert.NotEmpty(t, phases[model.PhaseZip])
	assert.NotEmpty(t, phases[model.PhaseSplit])
	for phase, evs := range phases {
		for i := 1; i < len(evs); i++ {
			assert.GreaterOrEqual(t, evs[i].ProcessedBytes, evs[i-1].ProcessedBytes, "phase %s", phase)
		}
	}
}

func TestSplit_StrictSizeCap(t *testing.T) {
	bases := []string{"a", "report.final.pdf", strings.Repeat("long-name-", 12)}
	for _, base := range bases {
		for _, password := range []string{"", "hunter2"} {
			t.Run(base[:1]+"/"+password, func(t *testing.T) {
				dir := t.TempDir()
				input := filepath.Join(dir, base)
				data := testutil.WriteRandomFile(t, input, 5, 20_000)

				const size = 1_000
				res, err := New(Config{}, nil).Split(context.Background(), model.SplitRequest{
					InputPath: input,
					OutputDir: filepath.Join(dir, "out"),
					Unit:      model.SplitBySize,
					Size:      size,
					Strategy:  model.SplitThenZip,
					Password:  password,
				})
				require.NoError(t, err)

				var joined []byte
				for i, path := range res.OutputFiles {
					info, err := os.Stat(path)
					require.NoError(t, err)
					assert.LessOrEqual(t, info.Size(), int64(size), filepath.Base(path))

					name, method, payload := readEntry(t, path, password)
					assert.Equal(t, filepath.Base(strings.TrimSuffix(path, ".zip")), name)
					assert.Equal(t, archive.Store, method)
					assert.NotEmpty(t, payload, "part %d", i+1)
					joined = append(joined, payload...)
				}
				assert.True(t, bytes.Equal(data, joined))
			})
		}
	}
}

func TestSplit_StrictSizeTooSmall(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "x.bin")
	testutil.WriteRandomFile(t, input, 1, 1000)

	_, err := New(Config{}, nil).Split(context.Background(), model.SplitRequest{
		InputPath: input,
		OutputDir: dir,
		Unit:      model.SplitBySize,
		Size:      50,
		Strategy:  model.SplitThenZip,
	})
	var tooSmall *planner.MinimumSizeError
	require.True(t, errors.As(err, &tooSmall))
	assert.Greater(t, tooSmall.Minimum, uint64(50))
}

func TestSplit_DirectoryStoreSplitCompress(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "project")
	testutil.MakeTree(t, src, map[string]string{
		"main.go":        strings.Repeat("package main\n", 2000),
		"docs/readme.md": strings.Repeat("hello world\n", 3000),
		"assets/":        "",
		"bin/blob":       string(testutil.RandomBytes(9, 50_000)),
	})

	rec := &events{}
	res, err := New(Config{Workers: 4}, rec.sink).Split(context.Background(), model.SplitRequest{
		InputPath: src,
		OutputDir: filepath.Join(dir, "out"),
		Unit:      model.SplitByCount,
		Count:     5,
		Strategy:  model.SplitThenZip,
		DirMode:   model.DirModeStoreSplitCompress,
	})
	require.NoError(t, err)

	assert.True(t, res.IsDir)
	assert.Equal(t, 5, res.Parts)
	require.Len(t, res.OutputFiles, 5)
	for i, path := range res.OutputFiles {
		assert.Equal(t, "project.part-00"+string(rune('1'+i))+".zip", filepath.Base(path))
		_, method, _ := readEntry(t, path, "")
		assert.Equal(t, archive.Deflate, method)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "out", "project.parts"))
	require.NoError(t, err)
	assert.Len(t, entries, 5, "the directory pre-pass container is removed")
	assert.NotEmpty(t, rec.phases()[model.PhasePackDir])
	assert.NotEmpty(t, rec.phases()[model.PhaseSplitZip])
}

func TestSplit_DirectoryStrictRequiresStoreParts(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	testutil.MakeTree(t, src, map[string]string{"a.txt": "a"})

	req := model.SplitRequest{
		InputPath: src,
		OutputDir: filepath.Join(dir, "out"),
		Unit:      model.SplitBySize,
		Size:      1 << 20,
		Strategy:  model.SplitThenZip,
		DirMode:   model.DirModeStoreSplitCompress,
	}
	_, err := New(Config{}, nil).Split(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrUnsatisfiableCap)

	req.DirMode = model.DirModeCompressSplitStore
	req.Overwrite = true
	res, err := New(Config{}, nil).Split(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Parts)
}

func TestSplit_ParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "mixed.bin")
	data := append(testutil.RandomBytes(3, 400_000), bytes.Repeat([]byte("compressible "), 50_000)...)
	require.NoError(t, os.WriteFile(input, data, 0644))

	level := 6
	run := func(workers int, out string) [][]byte {
		res, err := New(Config{Workers: workers}, nil).Split(context.Background(), model.SplitRequest{
			InputPath:        input,
			OutputDir:        out,
			Unit:             model.SplitByCount,
			Count:            6,
			Strategy:         model.SplitThenZip,
			CompressionLevel: &level,
		})
		require.NoError(t, err)

		var files [][]byte
		for _, path := range res.OutputFiles {
			b, err := os.ReadFile(path)
			require.NoError(t, err)
			files = append(files, b)
		}
		return files
	}

	seq := run(1, filepath.Join(dir, "seq"))
	par := run(4, filepath.Join(dir, "par"))
	require.Len(t, par, 6)
	for i := range seq {
		assert.True(t, bytes.Equal(seq[i], par[i]), "part %d differs", i+1)
	}
}

func TestSplit_CountLargerThanInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tiny")
	require.NoError(t, os.WriteFile(input, []byte("abc"), 0644))

	res, err := New(Config{Workers: 1}, nil).Split(context.Background(), model.SplitRequest{
		InputPath: input,
		OutputDir: dir,
		Unit:      model.SplitByCount,
		Count:     5,
		Strategy:  model.SplitThenZip,
	})
	require.NoError(t, err)
	require.Len(t, res.OutputFiles, 5)

	_, _, last := readEntry(t, res.OutputFiles[4], "")
	assert.Empty(t, last)
}

func TestSplit_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	for _, strategy := range []model.Strategy{model.SplitThenZip, model.ZipThenSplit} {
		_, err := New(Config{}, nil).Split(context.Background(), model.SplitRequest{
			InputPath: empty,
			OutputDir: filepath.Join(dir, "out-"+strategy.String()),
			Unit:      model.SplitBySize,
			Size:      10,
			Strategy:  strategy,
		})
		assert.ErrorIs(t, err, model.ErrEmptyInput, strategy.String())
	}

	_, err := New(Config{}, nil).Split(context.Background(), model.SplitRequest{
		InputPath: filepath.Join(dir, "missing"),
		OutputDir: dir,
		Unit:      model.SplitBySize,
		Size:      10,
	})
	assert.ErrorIs(t, err, model.ErrInputNotFound)
}

func TestSplit_PartsDirectoryGuard(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "file.txt")
	testutil.WriteRandomFile(t, input, 2, 5000)
	out := filepath.Join(dir, "out")

	req := model.SplitRequest{
		InputPath: input,
		OutputDir: out,
		Unit:      model.SplitByCount,
		Count:     2,
		Strategy:  model.ZipThenSplit,
	}
	p := New(Config{}, nil)

	_, err := p.Split(context.Background(), req)
	require.NoError(t, err)

	_, err = p.Split(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrPartsDirNotEmpty)

	req.Overwrite = true
	res, err := p.Split(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.OutputFiles, 2)

	require.NoError(t, os.RemoveAll(filepath.Join(out, "file.txt.parts")))
	require.NoError(t, os.WriteFile(filepath.Join(out, "file.txt.parts"), []byte("x"), 0644))
	_, err = p.Split(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrPartsPathNotDir)
}

func TestSplit_Cancelled(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "big.bin")
	testutil.WriteRandomFile(t, input, 4, 100_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{}, nil).Split(ctx, model.SplitRequest{
		InputPath: input,
		OutputDir: dir,
		Unit:      model.SplitByCount,
		Count:     4,
		Strategy:  model.SplitThenZip,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	testutil.WriteRandomFile(t, input, 8, 25_000)

	p := New(Config{Workers: 2}, nil)
	l, err := p.Plan(model.SplitRequest{
		InputPath: input,
		OutputDir: filepath.Join(dir, "out"),
		Unit:      model.SplitByCount,
		Count:     3,
		Strategy:  model.SplitThenZip,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Plan.Parts)
	assert.Equal(t, archive.Deflate, l.PartMethod)
	assert.True(t, l.Parallel)
	assert.False(t, l.Estimated)
	assert.Equal(t, []string{"video.mp4.part-001.zip", "video.mp4.part-002.zip", "video.mp4.part-003.zip"}, l.PartNames)
	assert.NoDirExists(t, filepath.Join(dir, "out"), "planning writes nothing")

	l, err = p.Plan(model.SplitRequest{
		InputPath: input,
		OutputDir: filepath.Join(dir, "out"),
		Unit:      model.SplitBySize,
		Size:      10_000,
		Strategy:  model.ZipThenSplit,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Plan.Parts)
	assert.True(t, l.Estimated)
	assert.Equal(t, "video.mp4.zip.part-001", l.PartNames[0])
}

func TestBaseName(t *testing.T) {
	got, err := BaseName("/data/archive.tar/")
	require.NoError(t, err)
	assert.Equal(t, "archive.tar", got)

	_, err = BaseName("/")
	assert.ErrorIs(t, err, model.ErrUnnamedInput)
}

func TestSplit_ProgressMessages(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tiny.txt")
	require.NoError(t, os.WriteFile(input, []byte("abc"), 0644))

	rec := &events{}
	_, err := New(Config{Workers: 1}, rec.sink).Split(context.Background(), model.SplitRequest{
		InputPath: input,
		OutputDir: filepath.Join(dir, "out"),
		Unit:      model.SplitByCount,
		Count:     5,
		Strategy:  model.SplitThenZip,
		Password:  "pw",
	})
	require.NoError(t, err)

	var got []string
	for _, ev := range rec.phases()[model.PhaseSplitZip] {
		got = append(got, ev.Message)
	}
	assert.Equal(t, []string{"writing", "writing part 1/5", "writing part 2/5", "writing part 3/5"}, got)

	rec = &events{}
	_, err = New(Config{}, rec.sink).Split(context.Background(), model.SplitRequest{
		InputPath: input,
		OutputDir: filepath.Join(dir, "zipped"),
		Unit:      model.SplitByCount,
		Count:     2,
		Strategy:  model.ZipThenSplit,
	})
	require.NoError(t, err)

	byPhase := rec.phases()
	require.NotEmpty(t, byPhase[model.PhaseZip])
	assert.Equal(t, "compressing tiny.txt", byPhase[model.PhaseZip][0].Message)
	split := byPhase[model.PhaseSplit]
	require.NotEmpty(t, split)
	assert.Equal(t, "splitting part 2/2", split[len(split)-1].Message)
}
