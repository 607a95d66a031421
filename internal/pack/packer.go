package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/havonz/file-split-packer/internal/archive"
	ioutils "github.com/havonz/file-split-packer/internal/io"
	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/model"
	"github.com/havonz/file-split-packer/internal/part"
	"github.com/havonz/file-split-packer/internal/planner"
	"github.com/havonz/file-split-packer/internal/progress"
	"github.com/havonz/file-split-packer/internal/scheduler"
)

// Config holds Packer settings.
type Config struct {
	// Workers bounds parallel part compression. Zero uses one worker per
	// CPU, one forces sequential processing.
	Workers int

	// Logger receives operational logs. Nil uses logging.L().
	Logger *slog.Logger
}

// Packer runs split operations.
type Packer struct {
	workers int
	logger  *slog.Logger
	sink    progress.Sink
}

// New creates a Packer. onProgress may be nil.
func New(cfg Config, onProgress progress.Sink) *Packer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.L()
	}
	return &Packer{
		workers: cfg.Workers,
		logger:  logger,
		sink:    onProgress,
	}
}

// Split packs req.InputPath into "<OutputDir>/<base>.parts/".
//
// On failure, parts written so far are left on disk; a later run with
// Overwrite replaces them.
func (p *Packer) Split(ctx context.Context, req model.SplitRequest) (*model.SplitOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(req.InputPath)
	if err != nil {
		return nil, err
	}
	base, err := BaseName(req.InputPath)
	if err != nil {
		return nil, err
	}
	isDir := info.IsDir()

	if err := ioutils.EnsureDir(req.OutputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	partsDir := filepath.Join(req.OutputDir, part.DirName(base))
	if err := ioutils.PreparePartsDir(partsDir, req.Overwrite); err != nil {
		return nil, err
	}

	p.logger.Info("split started",
		"input", req.InputPath,
		"strategy", req.Strategy.String(),
		"unit", req.Unit.String(),
		"value", req.Value(),
		"dir", isDir,
		"encrypted", req.Password != "")

	em := progress.NewEmitter(p.sink)
	defer em.Close()

	start := time.Now()
	var out *model.SplitOutcome
	switch req.Strategy {
	case model.SplitThenZip:
		out, err = p.splitThenZip(ctx, req, base, partsDir, isDir, em)
	case model.ZipThenSplit:
		out, err = p.zipThenSplit(ctx, req, base, partsDir, isDir, em)
	default:
		err = fmt.Errorf("%w: %s", model.ErrUnknownStrategy, req.Strategy)
	}
	if err != nil {
		p.logger.Error("split failed", "input", req.InputPath, "error", err)
		return nil, err
	}

	em.Close()
	p.logger.Info("split finished",
		"parts", out.Parts,
		"dir", partsDir,
		"elapsed", time.Since(start),
		"dropped_events", em.Dropped())
	return out, nil
}

func (p *Packer) splitThenZip(ctx context.Context, req model.SplitRequest, base, partsDir string, isDir bool, em *progress.Emitter) (*model.SplitOutcome, error) {
	m, err := selectMethods(req, isDir)
	if err != nil {
		return nil, err
	}
	level := levelOf(req)

	source := req.InputPath
	if isDir {
		tmp := filepath.Join(partsDir, base+".zip")
		defer p.removeTemp(tmp)
		opts := archive.Options{Level: level}
		if err := p.packDirectory(ctx, req.InputPath, tmp, opts, m.prePass, model.PhasePackDir, em); err != nil {
			return nil, fmt.Errorf("pack directory: %w", err)
		}
		source = tmp
	}

	total, err := sourceSize(source)
	if err != nil {
		return nil, err
	}

	var plan planner.Plan
	if m.strict {
		plan, err = planner.ComputeStored(total, req.Size, base, req.Password != "")
	} else {
		plan, err = planner.Compute(total, req.Unit, req.Value())
	}
	if err != nil {
		return nil, err
	}

	tasks := scheduler.BuildTasks(plan, total, func(i int) (string, string) {
		return filepath.Join(partsDir, part.ArchivedPartName(base, i, plan.Width)), part.EntryName(base, i, plan.Width)
	})

	opts := archive.Options{Password: req.Password, Level: level}
	write := func(ctx context.Context, task scheduler.Task, src io.Reader, onCopied func(int64)) error {
		return archive.WriteFile(task.Path, opts, func(w *archive.Writer) error {
			return w.WriteEntry(ctx, task.EntryName, m.parts, src, task.Size, onCopied)
		})
	}

	sched := scheduler.New(p.workers, p.logger)
	parallel := m.parts == archive.Deflate && plan.Parts > 1 && sched.PoolSize(plan.Parts) > 1
	p.logger.Debug("split-then-zip plan",
		"chunk", plan.ChunkSize,
		"parts", plan.Parts,
		"width", plan.Width,
		"method", m.parts.String(),
		"parallel", parallel)

	tr := em.Track(model.PhaseSplitZip, total, plan.Parts)
	tr.SetMessage("writing")
	var outputs []string
	if parallel {
		tr.Start()
		outputs, err = sched.RunParallel(ctx, source, tasks, write, tr)
	} else {
		tr.Unthrottled().Start()
		outputs, err = sched.RunSequential(ctx, source, tasks, write, tr)
	}
	if err != nil {
		return nil, err
	}
	tr.Finish()

	return &model.SplitOutcome{
		Parts:       plan.Parts,
		OutputFiles: outputs,
		IsDir:       isDir,
		BaseName:    base,
	}, nil
}

func (p *Packer) zipThenSplit(ctx context.Context, req model.SplitRequest, base, partsDir string, isDir bool, em *progress.Emitter) (*model.SplitOutcome, error) {
	opts := archive.Options{Password: req.Password, Level: levelOf(req)}
	container := filepath.Join(partsDir, base+".zip")
	defer p.removeTemp(container)

	if isDir {
		if err := p.packDirectory(ctx, req.InputPath, container, opts, archive.Deflate, model.PhaseZip, em); err != nil {
			return nil, fmt.Errorf("pack directory: %w", err)
		}
	} else if err := p.packFile(ctx, req.InputPath, base, container, opts, em); err != nil {
		return nil, err
	}

	total, err := sourceSize(container)
	if err != nil {
		return nil, err
	}
	plan, err := planner.Compute(total, req.Unit, req.Value())
	if err != nil {
		return nil, err
	}

	tasks := scheduler.BuildTasks(plan, total, func(i int) (string, string) {
		return filepath.Join(partsDir, part.RawPartName(base, i, plan.Width)), ""
	})

	tr := em.Track(model.PhaseSplit, total, plan.Parts).Unthrottled()
	tr.SetMessage("splitting")
	tr.Start()
	outputs, err := scheduler.New(1, p.logger).RunSequential(ctx, container, tasks, writeRaw, tr)
	if err != nil {
		return nil, err
	}
	tr.Finish()

	return &model.SplitOutcome{
		Parts:       plan.Parts,
		OutputFiles: outputs,
		IsDir:       isDir,
		BaseName:    base,
	}, nil
}

// packFile archives a single file as one deflated entry named base.
func (p *Packer) packFile(ctx context.Context, input, base, dst string, opts archive.Options, em *progress.Emitter) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return model.ErrEmptyInput
	}

	tr := em.Track(model.PhaseZip, uint64(info.Size()), 0).Unthrottled()
	tr.SetMessage("compressing " + base)
	tr.Start()
	err = archive.WriteFile(dst, opts, func(w *archive.Writer) error {
		entry, err := w.CreateFile(base, archive.Deflate, info.ModTime())
		if err != nil {
			return err
		}
		_, err = ioutils.CopyN(ctx, entry, f, info.Size(), tr.Add)
		return err
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", base, err)
	}
	tr.Finish()
	return nil
}

// packDirectory writes the tree at root into a container at dst.
func (p *Packer) packDirectory(ctx context.Context, root, dst string, opts archive.Options, method archive.Method, phase model.Phase, em *progress.Emitter) error {
	total, err := archive.DirTotalSize(root)
	if err != nil {
		return err
	}
	p.logger.Debug("packing directory", "root", root, "bytes", total, "method", method.String())

	tr := em.Track(phase, total, 0).Unthrottled()
	tr.SetMessage("packing " + filepath.Base(root))
	tr.Start()
	err = archive.WriteFile(dst, opts, func(w *archive.Writer) error {
		p.logger.Debug("container opened", "path", dst, "encrypted", w.Encrypted())
		return archive.WriteDirectory(ctx, w, root, method, tr.Add)
	})
	if err != nil {
		return err
	}
	tr.Finish()
	return nil
}

func (p *Packer) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("remove temporary container", "path", path, "error", err)
		return
	}
	p.logger.Debug("removed temporary container", "path", path)
}

func writeRaw(ctx context.Context, task scheduler.Task, src io.Reader, onCopied func(int64)) (err error) {
	f, err := os.Create(task.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = ioutils.CopyN(ctx, f, src, task.Size, onCopied)
	return err
}

func sourceSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, model.ErrEmptyInput
	}
	return uint64(info.Size()), nil
}

// BaseName is the final path element of input, used to name parts.
func BaseName(input string) (string, error) {
	base := filepath.Base(filepath.Clean(input))
	if base == "." || base == ".." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("%w: %s", model.ErrUnnamedInput, input)
	}
	return base, nil
}
