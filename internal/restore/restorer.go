package restore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/havonz/file-split-packer/internal/archive"
	ioutils "github.com/havonz/file-split-packer/internal/io"
	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/model"
	"github.com/havonz/file-split-packer/internal/part"
	"github.com/havonz/file-split-packer/internal/progress"
)

const (
	tempSuffix = ".merge.tmp"
	zipExt     = ".zip"
)

// Config holds Restorer settings.
type Config struct {
	// Logger receives operational logs. Nil uses logging.L().
	Logger *slog.Logger
}

// Restorer runs restore operations.
type Restorer struct {
	logger *slog.Logger
	sink   progress.Sink
}

// New creates a Restorer. onProgress may be nil.
func New(cfg Config, onProgress progress.Sink) *Restorer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.L()
	}
	return &Restorer{logger: logger, sink: onProgress}
}

// Restore discovers the part group at req.InputPath, merges it into
// req.OutputDir and, if requested, extracts the merged container.
func (r *Restorer) Restore(ctx context.Context, req model.RestoreRequest) (*model.RestoreOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	group, err := part.Discover(req.InputPath)
	if err != nil {
		return nil, err
	}
	if err := ioutils.EnsureDir(req.OutputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	r.logger.Info("restore started",
		"input", req.InputPath,
		"strategy", req.Strategy.String(),
		"prefix", group.Prefix,
		"suffix", group.Suffix,
		"parts", len(group.Parts),
		"extract", req.AutoExtract)
	r.logger.Debug("parts discovered", "paths", group.Paths())

	start := time.Now()

	em := progress.NewEmitter(r.sink)
	defer em.Close()

	var merged string
	switch req.Strategy {
	case model.SplitThenZip:
		merged, err = r.mergeArchived(ctx, group, req, em)
	case model.ZipThenSplit:
		merged, err = r.mergeRaw(ctx, group, req, em)
	default:
		err = fmt.Errorf("%w: %s", model.ErrUnknownStrategy, req.Strategy)
	}
	if err != nil {
		r.logger.Error("restore failed", "input", req.InputPath, "error", err)
		return nil, err
	}

	out := &model.RestoreOutcome{
		MergedFile:  merged,
		OutputFiles: []string{merged},
	}

	if req.AutoExtract {
		dir, err := r.autoExtract(ctx, merged, req, em)
		if err != nil {
			r.logger.Error("extract failed", "file", merged, "error", err)
			return nil, err
		}
		if dir != "" {
			out.ExtractedDir = dir
			out.OutputFiles = append(out.OutputFiles, dir)
		}
	}

	em.Close()
	r.logger.Info("restore finished",
		"merged", merged,
		"extracted", out.ExtractedDir,
		"elapsed", time.Since(start),
		"dropped_events", em.Dropped())
	return out, nil
}

// mergeArchived streams the single entry of every part into one file.
func (r *Restorer) mergeArchived(ctx context.Context, group *part.Group, req model.RestoreRequest, em *progress.Emitter) (string, error) {
	name, err := MergedName(group.Prefix)
	if err != nil {
		return "", err
	}

	sizes := make([]uint64, len(group.Parts))
	var total uint64
	for i, p := range group.Parts {
		size, err := inspectPart(p.Path, req.Password)
		if err != nil {
			return "", fmt.Errorf("part %d: %w", p.Index, err)
		}
		sizes[i] = size
		total += size
	}

	tmp := filepath.Join(req.OutputDir, name+tempSuffix)
	tr := em.Track(model.PhaseRestore, total, len(group.Parts)).Unthrottled()
	tr.SetMessage("restoring")
	tr.Start()
	err = writeTemp(tmp, func(f *os.File) error {
		for i, p := range group.Parts {
			tr.SetPart(p.Index)
			if err := copyEntry(ctx, f, p.Path, req.Password, sizes[i], tr.Add); err != nil {
				return fmt.Errorf("part %d: %w", p.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	tr.Finish()

	isZip, err := archive.IsContainer(tmp)
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if isZip && !strings.HasSuffix(name, zipExt) {
		name += zipExt
	}
	return r.commit(tmp, filepath.Join(req.OutputDir, name))
}

// mergeRaw concatenates the parts of a ZipThenSplit run.
func (r *Restorer) mergeRaw(ctx context.Context, group *part.Group, req model.RestoreRequest, em *progress.Emitter) (string, error) {
	name, err := MergedName(group.Prefix)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(name, zipExt) {
		name += zipExt
	}

	sizes := make([]int64, len(group.Parts))
	var total uint64
	for i, p := range group.Parts {
		info, err := os.Stat(p.Path)
		if err != nil {
			return "", err
		}
		sizes[i] = info.Size()
		total += uint64(info.Size())
	}

	tmp := filepath.Join(req.OutputDir, name+tempSuffix)
	tr := em.Track(model.PhaseMerge, total, len(group.Parts)).Unthrottled()
	tr.SetMessage("merging")
	tr.Start()
	err = writeTemp(tmp, func(f *os.File) error {
		for i, p := range group.Parts {
			tr.SetPart(p.Index)
			if err := copyRaw(ctx, f, p.Path, sizes[i], tr.Add); err != nil {
				return fmt.Errorf("part %d: %w", p.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	tr.Finish()

	return r.commit(tmp, filepath.Join(req.OutputDir, name))
}

func (r *Restorer) commit(tmp, final string) (string, error) {
	if err := ioutils.ReplaceFile(tmp, final); err != nil {
		os.Remove(tmp)
		return "", err
	}
	r.logger.Debug("merged file written", "path", final)
	return final, nil
}

// autoExtract unpacks merged next to itself. A SplitThenZip result that
// is not a container is left alone and yields an empty directory name; a
// ZipThenSplit result must be a container.
func (r *Restorer) autoExtract(ctx context.Context, merged string, req model.RestoreRequest, em *progress.Emitter) (string, error) {
	isZip, err := archive.IsContainer(merged)
	if err != nil {
		return "", err
	}
	if !isZip {
		if req.Strategy == model.ZipThenSplit {
			return "", fmt.Errorf("%w: %s", archive.ErrNotContainer, merged)
		}
		return "", nil
	}

	target := strings.TrimSuffix(merged, zipExt)
	zr, err := archive.Open(merged, req.Password)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	tr := em.Track(model.PhaseUnzip, zr.TotalSize(), len(zr.Files())).Unthrottled()
	tr.SetMessage("extracting " + filepath.Base(merged))
	tr.Start()
	if err := zr.ExtractAll(ctx, target, tr.Add); err != nil {
		return "", err
	}
	tr.Finish()
	return target, nil
}

// MergedName derives the output name from a part prefix by dropping exactly
// one trailing separator, so "movie.mkv." becomes "movie.mkv". Only one is
// dropped on purpose: a base name that itself ends in '.' (such as "v1.")
// yields the prefix "v1.." and must come back as "v1.", which trimming every
// trailing dot would lose.
func MergedName(prefix string) (string, error) {
	name := prefix
	if n := len(name); n > 0 && strings.ContainsRune(".-_ ", rune(name[n-1])) {
		name = name[:n-1]
	}
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", model.ErrUnnamedPartGroup, prefix)
	}
	return name, nil
}
