package pack

import (
	"os"
	"path/filepath"

	"github.com/havonz/file-split-packer/internal/archive"
	"github.com/havonz/file-split-packer/internal/model"
	"github.com/havonz/file-split-packer/internal/part"
	"github.com/havonz/file-split-packer/internal/planner"
	"github.com/havonz/file-split-packer/internal/scheduler"
)

// Layout is what a split would produce, computed without writing.
type Layout struct {
	BaseName string
	IsDir    bool
	PartsDir string

	// SourceBytes is the size being sliced. For directories and for
	// ZipThenSplit it is the total file content, an estimate of the
	// container that would actually be sliced.
	SourceBytes uint64
	Estimated   bool

	Plan       planner.Plan
	PartMethod archive.Method
	Parallel   bool
	PartNames  []string
}

// Plan validates req and reports the layout Split would use.
func (p *Packer) Plan(req model.SplitRequest) (*Layout, error) {
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

	l := &Layout{
		BaseName: base,
		IsDir:    info.IsDir(),
		PartsDir: filepath.Join(req.OutputDir, part.DirName(base)),
	}

	if l.IsDir {
		total, err := archive.DirTotalSize(req.InputPath)
		if err != nil {
			return nil, err
		}
		l.SourceBytes = total
		l.Estimated = true
	} else {
		l.SourceBytes = uint64(info.Size())
		l.Estimated = req.Strategy == model.ZipThenSplit
	}
	if l.SourceBytes == 0 {
		return nil, model.ErrEmptyInput
	}

	switch req.Strategy {
	case model.SplitThenZip:
		m, err := selectMethods(req, l.IsDir)
		if err != nil {
			return nil, err
		}
		if m.strict {
			l.Plan, err = planner.ComputeStored(l.SourceBytes, req.Size, base, req.Password != "")
		} else {
			l.Plan, err = planner.Compute(l.SourceBytes, req.Unit, req.Value())
		}
		if err != nil {
			return nil, err
		}
		l.PartMethod = m.parts
		l.Parallel = m.parts == archive.Deflate && l.Plan.Parts > 1 &&
			scheduler.New(p.workers, p.logger).PoolSize(l.Plan.Parts) > 1
		for i := 1; i <= l.Plan.Parts; i++ {
			l.PartNames = append(l.PartNames, part.ArchivedPartName(base, i, l.Plan.Width))
		}

	case model.ZipThenSplit:
		l.Plan, err = planner.Compute(l.SourceBytes, req.Unit, req.Value())
		if err != nil {
			return nil, err
		}
		l.PartMethod = archive.Store
		for i := 1; i <= l.Plan.Parts; i++ {
			l.PartNames = append(l.PartNames, part.RawPartName(base, i, l.Plan.Width))
		}
	}

	return l, nil
}
