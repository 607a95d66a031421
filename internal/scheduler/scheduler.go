// Package scheduler runs per-part archiving work over a shared source
// file, either in order through one reader or on a bounded worker pool
// where every worker holds its own file handle.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/planner"
	"github.com/havonz/file-split-packer/internal/progress"
)

// Task is one immutable unit of work: copy Size bytes starting at Offset
// of the source into the container at Path under EntryName.
type Task struct {
	Index     int
	Offset    int64
	Size      int64
	Path      string
	EntryName string
}

// ArchiveFunc writes task's output from src, which is positioned at
// task.Offset. It must report every copied block to onCopied.
type ArchiveFunc func(ctx context.Context, task Task, src io.Reader, onCopied func(int64)) error

// BuildTasks lays out one task per planned part. names returns the
// output path and entry name for a 1-based index.
func BuildTasks(plan planner.Plan, total uint64, names func(index int) (path, entry string)) []Task {
	tasks := make([]Task, 0, plan.Parts)
	for i := 1; i <= plan.Parts; i++ {
		path, entry := names(i)
		tasks = append(tasks, Task{
			Index:     i,
			Offset:    int64(plan.Offset(total, i)),
			Size:      int64(plan.PartSize(total, i)),
			Path:      path,
			EntryName: entry,
		})
	}
	return tasks
}

// Scheduler executes task lists.
type Scheduler struct {
	// Workers bounds the parallel pool. Zero means one per CPU.
	Workers int
	Logger  *slog.Logger
}

// New returns a Scheduler with the given pool bound.
func New(workers int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.L()
	}
	return &Scheduler{Workers: workers, Logger: logger}
}

// PoolSize is the number of workers a run over n tasks would use.
func (s *Scheduler) PoolSize(n int) int {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, n))
}

// RunSequential processes tasks in order through a single reader that
// only moves forward. It returns the written paths in task order.
func (s *Scheduler) RunSequential(ctx context.Context, source string, tasks []Task, fn ArchiveFunc, tr *progress.Tracker) ([]string, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	outputs := make([]string, 0, len(tasks))
	var pos int64
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if task.Offset != pos {
			if _, err := f.Seek(task.Offset, io.SeekStart); err != nil {
				return nil, err
			}
		}

		tr.SetPart(task.Index)
		s.Logger.Debug("writing part", "index", task.Index, "offset", task.Offset, "size", task.Size, "path", task.Path)
		if err := fn(ctx, task, f, tr.Add); err != nil {
			return nil, fmt.Errorf("part %d: %w", task.Index, err)
		}
		pos = task.Offset + task.Size
		outputs = append(outputs, task.Path)
	}
	return outputs, nil
}

// RunParallel fans tasks out to PoolSize workers. Each worker opens the
// source itself and seeks to its task's offset. The first failure stops
// scheduling of further tasks and is returned; outputs already written
// stay on disk.
func (s *Scheduler) RunParallel(ctx context.Context, source string, tasks []Task, fn ArchiveFunc, tr *progress.Tracker) ([]string, error) {
	outputs := make([]string, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.PoolSize(len(tasks)))
	s.Logger.Debug("parallel run", "tasks", len(tasks), "workers", s.PoolSize(len(tasks)))

	for i, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr.SetPart(task.Index)
			if err := runTask(gctx, source, task, fn, tr); err != nil {
				return fmt.Errorf("part %d: %w", task.Index, err)
			}
			outputs[i] = task.Path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func runTask(ctx context.Context, source string, task Task, fn ArchiveFunc, tr *progress.Tracker) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(task.Offset, io.SeekStart); err != nil {
		return err
	}
	return fn(ctx, task, f, tr.Add)
}
