package restore

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/havonz/file-split-packer/internal/archive"
	ioutils "github.com/havonz/file-split-packer/internal/io"
)

// inspectPart checks that path is a single-entry container whose entry
// can be opened with password, and returns the entry's size.
func inspectPart(path, password string) (uint64, error) {
	zr, err := archive.Open(path, password)
	if err != nil {
		return 0, err
	}
	defer zr.Close()

	entry, err := zr.SingleEntry()
	if err != nil {
		return 0, err
	}
	if err := zr.CheckPassword(); err != nil {
		return 0, err
	}
	return entry.Size(), nil
}

func copyEntry(ctx context.Context, dst *os.File, path, password string, size uint64, onCopied func(int64)) error {
	zr, err := archive.Open(path, password)
	if err != nil {
		return err
	}
	defer zr.Close()

	entry, err := zr.SingleEntry()
	if err != nil {
		return err
	}
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if _, err := ioutils.CopyN(ctx, dst, rc, int64(size), onCopied); err != nil {
		return err
	}
	// Drain so that trailing integrity checks run.
	var tail [1]byte
	if n, err := rc.Read(tail[:]); n > 0 {
		return archive.ErrCorrupt
	} else if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func copyRaw(ctx context.Context, dst *os.File, path string, size int64, onCopied func(int64)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = ioutils.CopyN(ctx, dst, f, size, onCopied)
	return err
}

// writeTemp creates tmp, fills it through fn and closes it. On failure the
// temporary file is removed.
func writeTemp(tmp string, fn func(*os.File) error) error {
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = fn(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}
