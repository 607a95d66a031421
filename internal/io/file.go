package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/havonz/file-split-packer/internal/model"
)

// BlockSize is the copy unit used by CopyN and Copy.
const BlockSize = 8 << 20

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, BlockSize)
		return &b
	},
}

// CopyN copies exactly n bytes from src to dst in BlockSize chunks.
//
// onProgress, when non-nil, receives the size of every block written.
// A source that ends early yields io.ErrUnexpectedEOF. Cancellation is
// checked before each block.
func CopyN(ctx context.Context, dst io.Writer, src io.Reader, n int64, onProgress func(int64)) (int64, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var written int64
	for written < n {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		chunk := buf
		if remaining := n - written; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		read, err := io.ReadFull(src, chunk)
		if read > 0 {
			if _, werr := dst.Write(chunk[:read]); werr != nil {
				return written, werr
			}
			written += int64(read)
			if onProgress != nil {
				onProgress(int64(read))
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return written, err
		}
	}
	return written, nil
}

// Copy copies src to dst until EOF in BlockSize chunks, reporting each
// written block to onProgress.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, onProgress func(int64)) (int64, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		read, err := io.ReadFull(src, buf)
		if read > 0 {
			if _, werr := dst.Write(buf[:read]); werr != nil {
				return written, werr
			}
			written += int64(read)
			if onProgress != nil {
				onProgress(int64(read))
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirIsEmpty reports whether the directory at path has no entries.
func DirIsEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

// PreparePartsDir makes path an empty directory ready to receive parts.
//
// A missing directory is created. An existing non-directory is an error.
// An existing non-empty directory is an error unless overwrite is set, in
// which case it is removed and recreated.
func PreparePartsDir(path string, overwrite bool) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return EnsureDir(path)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%w: %s", model.ErrPartsPathNotDir, path)
	}

	empty, err := DirIsEmpty(path)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}
	if !overwrite {
		return fmt.Errorf("%w: %s", model.ErrPartsDirNotEmpty, path)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clear parts directory: %w", err)
	}
	return EnsureDir(path)
}

// ReplaceFile moves tmp onto final. If the first rename fails, for
// example because final exists on a platform that refuses to overwrite,
// final is removed and the rename retried.
func ReplaceFile(tmp, final string) error {
	if err := os.Rename(tmp, final); err == nil {
		return nil
	}
	if err := os.Remove(final); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", final, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("replace %s: %w", final, err)
	}
	return nil
}
