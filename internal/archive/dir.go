package archive

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	ioutils "github.com/havonz/file-split-packer/internal/io"
)

// DirTotalSize sums the sizes of the regular files below root. Symlinks
// and other special files are not counted, matching WriteDirectory.
func DirTotalSize(root string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}

// WriteDirectory packs the tree at root into w. Every entry is prefixed
// with the base name of root, every directory including empty ones and
// root itself gets a "name/" entry, and files are written in lexical
// walk order. Only regular files are packed. onProgress receives the
// number of file bytes consumed per block.
func WriteDirectory(ctx context.Context, w *Writer, root string, method Method, onProgress func(int64)) error {
	top := filepath.Base(filepath.Clean(root))

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := top
		if rel != "." {
			name = path.Join(top, filepath.ToSlash(rel))
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return w.CreateDir(name+"/", info.ModTime())
		case d.Type().IsRegular():
			return writeTreeFile(ctx, w, p, name, method, info, onProgress)
		default:
			return nil
		}
	})
}

func writeTreeFile(ctx context.Context, w *Writer, p, name string, method Method, info fs.FileInfo, onProgress func(int64)) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	dst, err := w.CreateFile(name, method, info.ModTime())
	if err != nil {
		return err
	}
	_, err = ioutils.CopyN(ctx, dst, f, info.Size(), onProgress)
	return err
}
