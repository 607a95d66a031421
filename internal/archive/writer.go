package archive

import (
	"context"
	"io"
	"os"
	"time"

	azip "github.com/alexmullins/zip"
	"github.com/klauspost/compress/flate"
	kzip "github.com/klauspost/compress/zip"

	ioutils "github.com/havonz/file-split-packer/internal/io"
)

// Options configure a Writer.
type Options struct {
	// Password enables AES-256 encryption of file entries when non-empty.
	// Directory entries are never encrypted.
	Password string

	// Level is the deflate level, 0-9 or DefaultLevel. It is ignored for
	// stored entries and for encrypted containers.
	Level int
}

// Writer writes one zip container.
type Writer struct {
	plain    *kzip.Writer
	enc      *azip.Writer
	password string
}

// NewWriter returns a Writer that writes a container to w.
func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.Password != "" {
		return &Writer{enc: azip.NewWriter(w), password: opts.Password}
	}

	zw := kzip.NewWriter(w)
	level := opts.Level
	zw.RegisterCompressor(kzip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &Writer{plain: zw}
}

// Encrypted reports whether file entries are encrypted.
func (w *Writer) Encrypted() bool {
	return w.enc != nil
}

// CreateFile starts a file entry. The returned writer must be fully
// written before the next call on w. A zero modTime leaves the entry
// undated, which keeps its header free of timestamp extras.
func (w *Writer) CreateFile(name string, method Method, modTime time.Time) (io.Writer, error) {
	if w.enc != nil {
		fh := &azip.FileHeader{Name: name, Method: uint16(method)}
		if !modTime.IsZero() {
			fh.SetModTime(modTime)
		}
		fh.SetMode(0644)
		fh.SetPassword(w.password)
		return w.enc.CreateHeader(fh)
	}

	fh := &kzip.FileHeader{Name: name, Method: uint16(method), Modified: modTime}
	fh.SetMode(0644)
	return w.plain.CreateHeader(fh)
}

// CreateDir adds a directory entry. name must end with "/".
func (w *Writer) CreateDir(name string, modTime time.Time) error {
	if w.enc != nil {
		fh := &azip.FileHeader{Name: name, Method: azip.Store}
		if !modTime.IsZero() {
			fh.SetModTime(modTime)
		}
		fh.SetMode(os.ModeDir | 0755)
		_, err := w.enc.CreateHeader(fh)
		return err
	}

	fh := &kzip.FileHeader{Name: name, Method: kzip.Store, Modified: modTime}
	fh.SetMode(os.ModeDir | 0755)
	_, err := w.plain.CreateHeader(fh)
	return err
}

// WriteEntry adds a file entry holding exactly n bytes read from src.
func (w *Writer) WriteEntry(ctx context.Context, name string, method Method, src io.Reader, n int64, onProgress func(int64)) error {
	dst, err := w.CreateFile(name, method, time.Time{})
	if err != nil {
		return err
	}
	_, err = ioutils.CopyN(ctx, dst, src, n, onProgress)
	return err
}

// Close finishes the container by writing the central directory. It does
// not close the underlying writer.
func (w *Writer) Close() error {
	if w.enc != nil {
		return w.enc.Close()
	}
	return w.plain.Close()
}

// WriteFile creates path and writes a container into it through fn.
// The file is closed on return; a failure leaves a partial file behind
// for the caller to clean up.
func WriteFile(path string, opts Options, fn func(*Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := NewWriter(f, opts)
	if err := fn(zw); err != nil {
		return err
	}
	return zw.Close()
}
