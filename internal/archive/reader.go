package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	azip "github.com/alexmullins/zip"

	ioutils "github.com/havonz/file-split-packer/internal/io"
)

// Reader reads a zip container from disk.
type Reader struct {
	rc       *azip.ReadCloser
	password string
	files    []*File
}

// File is one entry of a container.
type File struct {
	zf       *azip.File
	password string
}

// Open opens the container at path. password is used for encrypted
// entries and ignored for plain ones.
func Open(path, password string) (*Reader, error) {
	rc, err := azip.OpenReader(path)
	if err != nil {
		if errors.Is(err, azip.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrNotContainer, path)
		}
		return nil, err
	}

	r := &Reader{rc: rc, password: password}
	for _, zf := range rc.File {
		r.files = append(r.files, &File{zf: zf, password: password})
	}
	return r, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.rc.Close()
}

// Files returns the entries in central directory order.
func (r *Reader) Files() []*File {
	return r.files
}

// SingleEntry returns the only entry of a part container. Parts with
// zero or several entries, or whose entry is a directory, are rejected.
func (r *Reader) SingleEntry() (*File, error) {
	if len(r.files) != 1 {
		return nil, fmt.Errorf("%w, found %d", ErrNotSingleEntry, len(r.files))
	}
	f := r.files[0]
	if f.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryEntry, f.Name())
	}
	return f, nil
}

// TotalSize sums the uncompressed sizes of all file entries.
func (r *Reader) TotalSize() uint64 {
	var total uint64
	for _, f := range r.files {
		if !f.IsDir() {
			total += f.Size()
		}
	}
	return total
}

// Name returns the entry name as stored in the container.
func (f *File) Name() string { return f.zf.Name }

// Size returns the uncompressed size.
func (f *File) Size() uint64 { return f.zf.UncompressedSize64 }

// IsDir reports whether the entry is a directory.
func (f *File) IsDir() bool { return f.zf.FileInfo().IsDir() }

// Method returns the compression method of the entry data.
func (f *File) Method() Method { return Method(f.zf.Method) }

// Encrypted reports whether the entry data is encrypted.
func (f *File) Encrypted() bool { return f.zf.IsEncrypted() }

// Open returns a reader of the decompressed, decrypted entry data.
// Integrity failures surface from Read as ErrCorrupt.
func (f *File) Open() (io.ReadCloser, error) {
	if f.Encrypted() {
		if f.password == "" {
			return nil, fmt.Errorf("%w: %s", ErrPasswordRequired, f.Name())
		}
		f.zf.SetPassword(f.password)
		f.zf.DeferAuth = true
	}

	rc, err := f.zf.Open()
	if err != nil {
		return nil, mapError(err)
	}
	return &entryReader{rc: rc}, nil
}

// CheckPassword verifies the password against every encrypted entry
// without reading entry data.
func (r *Reader) CheckPassword() error {
	for _, f := range r.files {
		if !f.Encrypted() || f.IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		rc.Close()
	}
	return nil
}

type entryReader struct {
	rc io.ReadCloser
}

func (e *entryReader) Read(p []byte) (int, error) {
	n, err := e.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = mapError(err)
	}
	return n, err
}

func (e *entryReader) Close() error {
	return e.rc.Close()
}

func mapError(err error) error {
	switch {
	case errors.Is(err, azip.ErrPassword):
		return ErrWrongPassword
	case errors.Is(err, azip.ErrAuthentication),
		errors.Is(err, azip.ErrDecryption),
		errors.Is(err, azip.ErrChecksum),
		errors.Is(err, azip.ErrFormat),
		errors.Is(err, azip.ErrAlgorithm),
		errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	default:
		return err
	}
}

// ExtractAll writes every entry below dest. Entry names that are
// absolute or climb out of dest abort the extraction with ErrUnsafePath.
// onProgress receives the number of file bytes written per block.
func (r *Reader) ExtractAll(ctx context.Context, dest string, onProgress func(int64)) error {
	if err := ioutils.EnsureDir(dest); err != nil {
		return err
	}

	for _, f := range r.files {
		target, err := safeJoin(dest, f.Name())
		if err != nil {
			return err
		}

		if f.IsDir() {
			if err := ioutils.EnsureDir(target); err != nil {
				return err
			}
			continue
		}

		if err := ioutils.EnsureDir(filepath.Dir(target)); err != nil {
			return err
		}
		if err := extractFile(ctx, f, target, onProgress); err != nil {
			return fmt.Errorf("extract %s: %w", f.Name(), err)
		}
	}
	return nil
}

func extractFile(ctx context.Context, f *File, target string, onProgress func(int64)) (err error) {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := f.zf.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = ioutils.Copy(ctx, out, rc, onProgress)
	return err
}

func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if clean == "" || filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	clean = filepath.Clean(clean)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(dest, clean), nil
}
