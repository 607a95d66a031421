package ioutils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havonz/file-split-packer/internal/model"
)

func TestCopyN(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefgh"), 4096)
	var dst bytes.Buffer
	var reported int64

	n, err := CopyN(context.Background(), &dst, bytes.NewReader(src), 10_000, func(delta int64) {
		reported += delta
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), n)
	assert.Equal(t, int64(10_000), reported)
	assert.Equal(t, src[:10_000], dst.Bytes())
}

func TestCopyN_ShortSource(t *testing.T) {
	var dst bytes.Buffer
	n, err := CopyN(context.Background(), &dst, strings.NewReader("short"), 100, nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, int64(5), n)
}

func TestCopyN_Zero(t *testing.T) {
	var dst bytes.Buffer
	n, err := CopyN(context.Background(), &dst, strings.NewReader(""), 0, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCopyN_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dst bytes.Buffer
	_, err := CopyN(ctx, &dst, strings.NewReader("data"), 4, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, dst.Len())
}

func TestCopy(t *testing.T) {
	src := bytes.Repeat([]byte{7}, BlockSize+123)
	var dst bytes.Buffer
	var calls int

	n, err := Copy(context.Background(), &dst, bytes.NewReader(src), func(int64) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Equal(t, 2, calls)
	assert.True(t, bytes.Equal(src, dst.Bytes()))
}

func TestPreparePartsDir(t *testing.T) {
	root := t.TempDir()

	t.Run("creates missing directory", func(t *testing.T) {
		path := filepath.Join(root, "new.parts")
		require.NoError(t, PreparePartsDir(path, false))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("accepts empty directory", func(t *testing.T) {
		path := filepath.Join(root, "empty.parts")
		require.NoError(t, os.Mkdir(path, 0755))
		assert.NoError(t, PreparePartsDir(path, false))
	})

	t.Run("rejects file", func(t *testing.T) {
		path := filepath.Join(root, "file.parts")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		assert.ErrorIs(t, PreparePartsDir(path, true), model.ErrPartsPathNotDir)
	})

	t.Run("non-empty directory", func(t *testing.T) {
		path := filepath.Join(root, "full.parts")
		require.NoError(t, os.Mkdir(path, 0755))
		stale := filepath.Join(path, "stale.part-001.zip")
		require.NoError(t, os.WriteFile(stale, []byte("x"), 0644))

		assert.ErrorIs(t, PreparePartsDir(path, false), model.ErrPartsDirNotEmpty)
		assert.FileExists(t, stale)

		require.NoError(t, PreparePartsDir(path, true))
		assert.NoFileExists(t, stale)
		empty, err := DirIsEmpty(path)
		require.NoError(t, err)
		assert.True(t, empty)
	})
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "out.merge.tmp")
	final := filepath.Join(dir, "out")

	require.NoError(t, os.WriteFile(final, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(tmp, []byte("new"), 0644))

	require.NoError(t, ReplaceFile(tmp, final))
	got, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	assert.NoFileExists(t, tmp)
}
