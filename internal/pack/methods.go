package pack

import (
	"github.com/havonz/file-split-packer/internal/archive"
	"github.com/havonz/file-split-packer/internal/model"
)

// methods is the compression layout of a SplitThenZip run.
type methods struct {
	// prePass is used for the directory container built before slicing.
	prePass archive.Method
	// parts is used for the entry inside every part.
	parts archive.Method
	// strict is set when every part must stay within the requested size.
	strict bool
}

// selectMethods picks the compression layout for SplitThenZip.
//
// Splitting by size demands a hard cap, so parts are stored. A directory
// can only honor that cap when its pre-pass already compressed the data;
// store-split-compress with a size cap is rejected. Files split by count
// deflate their parts.
func selectMethods(req model.SplitRequest, isDir bool) (methods, error) {
	m := methods{prePass: archive.Deflate, parts: archive.Store}
	if req.DirMode == model.DirModeStoreSplitCompress {
		m = methods{prePass: archive.Store, parts: archive.Deflate}
	}

	m.strict = req.Unit == model.SplitBySize
	if m.strict && isDir && m.parts != archive.Store {
		return methods{}, model.ErrUnsatisfiableCap
	}

	switch {
	case m.strict:
		m.parts = archive.Store
	case !isDir:
		m.parts = archive.Deflate
	}
	return m, nil
}

func levelOf(req model.SplitRequest) int {
	if req.CompressionLevel == nil {
		return archive.DefaultLevel
	}
	return *req.CompressionLevel
}
