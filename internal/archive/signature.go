package archive

import (
	"bytes"
	"errors"
	"io"
	"os"
)

var signatures = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06},
	{'P', 'K', 0x07, 0x08},
}

// HasSignature reports whether head starts with a zip signature.
func HasSignature(head []byte) bool {
	if len(head) < 4 {
		return false
	}
	for _, sig := range signatures {
		if bytes.Equal(head[:4], sig) {
			return true
		}
	}
	return false
}

// IsContainer reports whether the file at path starts with a zip
// signature. Files shorter than four bytes are not containers.
func IsContainer(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return HasSignature(head), nil
}
