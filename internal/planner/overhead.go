package planner

import "math"

// Byte costs of a single-entry stored container. Names appear twice: in
// the local header and in the central directory.
const (
	localHeaderLen     = 30
	centralHeaderLen   = 46
	endOfCentralLen    = 22
	dataDescriptorLen  = 16
	safetyMargin       = 32
	encryptionMargin   = 64
	zip64Allowance     = 112
	zip64ThresholdSize = math.MaxUint32
)

// StoredOverhead estimates the bytes a stored single-entry container adds
// on top of its payload. The estimate is conservative: the AES salt,
// verifier, authentication code and extra fields fit inside
// encryptionMargin, and caps at or above 4 GiB reserve room for zip64
// records.
func StoredOverhead(entryNameLen int, encrypted bool, size uint64) uint64 {
	name := uint64(entryNameLen)
	overhead := uint64(localHeaderLen+centralHeaderLen+endOfCentralLen+dataDescriptorLen+safetyMargin) + 2*name
	if encrypted {
		overhead += encryptionMargin
	}
	if size >= zip64ThresholdSize {
		overhead += zip64Allowance
	}
	return overhead
}
