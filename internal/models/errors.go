package models

import "errors"

// Conversion failures. Each is reported per file, wrapped with context.
var (
	ErrFormatUndetermined          = errors.New("cannot determine data format from file size")
	ErrFileTooShortOrCorrupt       = errors.New("bad file format or corrupted file")
	ErrDegenerateColorRange        = errors.New("degenerate color range")
	ErrConflictingAxialModes       = errors.New("axial and axial-all modes are mutually exclusive")
	ErrAllocationFailure           = errors.New("cannot allocate memory for data")
	ErrUnsupportedAxialElementType = errors.New("unsupported axial element type")
	ErrInvalidAxialProfile         = errors.New("invalid axial profile")
	ErrUnknownProjection           = errors.New("unknown projection function")
)
