package convert

import "errors"

var (
	// ErrValidation is returned when a file fails the intake checks
	// (unsupported type, oversized) or when options are out of range.
	ErrValidation = errors.New("validation failed")

	// ErrRead is returned when a file's byte source cannot be fully read.
	ErrRead = errors.New("read failed")

	// ErrDecode is returned when bytes cannot be decoded as an image.
	ErrDecode = errors.New("image decode failed")

	// ErrEncode is returned when the requested output cannot be produced,
	// including formats with no encoder on the executing platform.
	ErrEncode = errors.New("image encode failed")

	// ErrBatchConversion is returned when the remote batch endpoint
	// responds with a non-success status.
	ErrBatchConversion = errors.New("batch conversion failed")
)
