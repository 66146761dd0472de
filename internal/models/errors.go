package models

import "errors"

// Sentinel errors for model lookups.
var (
	ErrModelNotFound   = errors.New("model not found")
	ErrElementNotFound = errors.New("element not found")
)

// ErrInvalidInput marks a request that cannot be answered as given
// (empty or malformed model id, negative bounds, bad path expression).
var ErrInvalidInput = errors.New("invalid input")

// Sentinel errors for model ingestion.
var (
	ErrDecode     = errors.New("model payload could not be decompressed")
	ErrParse      = errors.New("model payload does not match the expected JSON shape")
	ErrGraphBuild = errors.New("model graph could not be built")
)
