package models

import "errors"

var (
	// ErrInvalidShape is returned when an array does not have exactly three
	// axes, or when its data length disagrees with its shape.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrShapeMismatch is returned when bands or arrays that must share
	// dimensions do not.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInsufficientBands is returned when more output dimensions are
	// requested than the input can provide.
	ErrInsufficientBands = errors.New("insufficient bands")

	// ErrInvalidDimensions is returned for a non-positive number of output dimensions.
	ErrInvalidDimensions = errors.New("invalid number of dimensions")

	// ErrDuplicateBand is returned when two bands share a name.
	ErrDuplicateBand = errors.New("duplicate band")

	// ErrDecomposition is returned when the eigen/SVD decomposition fails.
	ErrDecomposition = errors.New("decomposition failed")

	// ErrNoBands is returned when no raster band could be found.
	ErrNoBands = errors.New("no bands")
)
