package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// Array is a three-axis array of float64 values.
//
// The axis order is not self-describing: an image cube is stored as
// (height, width, bands) unless the caller states it uses the bands-first
// convention (bands, height, width).
type Array struct {
	// Data holds the values as a 1D slice in row-major order (last axis fastest)
	Data []float64

	// Shape is the size of each axis
	Shape []int
}

// NewArray allocates a zero-filled array with the given axis sizes
func NewArray(d0, d1, d2 int) *Array {
	return &Array{
		Data:  make([]float64, d0*d1*d2),
		Shape: []int{d0, d1, d2},
	}
}

// Validate checks that the array has exactly three positive axes and that
// the data length matches them.
func (a *Array) Validate() error {
	if a == nil {
		return errors.Wrap(ErrInvalidShape, "nil array")
	}
	if len(a.Shape) != 3 {
		return errors.Wrapf(ErrInvalidShape, "expected 3 axes, got %d", len(a.Shape))
	}
	size := 1
	for axis, n := range a.Shape {
		if n <= 0 {
			return errors.Wrapf(ErrInvalidShape, "axis %d has size %d", axis, n)
		}
		size *= n
	}
	if size != len(a.Data) {
		return errors.Wrapf(ErrInvalidShape, "shape %v needs %d values, have %d", a.Shape, size, len(a.Data))
	}
	return nil
}

// Dims returns the three axis sizes. It panics if the array has not been validated.
func (a *Array) Dims() (int, int, int) {
	return a.Shape[0], a.Shape[1], a.Shape[2]
}

// Index returns the position of element (i, j, k) in Data
func (a *Array) Index(i, j, k int) int {
	return (i*a.Shape[1]+j)*a.Shape[2] + k
}

// At returns element (i, j, k)
func (a *Array) At(i, j, k int) float64 {
	return a.Data[a.Index(i, j, k)]
}

// Set stores v at element (i, j, k)
func (a *Array) Set(i, j, k int, v float64) {
	a.Data[a.Index(i, j, k)] = v
}

// Clone returns a deep copy
func (a *Array) Clone() *Array {
	data := make([]float64, len(a.Data))
	copy(data, a.Data)
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	return &Array{Data: data, Shape: shape}
}

// BandsLast moves the leading axis to the end: (bands, height, width)
// becomes (height, width, bands). The receiver is left untouched.
func (a *Array) BandsLast() *Array {
	b, h, w := a.Dims()
	out := NewArray(h, w, b)
	for k := 0; k < b; k++ {
		for i := 0; i < h; i++ {
			for j := 0; j < w; j++ {
				out.Set(i, j, k, a.At(k, i, j))
			}
		}
	}
	return out
}

// BandsFirst moves the trailing axis to the front: (height, width, bands)
// becomes (bands, height, width). It is the inverse of BandsLast.
func (a *Array) BandsFirst() *Array {
	h, w, b := a.Dims()
	out := NewArray(b, h, w)
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			for k := 0; k < b; k++ {
				out.Set(k, i, j, a.At(i, j, k))
			}
		}
	}
	return out
}

// String implements fmt.Stringer
func (a *Array) String() string {
	return fmt.Sprintf("Array%v", a.Shape)
}
