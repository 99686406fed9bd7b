package models

import (
	"gonum.org/v1/gonum/mat"
)

// Band represents a single named channel of a raster scene
type Band struct {
	// Name identifies the band, e.g. "nir" for a file named "scene.nir.tif"
	Name string

	// Values is the band matrix: rows are the image height, columns the width
	Values mat.Matrix
}

// Dims returns the height and width of the band
func (b Band) Dims() (height, width int) {
	if b.Values == nil {
		return 0, 0
	}
	return b.Values.Dims()
}
