// Package normalize rescales image arrays into the [0, 1] range.
package normalize

import (
	"gonum.org/v1/gonum/floats"

	"archeoview/internal/models"
)

// MinMax performs global min-max scaling of an image array.
//
// The minimum and maximum are taken over every element, not per band, and
// each value becomes (x - min) / (max - min). A constant array has no range
// to scale and yields zeros of the same shape.
//
// When bandsFirst is set the input is read as (bands, height, width) and the
// output is returned in that same convention; otherwise both are
// (height, width, bands). The input is never modified.
func MinMax(a *models.Array, bandsFirst bool) (*models.Array, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	var image *models.Array
	if bandsFirst {
		image = a.BandsLast()
	} else {
		image = a.Clone()
	}

	lo, hi := floats.Min(image.Data), floats.Max(image.Data)
	span := hi - lo
	for i, v := range image.Data {
		if span == 0 {
			image.Data[i] = 0
			continue
		}
		// divide rather than scale by 1/span so max maps to exactly 1
		image.Data[i] = (v - lo) / span
	}

	if bandsFirst {
		image = image.BandsFirst()
	}
	return image, nil
}

// Range returns the global minimum and maximum of an array.
func Range(a *models.Array) (lo, hi float64, err error) {
	if err := a.Validate(); err != nil {
		return 0, 0, err
	}
	return floats.Min(a.Data), floats.Max(a.Data), nil
}
