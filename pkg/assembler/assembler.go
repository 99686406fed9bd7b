// Package assembler stacks named, equal-shaped 2D bands into a single image
// cube with axes (height, width, bands).
package assembler

import (
	"github.com/pkg/errors"

	"archeoview/internal/models"
)

// Assemble combines bands into a cube of shape (height, width, len(bands)).
//
// The returned names follow the input order, and band b of the cube holds
// bands[b]. Every band must have the same height and width; the check runs
// before the cube is allocated so no partial cube is ever produced.
func Assemble(bands []models.Band) ([]string, *models.Array, error) {
	if len(bands) == 0 {
		return nil, nil, errors.Wrap(models.ErrInvalidShape, "no bands to assemble")
	}

	height, width := bands[0].Dims()
	if height == 0 || width == 0 {
		return nil, nil, errors.Wrapf(models.ErrInvalidShape, "band %q is empty", bands[0].Name)
	}

	seen := make(map[string]bool, len(bands))
	for _, band := range bands {
		if seen[band.Name] {
			return nil, nil, errors.Wrapf(models.ErrDuplicateBand, "band %q", band.Name)
		}
		seen[band.Name] = true

		h, w := band.Dims()
		if h != height || w != width {
			return nil, nil, errors.Wrapf(models.ErrShapeMismatch,
				"band %q is %dx%d, expected %dx%d", band.Name, h, w, height, width)
		}
	}

	names := make([]string, len(bands))
	cube := models.NewArray(height, width, len(bands))
	for b, band := range bands {
		names[b] = band.Name
		for i := 0; i < height; i++ {
			for j := 0; j < width; j++ {
				cube.Set(i, j, b, band.Values.At(i, j))
			}
		}
	}

	return names, cube, nil
}
