// Package trend summarizes a raster time series per pixel.
//
// The input is a bands-first array (steps, rows, cols) where each band is one
// acquisition date. The change between the first and last step is turned into
// a colour index and drawn as a grid of coloured cells, blue for the
// strongest decrease and red for the strongest increase.
package trend

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"

	"archeoview/internal/models"
)

// Resolution is the number of colour steps per unit of difference
const Resolution = 100

// MaxColours caps the palette size. Ranges needing more steps than this are
// quantized linearly onto MaxColours colours.
const MaxColours = 256

// Series returns the time series of the pixel at (row, col)
func Series(a *models.Array, row, col int) ([]float64, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	steps, rows, cols := a.Dims()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return nil, errors.Wrapf(models.ErrInvalidShape, "pixel (%d,%d) outside %dx%d grid", row, col, rows, cols)
	}

	series := make([]float64, steps)
	for s := range series {
		series[s] = a.At(s, row, col)
	}
	return series, nil
}

// Difference returns the last step minus the first step, as a (1, rows, cols) array
func Difference(a *models.Array) (*models.Array, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	steps, rows, cols := a.Dims()
	if steps < 2 {
		return nil, errors.Wrapf(models.ErrInsufficientBands, "need at least 2 steps, have %d", steps)
	}

	size := rows * cols
	diff := models.NewArray(1, rows, cols)
	floats.SubTo(diff.Data, a.Data[(steps-1)*size:], a.Data[:size])
	return diff, nil
}

// Indices maps each difference to a colour index.
//
// Differences are scaled by Resolution and rounded, then shifted so the
// smallest maps to 0. n is the number of colours needed to cover the range,
// at most MaxColours; wider ranges are quantized evenly onto MaxColours steps.
func Indices(diff *models.Array) (idx []int, n int, err error) {
	if err := diff.Validate(); err != nil {
		return nil, 0, err
	}

	lo, hi := floats.Min(diff.Data), floats.Max(diff.Data)
	base := math.Round(lo * Resolution)
	steps := math.Round(hi*Resolution) - base

	idx = make([]int, len(diff.Data))
	if steps < MaxColours {
		for i, v := range diff.Data {
			idx[i] = int(math.Round(v*Resolution) - base)
		}
		return idx, int(steps) + 1, nil
	}

	span := hi - lo
	for i, v := range diff.Data {
		idx[i] = int(math.Round((v - lo) / span * (MaxColours - 1)))
	}
	return idx, MaxColours, nil
}

// Palette returns n colours sweeping the hue circle from blue to red
func Palette(n int) []colorful.Color {
	if n <= 0 {
		return nil
	}

	palette := make([]colorful.Color, n)
	for i := range palette {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		palette[i] = colorful.Hsl(240*(1-t), 1, 0.5).Clamped()
	}
	return palette
}

// RenderGrid draws the difference array as a grid of cellSize x cellSize
// squares, each filled with its palette colour and outlined in black.
func RenderGrid(diff *models.Array, cellSize int) (*image.RGBA, error) {
	if cellSize <= 0 {
		return nil, errors.Errorf("cell size must be positive, got %d", cellSize)
	}
	idx, n, err := Indices(diff)
	if err != nil {
		return nil, err
	}
	palette := Palette(n)

	_, rows, cols := diff.Dims()
	img := image.NewRGBA(image.Rect(0, 0, cols*cellSize, rows*cellSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	inset := 0
	if cellSize >= 3 {
		inset = 1
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := image.Rect(c*cellSize+inset, r*cellSize+inset, (c+1)*cellSize-inset, (r+1)*cellSize-inset)
			fill := palette[idx[r*cols+c]]
			draw.Draw(img, cell, image.NewUniform(fill), image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// WritePNG encodes an image as PNG
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
