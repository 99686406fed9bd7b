// Package pca reduces the band dimension of image cubes with Principal
// Component Analysis.
//
// Pixels are observations and bands are variables: a cube of shape
// (height, width, bands) is flattened row-major into a (height*width) x bands
// matrix, centred on the per-band mean and decomposed with gonum's stat.PC.
// Scores are reshaped back into (height, width, k).
package pca

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"archeoview/internal/models"
)

// DefaultDimensions is the number of components kept when the caller has no
// preference; three components map directly onto an RGB composite.
const DefaultDimensions = 3

// Model is a fitted PCA projection
type Model struct {
	// Mean is the per-band mean removed before projecting
	Mean []float64

	// Components holds one unit direction per column (bands x k), ordered by
	// descending explained variance. Columns are mutually orthogonal.
	Components *mat.Dense

	// ExplainedVariance is the variance of the scores along each component
	ExplainedVariance []float64

	// ExplainedVarianceRatio is each component's share of the total variance
	// of all original bands, so it sums to less than one when k < bands.
	ExplainedVarianceRatio []float64
}

// Reduce projects an image cube onto its first nDimensions principal components.
//
// It returns the scores with shape (height, width, nDimensions) and the
// explained variance ratio of each kept component. The output always uses the
// bands-last convention even when bandsFirst describes the input as
// (bands, height, width).
//
// The sign of each component is arbitrary in PCA; Reduce fixes it so the
// largest loading of every component is positive.
func Reduce(a *models.Array, nDimensions int, bandsFirst bool) (*models.Array, []float64, error) {
	model, err := Fit(a, nDimensions, bandsFirst)
	if err != nil {
		return nil, nil, err
	}

	reduced, err := model.Transform(a, bandsFirst)
	if err != nil {
		return nil, nil, err
	}

	ratio := make([]float64, len(model.ExplainedVarianceRatio))
	copy(ratio, model.ExplainedVarianceRatio)
	return reduced, ratio, nil
}

// Fit computes the first nDimensions principal components of an image cube
func Fit(a *models.Array, nDimensions int, bandsFirst bool) (*Model, error) {
	x, _, _, err := flatten(a, bandsFirst)
	if err != nil {
		return nil, err
	}
	pixels, bands := x.Dims()

	if nDimensions < 1 {
		return nil, errors.Wrapf(models.ErrInvalidDimensions, "requested %d components", nDimensions)
	}
	if nDimensions > bands {
		return nil, errors.Wrapf(models.ErrInsufficientBands,
			"requested %d components from %d bands", nDimensions, bands)
	}
	// The decomposition yields at most min(pixels, bands) components, and
	// variances need at least two observations.
	if pixels < 2 || nDimensions > pixels {
		return nil, errors.Wrapf(models.ErrInsufficientBands,
			"requested %d components from an image of %d pixels", nDimensions, pixels)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.Wrap(models.ErrDecomposition, "principal components")
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	components := mat.NewDense(bands, nDimensions, nil)
	components.Copy(vecs.Slice(0, bands, 0, nDimensions))
	orientComponents(components)

	total := floats.Sum(vars)
	variance := make([]float64, nDimensions)
	ratio := make([]float64, nDimensions)
	for c := 0; c < nDimensions; c++ {
		// guard tiny negative rounding noise
		variance[c] = math.Max(vars[c], 0)
		if total > 0 {
			ratio[c] = math.Min(variance[c]/total, 1)
		}
	}

	mean := make([]float64, bands)
	col := make([]float64, pixels)
	for b := 0; b < bands; b++ {
		mean[b] = stat.Mean(mat.Col(col, b, x), nil)
	}

	return &Model{
		Mean:                   mean,
		Components:             components,
		ExplainedVariance:      variance,
		ExplainedVarianceRatio: ratio,
	}, nil
}

// Dimensions returns the number of kept components
func (m *Model) Dimensions() int {
	_, k := m.Components.Dims()
	return k
}

// Transform projects an image cube onto the fitted components. The cube must
// have as many bands as the data the model was fitted on.
func (m *Model) Transform(a *models.Array, bandsFirst bool) (*models.Array, error) {
	x, height, width, err := flatten(a, bandsFirst)
	if err != nil {
		return nil, err
	}
	pixels, bands := x.Dims()
	if bands != len(m.Mean) {
		return nil, errors.Wrapf(models.ErrShapeMismatch,
			"model fitted on %d bands, image has %d", len(m.Mean), bands)
	}

	centred := mat.NewDense(pixels, bands, nil)
	centred.Apply(func(i, j int, v float64) float64 {
		return v - m.Mean[j]
	}, x)

	var scores mat.Dense
	scores.Mul(centred, m.Components)

	k := m.Dimensions()
	reduced := models.NewArray(height, width, k)
	for p := 0; p < pixels; p++ {
		for c := 0; c < k; c++ {
			reduced.Set(p/width, p%width, c, scores.At(p, c))
		}
	}
	return reduced, nil
}

// flatten returns the cube as a (height*width) x bands matrix, one row per
// pixel in row-major (height slowest) order.
func flatten(a *models.Array, bandsFirst bool) (*mat.Dense, int, int, error) {
	if err := a.Validate(); err != nil {
		return nil, 0, 0, err
	}

	var cube *models.Array
	if bandsFirst {
		cube = a.BandsLast()
	} else {
		cube = a.Clone()
	}
	height, width, bands := cube.Dims()

	// A bands-last cube is already laid out as the pixel matrix
	return mat.NewDense(height*width, bands, cube.Data), height, width, nil
}

// orientComponents flips each column so that its largest-magnitude entry is positive
func orientComponents(components *mat.Dense) {
	rows, cols := components.Dims()
	for c := 0; c < cols; c++ {
		best := 0
		for r := 1; r < rows; r++ {
			if math.Abs(components.At(r, c)) > math.Abs(components.At(best, c)) {
				best = r
			}
		}
		if components.At(best, c) >= 0 {
			continue
		}
		for r := 0; r < rows; r++ {
			components.Set(r, c, -components.At(r, c))
		}
	}
}
