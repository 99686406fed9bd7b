// Package pipeline wires the band loader, assembler, normalizer and PCA
// reducer into a single run, and exports the results as images.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"archeoview/internal/models"
	"archeoview/pkg/assembler"
	"archeoview/pkg/loader"
	"archeoview/pkg/normalize"
	"archeoview/pkg/pca"
	"archeoview/pkg/trend"
	"archeoview/pkg/visualization"
)

// Params holds the pipeline parameters
type Params struct {
	// InputDir is the directory holding one "<prefix>.<bandname>.<ext>" raster per band
	InputDir string

	// OutputDir is where images are written. Nothing is written when empty.
	OutputDir string

	// Extensions lists the raster extensions to load; empty means loader.DefaultExtensions
	Extensions []string

	// Components is the number of principal components to keep
	Components int

	// Normalize enables global min-max scaling before PCA
	Normalize bool

	// Workers bounds concurrent band decoding
	Workers int

	// SaveBands writes every principal component as a grayscale image
	SaveBands bool

	// SaveComposite writes the first three components as an RGB image
	SaveComposite bool

	// SaveTrend writes the first-to-last band difference as a colour grid
	SaveTrend bool

	// CellSize is the side in pixels of one trend grid cell
	CellSize int
}

// Result holds everything a run produces
type Result struct {
	// Names lists the bands in cube order
	Names []string

	// Cube is the (height, width, bands) image cube, normalized when requested
	Cube *models.Array

	// Reduced is the (height, width, components) PCA score cube
	Reduced *models.Array

	// ExplainedVarianceRatio holds the share of total variance of each component
	ExplainedVarianceRatio []float64
}

// Pipeline runs a full load, reduce and export pass over one scene directory
type Pipeline struct {
	params *Params
	log    *logrus.Logger
	loader *loader.Loader
	result *Result
}

// NewPipeline creates a pipeline. A nil logger falls back to the logrus standard logger.
func NewPipeline(params *Params, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		params: params,
		log:    log,
		loader: loader.NewLoader(params.Extensions, params.Workers, log),
	}
}

// Run assembles already decoded bands, optionally normalizes the cube and
// reduces it to the given number of principal components. It performs no I/O.
func Run(bands []models.Band, components int, normalized bool) (*Result, error) {
	names, cube, err := assembler.Assemble(bands)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble bands: %w", err)
	}

	if normalized {
		cube, err = normalize.MinMax(cube, false)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize cube: %w", err)
		}
	}

	reduced, ratio, err := pca.Reduce(cube, components, false)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce cube: %w", err)
	}

	return &Result{
		Names:                  names,
		Cube:                   cube,
		Reduced:                reduced,
		ExplainedVarianceRatio: ratio,
	}, nil
}

// Process runs the complete pipeline
func (p *Pipeline) Process(ctx context.Context) error {
	// Step 1: Load bands
	p.log.WithField("step", 1).Infof("loading bands from %s", p.params.InputDir)
	bands, err := p.loader.Load(ctx, p.params.InputDir)
	if err != nil {
		return fmt.Errorf("failed to load bands: %w", err)
	}

	// Step 2: Assemble, normalize and reduce
	p.log.WithFields(logrus.Fields{
		"step":       2,
		"components": p.params.Components,
		"normalize":  p.params.Normalize,
	}).Info("reducing band dimension")
	result, err := Run(bands, p.params.Components, p.params.Normalize)
	if err != nil {
		return err
	}
	p.result = result

	height, width, count := result.Cube.Dims()
	lo, hi, err := normalize.Range(result.Cube)
	if err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"height": height,
		"width":  width,
		"bands":  count,
		"min":    lo,
		"max":    hi,
	}).Debug("assembled cube")
	for c, ratio := range result.ExplainedVarianceRatio {
		p.log.WithField("component", c+1).Infof("explained variance ratio %.4f", ratio)
	}

	// Step 3: Export images
	if p.params.OutputDir == "" {
		return nil
	}
	p.log.WithField("step", 3).Infof("writing images to %s", p.params.OutputDir)
	if err := os.MkdirAll(p.params.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return p.export(result)
}

// export writes the images selected in params
func (p *Pipeline) export(result *Result) error {
	_, _, k := result.Reduced.Dims()
	labels := make([]string, k)
	for c := range labels {
		labels[c] = fmt.Sprintf("pc%d", c+1)
	}

	viewer, err := visualization.NewViewer(result.Reduced, labels)
	if err != nil {
		return err
	}

	if p.params.SaveBands {
		dir := filepath.Join(p.params.OutputDir, "components")
		if err := viewer.SaveBandSequence(dir); err != nil {
			return fmt.Errorf("failed to save components: %w", err)
		}
	}

	if p.params.SaveComposite {
		if k < 3 {
			p.log.Warnf("skipping composite: needs 3 components, have %d", k)
		} else {
			img, err := viewer.Composite(0, 1, 2)
			if err != nil {
				return err
			}
			if err := viewer.SaveImage(img, filepath.Join(p.params.OutputDir, "composite.png")); err != nil {
				return fmt.Errorf("failed to save composite: %w", err)
			}
		}
	}

	if p.params.SaveTrend {
		if err := p.saveTrend(result.Cube); err != nil {
			return fmt.Errorf("failed to save trend: %w", err)
		}
	}

	return nil
}

// saveTrend draws the difference between the last and first band of the cube
func (p *Pipeline) saveTrend(cube *models.Array) error {
	_, _, count := cube.Dims()
	if count < 2 {
		p.log.Warnf("skipping trend: needs 2 bands, have %d", count)
		return nil
	}

	diff, err := trend.Difference(cube.BandsFirst())
	if err != nil {
		return err
	}
	img, err := trend.RenderGrid(diff, p.params.CellSize)
	if err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(p.params.OutputDir, "trend.png"))
	if err != nil {
		return err
	}
	defer file.Close()

	return trend.WritePNG(file, img)
}

// Result returns the outcome of the last successful Process, or nil
func (p *Pipeline) Result() *Result {
	return p.result
}
