// Package loader reads a directory of single-band raster files into named
// band matrices.
//
// Each band lives in its own file named "<prefix>.<bandname>.<ext>", for
// example "scene.nir.tif". Only files with a recognized raster extension are
// considered; everything else in the directory is ignored.
package loader

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/tiff"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"archeoview/internal/models"
)

// DefaultExtensions lists the raster extensions recognized when none are configured
var DefaultExtensions = []string{".tif", ".tiff"}

// BandFile is a raster file holding one band
type BandFile struct {
	// Name is the band name parsed from the filename
	Name string

	// Path is the full path of the file
	Path string
}

// BandName extracts the band name from a filename of the form
// "<prefix>.<bandname>.<ext>": the second dot-delimited segment.
func BandName(filename string) (string, bool) {
	parts := strings.Split(filepath.Base(filename), ".")
	if len(parts) < 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// IsRaster reports whether filename carries one of the given extensions (case-insensitive)
func IsRaster(filename string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// ListBandFiles returns the raster band files of dir sorted by filename.
// Subdirectories, non-raster files and names that do not follow the
// "<prefix>.<bandname>.<ext>" convention are skipped.
func ListBandFiles(dir string, exts []string) ([]BandFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	// os.ReadDir returns entries sorted by filename
	var files []BandFile
	for _, entry := range entries {
		if entry.IsDir() || !IsRaster(entry.Name(), exts) {
			continue
		}
		name, ok := BandName(entry.Name())
		if !ok {
			continue
		}
		files = append(files, BandFile{Name: name, Path: filepath.Join(dir, entry.Name())})
	}
	return files, nil
}

// DecodeBand decodes a single-band TIFF image into a height x width matrix.
//
// Gray and Gray16 images keep their raw sample values; any other colour model
// is reduced to its 16-bit luminance. Floating-point TIFFs are not supported
// by the decoder.
func DecodeBand(r io.Reader) (*mat.Dense, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode tiff")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.Wrap(models.ErrInvalidShape, "empty image")
	}

	values := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			values[y*width+x] = sampleAt(img, bounds.Min.X+x, bounds.Min.Y+y)
		}
	}
	return mat.NewDense(height, width, values), nil
}

func sampleAt(img image.Image, x, y int) float64 {
	switch m := img.(type) {
	case *image.Gray16:
		return float64(m.Gray16At(x, y).Y)
	case *image.Gray:
		return float64(m.GrayAt(x, y).Y)
	default:
		return float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
	}
}

// ReadBand opens and decodes one band file
func ReadBand(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeBand(file)
}

// Loader decodes every band of a scene directory
type Loader struct {
	// Extensions lists the recognized raster extensions
	Extensions []string

	// Workers bounds how many files are decoded at once
	Workers int

	log *logrus.Logger
}

// NewLoader creates a loader. Empty extensions fall back to DefaultExtensions,
// a non-positive worker count to the number of CPUs, and a nil logger to the
// logrus standard logger.
func NewLoader(exts []string, workers int, log *logrus.Logger) *Loader {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{Extensions: exts, Workers: workers, log: log}
}

// Load decodes all band files of dir. Files are decoded concurrently but the
// returned bands keep the filename order. The first failure cancels the
// remaining work.
func (l *Loader) Load(ctx context.Context, dir string) ([]models.Band, error) {
	files, err := ListBandFiles(dir, l.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(models.ErrNoBands, "no raster files with extensions %v in %s", l.Extensions, dir)
	}

	bands := make([]models.Band, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Workers)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values, err := ReadBand(f.Path)
			if err != nil {
				return errors.Wrapf(err, "band %q (%s)", f.Name, filepath.Base(f.Path))
			}
			rows, cols := values.Dims()
			l.log.WithFields(logrus.Fields{
				"band":   f.Name,
				"file":   filepath.Base(f.Path),
				"height": rows,
				"width":  cols,
			}).Debug("decoded band")

			bands[i] = models.Band{Name: f.Name, Values: values}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.log.WithField("bands", len(bands)).Infof("loaded %d bands from %s", len(bands), dir)
	return bands, nil
}
