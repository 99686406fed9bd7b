package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"archeoview/internal/models"
)

// Viewer turns the bands of an image cube into displayable images.
// The cube uses the (height, width, bands) convention, as produced by the
// assembler and by PCA.
type Viewer struct {
	// cube holds the band values
	cube *models.Array

	// names labels each band; used for output filenames
	names []string

	// dimensions of the cube
	height int
	width  int
	bands  int
}

// NewViewer creates a viewer over a (height, width, bands) cube.
// Bands without a name are labelled by their index.
func NewViewer(cube *models.Array, names []string) (*Viewer, error) {
	if err := cube.Validate(); err != nil {
		return nil, err
	}
	height, width, bands := cube.Dims()

	labels := make([]string, bands)
	for b := range labels {
		if b < len(names) && names[b] != "" {
			labels[b] = names[b]
		} else {
			labels[b] = fmt.Sprintf("band%02d", b)
		}
	}

	return &Viewer{
		cube:   cube,
		names:  labels,
		height: height,
		width:  width,
		bands:  bands,
	}, nil
}

// bandRange returns the minimum and maximum of one band
func (v *Viewer) bandRange(band int) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			value := v.cube.At(y, x, band)
			lo = math.Min(lo, value)
			hi = math.Max(hi, value)
		}
	}
	return lo, hi
}

// stretch maps value from [lo, hi] onto [0, 1]; a flat band maps to 0
func stretch(value, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return math.Max(0, math.Min(1, (value-lo)/(hi-lo)))
}

// ExtractBand renders one band as a 16-bit grayscale image, contrast
// stretched to the band's own range.
func (v *Viewer) ExtractBand(band int) (image.Image, error) {
	if band < 0 || band >= v.bands {
		return nil, fmt.Errorf("band %d out of range [0, %d)", band, v.bands)
	}

	lo, hi := v.bandRange(band)
	img := image.NewGray16(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			value := stretch(v.cube.At(y, x, band), lo, hi)
			img.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(value * 65535))})
		}
	}
	return img, nil
}

// Composite renders three bands as the red, green and blue channels of a
// false-colour image. Each channel is stretched independently.
func (v *Viewer) Composite(r, g, b int) (image.Image, error) {
	channels := []int{r, g, b}
	var lo, hi [3]float64
	for c, band := range channels {
		if band < 0 || band >= v.bands {
			return nil, fmt.Errorf("band %d out of range [0, %d)", band, v.bands)
		}
		lo[c], hi[c] = v.bandRange(band)
	}

	img := image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	for y := 0; y < v.height; y++ {
		for x := 0; x < v.width; x++ {
			var px [3]uint8
			for c, band := range channels {
				px[c] = uint8(math.Round(stretch(v.cube.At(y, x, band), lo[c], hi[c]) * 255))
			}
			img.SetRGBA(x, y, color.RGBA{R: px[0], G: px[1], B: px[2], A: 255})
		}
	}
	return img, nil
}

// SaveImage writes an image as PNG, or as JPEG when filename ends in .jpg/.jpeg
func (v *Viewer) SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(file, img)
	}
}

// SaveBandSequence writes every band as "<index>_<name>.png" into outputDir
func (v *Viewer) SaveBandSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for b := 0; b < v.bands; b++ {
		img, err := v.ExtractBand(b)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("%02d_%s.png", b, v.names[b]))
		if err := v.SaveImage(img, filename); err != nil {
			return err
		}
	}

	return nil
}
