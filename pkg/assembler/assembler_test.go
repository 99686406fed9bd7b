package assembler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"archeoview/internal/models"
)

func band(name string, rows, cols int, values ...float64) models.Band {
	return models.Band{Name: name, Values: mat.NewDense(rows, cols, values)}
}

func TestAssembleKeepsBandOrder(t *testing.T) {
	bands := []models.Band{
		band("red", 2, 2, 1, 2, 3, 4),
		band("nir", 2, 2, 4, 3, 2, 1),
		band("blue", 2, 2, 2, 2, 2, 2),
	}

	names, cube, err := Assemble(bands)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "nir", "blue"}, names)
	assert.Equal(t, []int{2, 2, 3}, cube.Shape)

	for b, in := range bands {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				assert.Equal(t, in.Values.At(i, j), cube.At(i, j, b), "band %s at (%d,%d)", in.Name, i, j)
			}
		}
	}
}

func TestAssembleNonSquare(t *testing.T) {
	names, cube, err := Assemble([]models.Band{
		band("a", 2, 3, 1, 2, 3, 4, 5, 6),
		band("b", 2, 3, 6, 5, 4, 3, 2, 1),
	})
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Equal(t, []int{2, 3, 2}, cube.Shape)
	assert.Equal(t, 6.0, cube.At(1, 2, 0))
	assert.Equal(t, 1.0, cube.At(1, 2, 1))
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name  string
		bands []models.Band
		want  error
	}{
		{"no bands", nil, models.ErrInvalidShape},
		{"nil matrix", []models.Band{{Name: "x"}}, models.ErrInvalidShape},
		{
			"differing shapes",
			[]models.Band{band("red", 2, 2, 1, 2, 3, 4), band("nir", 1, 2, 1, 2)},
			models.ErrShapeMismatch,
		},
		{
			"transposed shapes",
			[]models.Band{band("red", 2, 3, 1, 2, 3, 4, 5, 6), band("nir", 3, 2, 1, 2, 3, 4, 5, 6)},
			models.ErrShapeMismatch,
		},
		{
			"duplicate name",
			[]models.Band{band("red", 1, 1, 1), band("red", 1, 1, 2)},
			models.ErrDuplicateBand,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			names, cube, err := Assemble(tc.bands)
			assert.True(t, errors.Is(err, tc.want), "expected %v, got %v", tc.want, err)
			assert.Nil(t, names)
			assert.Nil(t, cube)
		})
	}
}
