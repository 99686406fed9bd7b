package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		array   *Array
		wantErr bool
	}{
		{"valid", NewArray(2, 3, 4), false},
		{"nil", nil, true},
		{"two axes", &Array{Data: make([]float64, 6), Shape: []int{2, 3}}, true},
		{"four axes", &Array{Data: make([]float64, 16), Shape: []int{2, 2, 2, 2}}, true},
		{"zero axis", &Array{Data: nil, Shape: []int{0, 2, 2}}, true},
		{"short data", &Array{Data: make([]float64, 5), Shape: []int{1, 2, 3}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.array.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidShape), "expected ErrInvalidShape, got %v", err)
		})
	}
}

func TestIndexIsRowMajor(t *testing.T) {
	a := NewArray(2, 3, 4)
	for i := range a.Data {
		a.Data[i] = float64(i)
	}

	assert.Equal(t, 0.0, a.At(0, 0, 0))
	assert.Equal(t, 1.0, a.At(0, 0, 1))
	assert.Equal(t, 4.0, a.At(0, 1, 0))
	assert.Equal(t, 12.0, a.At(1, 0, 0))
	assert.Equal(t, 23.0, a.At(1, 2, 3))
}

func TestBandsFirstRoundTrip(t *testing.T) {
	a := NewArray(2, 3, 4)
	for i := range a.Data {
		a.Data[i] = float64(i)
	}

	first := a.BandsFirst()
	require.Equal(t, []int{4, 2, 3}, first.Shape)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				assert.Equal(t, a.At(i, j, k), first.At(k, i, j))
			}
		}
	}

	back := first.BandsLast()
	assert.Equal(t, a.Shape, back.Shape)
	assert.Equal(t, a.Data, back.Data)
}

func TestCloneIsIndependent(t *testing.T) {
	a := NewArray(1, 1, 2)
	c := a.Clone()
	c.Data[0] = 5
	c.Shape[0] = 9

	assert.Equal(t, 0.0, a.Data[0])
	assert.Equal(t, 1, a.Shape[0])
}

func TestBandDims(t *testing.T) {
	b := Band{Name: "red", Values: mat.NewDense(2, 3, nil)}
	h, w := b.Dims()
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)

	h, w = Band{Name: "empty"}.Dims()
	assert.Zero(t, h)
	assert.Zero(t, w)
}
