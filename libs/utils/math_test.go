package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvg(t *testing.T) {
	assert.InDelta(t, 0.9, Avg(0.8, 1.0), 1e-9)
	assert.EqualValues(t, -1.0, Avg())
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean(3, 1, 2), 1e-9)
	assert.InDelta(t, 2.5, Mean(4, 1, 3, 2), 1e-9)
	assert.EqualValues(t, -1.0, Mean())

	// Mean不打乱caller的切片
	data := []float64{3, 1, 2}
	Mean(data...)
	assert.Equal(t, []float64{3, 1, 2}, data)
}

func TestMaxMin(t *testing.T) {
	assert.EqualValues(t, 3, Max(1, 3, 2))
	assert.EqualValues(t, 1, Min(2, 1, 3))
	assert.EqualValues(t, -1.0, Max())
	assert.EqualValues(t, -1.0, Min())
}
