package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatermarkParts(t *testing.T) {
	w := NewWatermark(20240115, 930)
	assert.Equal(t, Watermark(202401150930), w)
	assert.Equal(t, 20240115, w.Date())
	assert.Equal(t, 930, w.HM())
}

func TestWatermarkValid(t *testing.T) {
	valid := []Watermark{0, 202401150000, 202401152359, 199912310101}
	for _, w := range valid {
		assert.True(t, w.Valid(), "%d", w)
	}

	invalid := []Watermark{-1, 2024011599, 202401152400, 202401150960, 202413010900, 202401320900, 202401000900}
	for _, w := range invalid {
		assert.False(t, w.Valid(), "%d", w)
	}
}
