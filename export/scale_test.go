package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScaleToFit(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"within bounds", 300, 200, 300, 200},
		{"exactly at bounds", 400, 300, 400, 300},
		{"width clamp", 800, 400, 400, 200},
		{"height clamp", 200, 600, 100, 300},
		{"both clamp, proportional", 800, 600, 400, 300},
		{"both clamp, second pass rounds", 1000, 900, 333, 300},
		{"extreme landscape floors height", 4000, 3, 400, 1},
		{"extreme portrait floors width", 3, 4000, 1, 300},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, h := ScaleToFit(c.w, c.h)
			assert.Equal(t, c.wantW, w)
			assert.Equal(t, c.wantH, h)
		})
	}
}

func TestScaleToFitStaysInBounds(t *testing.T) {
	for _, c := range []struct{ w, h int }{
		{1, 1}, {401, 301}, {4000, 3}, {3, 4000}, {1920, 1080}, {1080, 1920}, {10000, 10000},
	} {
		w, h := ScaleToFit(c.w, c.h)
		assert.LessOrEqual(t, w, MaxImageWidth, "%dx%d", c.w, c.h)
		assert.LessOrEqual(t, h, MaxImageHeight, "%dx%d", c.w, c.h)
		assert.Greater(t, w, 0)
		assert.Greater(t, h, 0)
	}
}

func TestScaleToFitPreservesAspectRatio(t *testing.T) {
	w, h := ScaleToFit(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, float64(w)/float64(h), 0.02)
}
