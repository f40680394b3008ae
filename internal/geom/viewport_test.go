package geom

import (
	"testing"

	"github.com/cadream/backend/internal/models"
)

func TestWorldBoundsFromViewport(t *testing.T) {
	tests := []struct {
		name      string
		w, h      float64
		pan       models.Point
		scale     float64
		paddingPx float64
		want      models.Bounds
	}{
		{
			name: "identity", w: 800, h: 600, scale: 1,
			want: models.Bounds{Max: models.Point{X: 800, Y: 600}},
		},
		{
			name: "zoomed in halves the world window", w: 800, h: 600, scale: 2,
			want: models.Bounds{Max: models.Point{X: 400, Y: 300}},
		},
		{
			name: "pan shifts the window", w: 100, h: 100,
			pan: models.Point{X: -50, Y: 30}, scale: 1,
			want: models.Bounds{
				Min: models.Point{X: 50, Y: -30},
				Max: models.Point{X: 150, Y: 70},
			},
		},
		{
			name: "padding grows in world units", w: 100, h: 100, scale: 2, paddingPx: 10,
			want: models.Bounds{
				Min: models.Point{X: -5, Y: -5},
				Max: models.Point{X: 55, Y: 55},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorldBoundsFromViewport(tt.w, tt.h, tt.pan, tt.scale, tt.paddingPx)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWorldBoundsFromViewportScaleClamp(t *testing.T) {
	// Zero scale is clamped instead of dividing by zero.
	got := WorldBoundsFromViewport(100, 100, models.Point{}, 0, 0)
	if got.Max.X != 100/minViewportScale {
		t.Errorf("got %+v", got)
	}

	// Negative scale behaves like its magnitude.
	neg := WorldBoundsFromViewport(100, 100, models.Point{}, -2, 0)
	pos := WorldBoundsFromViewport(100, 100, models.Point{}, 2, 0)
	if neg != pos {
		t.Errorf("neg %+v != pos %+v", neg, pos)
	}
}
