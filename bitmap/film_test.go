package bitmap

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/sensor"
)

func filledFilm(t *testing.T, w, h uint32, v float64) *sensor.FilmStorage {
	t.Helper()
	storage := sensor.NewFilmStorage(w, h, 1)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			storage.Splat(sensor.Element{X: x, Y: y}, polarimetric.Unpolarized(v))
		}
	}
	return storage
}

func TestToImageRejectsEmptyFilm(t *testing.T) {
	empty := sensor.NewFilmStorage(0, 0, 0)
	if _, err := ToImage(empty, DefaultSettings(1)); err != ErrEmptyFilm {
		t.Fatalf("ToImage(empty) error = %v, want ErrEmptyFilm", err)
	}
}

func TestToImageProducesCorrectResolution(t *testing.T) {
	storage := filledFilm(t, 4, 3, 0.5)
	img, err := ToImage(storage, DefaultSettings(3))
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("image bounds = %dx%d, want 4x3", b.Dx(), b.Dy())
	}
}

func TestEncodePNGProducesValidPNG(t *testing.T) {
	storage := filledFilm(t, 2, 2, 0.8)
	data, err := EncodePNG(storage, DefaultSettings(3))
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode of EncodePNG output: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("decoded bounds = %v, want 2x2", img.Bounds())
	}
}

func TestColourmapModeUsesColourmap(t *testing.T) {
	storage := filledFilm(t, 1, 1, 1.0)
	settings := Settings{Operator: Linear{}, Mode: ModeColourmap, Colourmap: Viridis}
	img, err := ToImage(storage, settings)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	// Viridis at v=1 is a bright yellow: R and G high, B low.
	if r>>8 < 200 || b>>8 > 100 {
		t.Fatalf("colour at v=1 = (%d,%d,%d), want a bright-yellow viridis endpoint", r>>8, g>>8, b>>8)
	}
}
