package bitmap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"

	"github.com/sixy6e/wavetrace/sensor"
)

// ErrEmptyFilm is returned when a film has zero resolution.
var ErrEmptyFilm = errors.New("bitmap: film has zero resolution")

// Settings bundles the tonemap operator, channel-selection mode, and
// colourmap a film is exported with.
type Settings struct {
	Operator  Operator
	Mode      Mode
	Channel   string // consulted only when Mode == ModeSelect
	Colourmap Colourmap
}

// DefaultSettings returns Linear/SelectMode(channels) with a Greyscale
// colourmap, the spec's stated default selection.
func DefaultSettings(channels int) Settings {
	return Settings{
		Operator:  Linear{},
		Mode:      SelectMode(channels),
		Colourmap: Greyscale,
	}
}

// ToImage tonemaps storage's 2D film (depth must be 1 — PNG has no
// third spatial axis) into an *image.NRGBA ready for png.Encode.
func ToImage(storage *sensor.FilmStorage, s Settings) (*image.NRGBA, error) {
	if storage.W == 0 || storage.H == 0 {
		return nil, ErrEmptyFilm
	}
	if s.Colourmap == nil {
		s.Colourmap = Greyscale
	}
	if s.Operator == nil {
		s.Operator = Linear{}
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(storage.W), int(storage.H)))
	for y := uint32(0); y < storage.H; y++ {
		for x := uint32(0); x < storage.W; x++ {
			sample := storage.Mean(sensor.Element{X: x, Y: y})
			v := s.Operator.Apply(Intensity(s.Mode, s.Channel, sample))

			var rgb RGB
			if s.Mode == ModeColourmap {
				rgb = s.Colourmap(v)
			} else {
				rgb = RGB{R: v, G: v, B: v}
			}

			img.SetNRGBA(int(x), int(y), color.NRGBA{
				R: to8(rgb.R),
				G: to8(rgb.G),
				B: to8(rgb.B),
				A: 255,
			})
		}
	}
	return img, nil
}

func to8(v float64) uint8 {
	v = clamp01(v)
	return uint8(v*255 + 0.5)
}

// EncodePNG tonemaps and PNG-encodes storage, returning the encoded
// bytes for the caller to write wherever it likes (a local file, or
// WriteVFS below for a TileDB-VFS-backed destination).
func EncodePNG(storage *sensor.FilmStorage, s Settings) ([]byte, error) {
	img, err := ToImage(storage, s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
