package glyph

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
)

// Method selects the resampling filter
type Method uint8

const (
	Nearest Method = iota
	Bilinear
)

// String returns the config spelling of the method
func (m Method) String() string {
	switch m {
	case Bilinear:
		return "bilinear"
	default:
		return "nearest"
	}
}

// ParseMethod resolves a flag or config value
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "", "nearest", "nn":
		return Nearest, nil
	case "bilinear", "linear":
		return Bilinear, nil
	default:
		return Nearest, fmt.Errorf("unknown resample method %q (use nearest or bilinear)", s)
	}
}

func (m Method) interpolation() resize.InterpolationFunction {
	if m == Bilinear {
		return resize.Bilinear
	}
	return resize.NearestNeighbor
}

// Resample scales img to exactly w x h. Images already at the target size are returned as-is.
func Resample(img image.Image, w, h int, m Method) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, m.interpolation())
}

// grayscale applies BT.601 weights: 0.299R + 0.587G + 0.114B
var grayscale = gift.New(gift.Grayscale())

// Luminance converts img to a single-channel grid anchored at (0,0)
func Luminance(img image.Image) *image.Gray {
	dst := image.NewGray(grayscale.Bounds(img.Bounds()))
	grayscale.Draw(dst, img)
	return dst
}
