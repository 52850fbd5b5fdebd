// @lixen: #focus{sys[term,color]}
package terminal

import (
	"fmt"
	"image/color"
	"os"
	"strings"
)

// ColorMode selects how a cell color is encoded in the output stream
type ColorMode uint8

const (
	ColorModeANSI16    ColorMode = iota // nearest entry of a fixed 16-color palette
	ColorMode256                        // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
)

// String returns the config/flag spelling of the mode
func (m ColorMode) String() string {
	switch m {
	case ColorModeANSI16:
		return "ansi"
	case ColorMode256:
		return "256"
	case ColorModeTrueColor:
		return "truecolor"
	default:
		return fmt.Sprintf("ColorMode(%d)", uint8(m))
	}
}

// ParseColorMode resolves a flag or config value. "auto" consults the environment.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "ansi", "16", "ansi16":
		return ColorModeANSI16, nil
	case "256", "8bit":
		return ColorMode256, nil
	case "true", "truecolor", "24", "24bit":
		return ColorModeTrueColor, nil
	case "auto":
		return DetectColorMode(), nil
	default:
		return ColorModeANSI16, fmt.Errorf("unknown color mode %q (use ansi, 256, truecolor or auto)", s)
	}
}

// RGB represents a 24-bit color
type RGB struct {
	R, G, B uint8
}

// RGBBlack is the zero value black color
var RGBBlack = RGB{0, 0, 0}

// Equal returns true if colors match
func (c RGB) Equal(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// DistanceSq returns the squared Euclidean distance between two colors in RGB space
func DistanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// FromColor converts any color.Color to RGB, undoing alpha premultiplication
// Fully transparent pixels become black
func FromColor(c color.Color) RGB {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGBBlack
	}
	return RGB{
		R: uint8((r * 0xff) / a),
		G: uint8((g * 0xff) / a),
		B: uint8((b * 0xff) / a),
	}
}

// DetectColorMode determines terminal color capability from environment
// Terminals without a true color hint fall back to the 256-color palette
func DetectColorMode() ColorMode {
	colorterm := os.Getenv("COLORTERM")
	if colorterm == "truecolor" || colorterm == "24bit" {
		return ColorModeTrueColor
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" ||
		os.Getenv("KONSOLE_VERSION") != "" ||
		os.Getenv("ITERM_SESSION_ID") != "" ||
		os.Getenv("ALACRITTY_WINDOW_ID") != "" ||
		os.Getenv("WEZTERM_PANE") != "" {
		return ColorModeTrueColor
	}

	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "truecolor") ||
		strings.Contains(term, "24bit") ||
		strings.Contains(term, "direct") {
		return ColorModeTrueColor
	}

	return ColorMode256
}
