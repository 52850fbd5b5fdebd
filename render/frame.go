// @lixen: #focus{pipeline[render,output]}
// Package render composes glyph and color grids into terminal text frames.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/lixenwraith/asciiterm/glyph"
	"github.com/lixenwraith/asciiterm/terminal"
)

// ErrGridMismatch is returned when the color and glyph grids disagree in size
var ErrGridMismatch = errors.New("color grid does not match glyph grid")

// Mode selects which glyph is drawn in each cell
type Mode uint8

const (
	ModeBlock Mode = iota // solid block in every cell, color carries the picture
	ModeGlyph             // luminance glyph from the mapper in every cell
)

// String returns the config spelling of the mode
func (m Mode) String() string {
	if m == ModeGlyph {
		return "glyph"
	}
	return "block"
}

// ParseMode resolves a flag or config value
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "block", "blocks":
		return ModeBlock, nil
	case "glyph", "ascii":
		return ModeGlyph, nil
	default:
		return ModeBlock, fmt.Errorf("unknown render mode %q (use block or glyph)", s)
	}
}

// Colorizer maps a cell color to the escape sequence that selects it
type Colorizer interface {
	Token(c terminal.RGB) string
}

// Renderer turns grids into rows and writes whole frames
type Renderer struct {
	colorizer Colorizer
	mode      Mode
	inPlace   bool

	// Reused across frames; one Write per frame
	out []byte
}

// NewRenderer creates a renderer. In-place output is off by default.
func NewRenderer(c Colorizer, mode Mode) *Renderer {
	return &Renderer{
		colorizer: c,
		mode:      mode,
	}
}

// SetInPlace makes every frame start with a cursor-home sequence so frames overdraw each other
func (r *Renderer) SetInPlace(on bool) {
	r.inPlace = on
}

// Mode returns the configured render mode
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Colors samples img into a row-major color grid. img must already be at grid size.
func Colors(img image.Image) []terminal.RGB {
	b := img.Bounds()
	colors := make([]terminal.RGB, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			colors = append(colors, terminal.FromColor(img.At(x, y)))
		}
	}
	return colors
}

// Rows composes one string per grid row: (token, glyph) per cell, then a single reset
func (r *Renderer) Rows(colors []terminal.RGB, glyphs glyph.Grid) ([]string, error) {
	w, h := glyphs.Width, glyphs.Height
	if len(colors) != w*h || len(glyphs.Cells) != w*h {
		return nil, fmt.Errorf("%w: %d colors, %d glyphs, %dx%d", ErrGridMismatch, len(colors), len(glyphs.Cells), w, h)
	}

	rows := make([]string, h)
	var sb strings.Builder
	for y := 0; y < h; y++ {
		sb.Reset()
		sb.Grow(w*8 + len(terminal.ResetToken))
		for x := 0; x < w; x++ {
			i := y*w + x
			sb.WriteString(r.colorizer.Token(colors[i]))
			if r.mode == ModeGlyph {
				sb.WriteRune(glyphs.Cells[i])
			} else {
				sb.WriteRune(glyph.BlockFull)
			}
		}
		sb.WriteString(terminal.ResetToken)
		rows[y] = sb.String()
	}
	return rows, nil
}

// WriteFrame joins rows with line breaks, terminates the frame with one, and issues a single Write
func (r *Renderer) WriteFrame(w io.Writer, rows []string) error {
	r.out = r.out[:0]
	if r.inPlace {
		r.out = append(r.out, terminal.HomeToken...)
	}
	for i, row := range rows {
		if i > 0 {
			r.out = append(r.out, '\n')
		}
		r.out = append(r.out, row...)
	}
	r.out = append(r.out, '\n')

	if _, err := w.Write(r.out); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Render composes and writes one frame
func (r *Renderer) Render(w io.Writer, colors []terminal.RGB, glyphs glyph.Grid) error {
	rows, err := r.Rows(colors, glyphs)
	if err != nil {
		return err
	}
	return r.WriteFrame(w, rows)
}
