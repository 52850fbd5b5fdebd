// @lixen: #focus{pipeline[color,quantize]}
// Package palette quantizes RGB colors to the nearest entry of a fixed terminal palette.
package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/asciiterm/terminal"
)

// Entry pairs a reference color with the token that selects it on a terminal
type Entry struct {
	Name  string
	RGB   terminal.RGB
	Token string
}

// Fallback is returned by Nearest on an empty palette
var Fallback = Entry{Name: "black", RGB: terminal.RGBBlack, Token: terminal.SGR("30")}

// Palette is an immutable ordered set of entries.
// Nearest scans entries in order; the first of several equidistant entries wins.
type Palette struct {
	entries []Entry
}

// New copies entries into a palette, preserving their order
func New(entries []Entry) *Palette {
	e := make([]Entry, len(entries))
	copy(e, entries)
	return &Palette{entries: e}
}

// Standard is the 16-color ANSI set without bright black, in SGR order:
// the eight normal colors 30-37 followed by the bright colors 91-97
var Standard = New([]Entry{
	fromTcell("black", tcell.ColorBlack, "30"),
	fromTcell("red", tcell.ColorMaroon, "31"),
	fromTcell("green", tcell.ColorGreen, "32"),
	fromTcell("yellow", tcell.ColorOlive, "33"),
	fromTcell("blue", tcell.ColorNavy, "34"),
	fromTcell("magenta", tcell.ColorPurple, "35"),
	fromTcell("cyan", tcell.ColorTeal, "36"),
	fromTcell("white", tcell.ColorSilver, "37"),
	fromTcell("bright-red", tcell.ColorRed, "91"),
	fromTcell("bright-green", tcell.ColorLime, "92"),
	fromTcell("bright-yellow", tcell.ColorYellow, "93"),
	fromTcell("bright-blue", tcell.ColorBlue, "94"),
	fromTcell("bright-magenta", tcell.ColorFuchsia, "95"),
	fromTcell("bright-cyan", tcell.ColorAqua, "96"),
	fromTcell("bright-white", tcell.ColorWhite, "97"),
})

func fromTcell(name string, c tcell.Color, sgr string) Entry {
	r, g, b := c.RGB()
	return Entry{
		Name:  name,
		RGB:   terminal.RGB{R: uint8(r), G: uint8(g), B: uint8(b)},
		Token: terminal.SGR(sgr),
	}
}

// ParseEntry builds an entry from a hex color ("#800000") and SGR parameters ("31" or "38;5;88")
func ParseEntry(name, hex, sgr string) (Entry, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Entry{}, fmt.Errorf("palette entry %q: %w", name, err)
	}
	if err := validateSGR(sgr); err != nil {
		return Entry{}, fmt.Errorf("palette entry %q: %w", name, err)
	}

	r, g, b := c.RGB255()
	return Entry{
		Name:  name,
		RGB:   terminal.RGB{R: r, G: g, B: b},
		Token: terminal.SGR(sgr),
	}, nil
}

// validateSGR accepts semicolon-separated decimal parameters
func validateSGR(sgr string) error {
	if sgr == "" {
		return fmt.Errorf("empty SGR parameters")
	}
	for _, p := range strings.Split(sgr, ";") {
		if _, err := strconv.ParseUint(p, 10, 8); err != nil {
			return fmt.Errorf("invalid SGR parameter %q", p)
		}
	}
	return nil
}

// Len returns the number of entries
func (p *Palette) Len() int {
	return len(p.entries)
}

// Entries returns a copy of the entries in enumeration order
func (p *Palette) Entries() []Entry {
	e := make([]Entry, len(p.entries))
	copy(e, p.entries)
	return e
}

// Nearest returns the entry minimizing squared Euclidean RGB distance to c
func (p *Palette) Nearest(c terminal.RGB) Entry {
	if len(p.entries) == 0 {
		return Fallback
	}

	best := 0
	bestDist := terminal.DistanceSq(c, p.entries[0].RGB)
	for i := 1; i < len(p.entries); i++ {
		if d := terminal.DistanceSq(c, p.entries[i].RGB); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return p.entries[best]
}

// Token implements render.Colorizer
func (p *Palette) Token(c terminal.RGB) string {
	return p.Nearest(c).Token
}
