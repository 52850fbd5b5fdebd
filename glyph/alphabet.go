// @lixen: #focus{pipeline[glyph]}
// Package glyph maps pixel luminance onto an ordered ramp of shading characters.
package glyph

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultRamp runs from sparse marks through dense ASCII to the four block shades.
// Index 0 is the lightest glyph, the last index the solid block.
const DefaultRamp = "`^\",:;Il!i~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8░▒▓█"

// BlockFull is the solid block used by block-art rendering
const BlockFull = '█'

// ErrShortAlphabet is returned for ramps with fewer than two glyphs
var ErrShortAlphabet = errors.New("alphabet needs at least two glyphs")

// Alphabet is an immutable light-to-dark glyph ramp
type Alphabet struct {
	runes []rune
}

// Default is the built-in alphabet over DefaultRamp
var Default = MustAlphabet(DefaultRamp)

// NewAlphabet validates ramp and builds an alphabet from it.
// Glyphs must be distinct and the ramp must be valid UTF-8.
func NewAlphabet(ramp string) (Alphabet, error) {
	if !utf8.ValidString(ramp) {
		return Alphabet{}, fmt.Errorf("alphabet is not valid UTF-8")
	}
	runes := []rune(ramp)
	if len(runes) < 2 {
		return Alphabet{}, ErrShortAlphabet
	}

	seen := make(map[rune]int, len(runes))
	for i, r := range runes {
		if j, dup := seen[r]; dup {
			return Alphabet{}, fmt.Errorf("alphabet repeats %q at positions %d and %d", r, j, i)
		}
		seen[r] = i
	}

	return Alphabet{runes: runes}, nil
}

// MustAlphabet is NewAlphabet for compile-time ramps; panics on an invalid ramp
func MustAlphabet(ramp string) Alphabet {
	a, err := NewAlphabet(ramp)
	if err != nil {
		panic(err)
	}
	return a
}

// Len returns the number of glyphs
func (a Alphabet) Len() int {
	return len(a.runes)
}

// Index maps luminance v to floor(v/255 * (N-1)), clamped to [0, N-1]
func (a Alphabet) Index(v uint8) int {
	n := len(a.runes)
	if n == 0 {
		return 0
	}
	i := int(v) * (n - 1) / 255
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Glyph returns the glyph for luminance v
func (a Alphabet) Glyph(v uint8) rune {
	if len(a.runes) == 0 {
		return ' '
	}
	return a.runes[a.Index(v)]
}

// At returns the glyph at index i
func (a Alphabet) At(i int) rune {
	return a.runes[i]
}

// String returns the ramp
func (a Alphabet) String() string {
	return string(a.runes)
}
