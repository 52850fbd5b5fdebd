// @lixen: #focus{config[defaults,toml,validate]}
// Package config holds the converter settings: compiled-in defaults, an optional TOML
// file layered over them, and validation into the typed values the pipeline consumes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/asciiterm/glyph"
	"github.com/lixenwraith/asciiterm/palette"
	"github.com/lixenwraith/asciiterm/render"
	"github.com/lixenwraith/asciiterm/stream"
	"github.com/lixenwraith/asciiterm/terminal"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

const (
	DefaultWidth  = 50
	DefaultHeight = 50

	// MaxDimension bounds grid width and height
	MaxDimension = 1000
	// MaxChunkSize bounds a single read
	MaxChunkSize = 16 << 20
)

// PaletteEntry is one [[palette]] table
type PaletteEntry struct {
	Name  string `toml:"name"`
	Color string `toml:"color"` // #rrggbb
	SGR   string `toml:"sgr"`   // foreground parameter, e.g. "31" or "38;5;208"
}

// Config mirrors the TOML file layout
type Config struct {
	Width       int            `toml:"width"`
	Height      int            `toml:"height"`
	ChunkSize   int            `toml:"chunk_size"`
	MaxPixels   int            `toml:"max_pixels"`
	Alphabet    string         `toml:"alphabet"`
	Mode        string         `toml:"mode"`
	Color       string         `toml:"color"`
	Resample    string         `toml:"resample"`
	FlushTail   bool           `toml:"flush_tail"`
	InPlace     bool           `toml:"in_place"`
	MetricsAddr string         `toml:"metrics_addr"`
	Palette     []PaletteEntry `toml:"palette,omitempty"`
}

// Default returns the compiled-in configuration
func Default() Config {
	return Config{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		ChunkSize: stream.DefaultChunkSize,
		MaxPixels: stream.DefaultMaxPixels,
		Alphabet:  glyph.DefaultRamp,
		Mode:      render.ModeBlock.String(),
		Color:     terminal.ColorModeANSI16.String(),
		Resample:  glyph.Nearest.String(),
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep their default;
// unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return cfg, fmt.Errorf("%w: %s:%d:%d: %v", ErrInvalid, path, row, col, derr)
		}
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders the configuration as TOML
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks bounds and that every named value resolves
func (c Config) Validate() error {
	_, err := c.Resolve()
	return err
}

// Settings are the typed values derived from a Config
type Settings struct {
	Width     int
	Height    int
	ChunkSize int
	MaxPixels int
	Alphabet  glyph.Alphabet
	Mode      render.Mode
	ColorMode terminal.ColorMode
	Method    glyph.Method
	Palette   *palette.Palette
}

// Resolve validates c and parses its named values
func (c Config) Resolve() (Settings, error) {
	var s Settings

	if c.Width < 1 || c.Width > MaxDimension {
		return s, fmt.Errorf("%w: width %d outside [1,%d]", ErrInvalid, c.Width, MaxDimension)
	}
	if c.Height < 1 || c.Height > MaxDimension {
		return s, fmt.Errorf("%w: height %d outside [1,%d]", ErrInvalid, c.Height, MaxDimension)
	}
	if c.ChunkSize < 1 || c.ChunkSize > MaxChunkSize {
		return s, fmt.Errorf("%w: chunk_size %d outside [1,%d]", ErrInvalid, c.ChunkSize, MaxChunkSize)
	}
	if c.MaxPixels < 1 {
		return s, fmt.Errorf("%w: max_pixels %d must be positive", ErrInvalid, c.MaxPixels)
	}
	s.Width, s.Height, s.ChunkSize, s.MaxPixels = c.Width, c.Height, c.ChunkSize, c.MaxPixels

	var err error
	if s.Alphabet, err = glyph.NewAlphabet(c.Alphabet); err != nil {
		return s, fmt.Errorf("%w: alphabet: %w", ErrInvalid, err)
	}
	if s.Mode, err = render.ParseMode(c.Mode); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if s.ColorMode, err = terminal.ParseColorMode(c.Color); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if s.Method, err = glyph.ParseMethod(c.Resample); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if len(c.Palette) == 0 {
		s.Palette = palette.Standard
		return s, nil
	}

	entries := make([]palette.Entry, 0, len(c.Palette))
	for i, pe := range c.Palette {
		e, err := palette.ParseEntry(pe.Name, pe.Color, pe.SGR)
		if err != nil {
			return s, fmt.Errorf("%w: palette[%d]: %w", ErrInvalid, i, err)
		}
		entries = append(entries, e)
	}
	s.Palette = palette.New(entries)
	return s, nil
}

// Colorizer returns the token source for the resolved color mode
func (s Settings) Colorizer() render.Colorizer {
	switch s.ColorMode {
	case terminal.ColorMode256:
		return terminal.Color256{}
	case terminal.ColorModeTrueColor:
		return terminal.TrueColor{}
	default:
		return s.Palette
	}
}
