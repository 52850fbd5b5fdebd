package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/asciiterm/glyph"
	"github.com/lixenwraith/asciiterm/palette"
	"github.com/lixenwraith/asciiterm/render"
	"github.com/lixenwraith/asciiterm/terminal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asciiterm.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault_Resolves(t *testing.T) {
	s, err := Default().Resolve()
	if err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}

	if s.Width != 50 || s.Height != 50 || s.ChunkSize != 4096 {
		t.Errorf("Unexpected dimensions %dx%d chunk %d", s.Width, s.Height, s.ChunkSize)
	}
	if s.MaxPixels != 89478485 {
		t.Errorf("Expected default pixel limit 89478485, got %d", s.MaxPixels)
	}
	if s.Alphabet.String() != glyph.DefaultRamp {
		t.Errorf("Expected default ramp, got %q", s.Alphabet.String())
	}
	if s.Mode != render.ModeBlock {
		t.Errorf("Expected block mode, got %v", s.Mode)
	}
	if s.ColorMode != terminal.ColorModeANSI16 {
		t.Errorf("Expected ansi color mode, got %v", s.ColorMode)
	}
	if s.Method != glyph.Nearest {
		t.Errorf("Expected nearest resampling, got %v", s.Method)
	}
	if s.Palette != palette.Standard {
		t.Error("Expected the standard palette")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
width = 80
mode = "glyph"
flush_tail = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	want.Width = 80
	want.Mode = "glyph"
	want.FlushTail = true

	if cfg.Width != want.Width || cfg.Height != want.Height || cfg.Mode != want.Mode ||
		cfg.FlushTail != want.FlushTail || cfg.Alphabet != want.Alphabet || cfg.ChunkSize != want.ChunkSize {
		t.Errorf("Got %+v, want %+v", cfg, want)
	}
}

func TestLoad_CustomPalette(t *testing.T) {
	path := writeConfig(t, `
color = "ansi"

[[palette]]
name = "ink"
color = "#000000"
sgr = "30"

[[palette]]
name = "orange"
color = "#ff8700"
sgr = "38;5;208"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if s.Palette.Len() != 2 {
		t.Fatalf("Expected 2 palette entries, got %d", s.Palette.Len())
	}
	e := s.Palette.Nearest(terminal.RGB{R: 250, G: 140, B: 10})
	if e.Name != "orange" || e.Token != "\x1b[38;5;208m" {
		t.Errorf("Expected orange entry, got %+v", e)
	}
	if got := s.Colorizer().Token(terminal.RGB{R: 5, G: 5, B: 5}); got != "\x1b[30m" {
		t.Errorf("Expected ink token, got %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "frame_rate = 30\n"},
		{"syntax", "width = = 3\n"},
		{"zero width", "width = 0\n"},
		{"huge height", "height = 5000\n"},
		{"zero chunk", "chunk_size = 0\n"},
		{"zero max pixels", "max_pixels = 0\n"},
		{"bad mode", "mode = \"sixel\"\n"},
		{"bad color", "color = \"cmyk\"\n"},
		{"bad resample", "resample = \"lanczos\"\n"},
		{"short alphabet", "alphabet = \"#\"\n"},
		{"bad palette hex", "[[palette]]\nname = \"x\"\ncolor = \"red\"\nsgr = \"31\"\n"},
		{"bad palette sgr", "[[palette]]\nname = \"x\"\ncolor = \"#ff0000\"\nsgr = \"3a\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
	if errors.Is(err, ErrInvalid) {
		t.Error("Missing file should not be reported as invalid content")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Color = "truecolor"
	cfg.Palette = []PaletteEntry{{Name: "ink", Color: "#000000", SGR: "30"}}

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Contains(data, []byte("[[palette]]")) {
		t.Errorf("Expected array of tables in output:\n%s", data)
	}

	var back Config
	if err := toml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Alphabet != glyph.DefaultRamp {
		t.Errorf("Alphabet did not survive quoting: %q", back.Alphabet)
	}
	if back.Color != "truecolor" || len(back.Palette) != 1 || back.Palette[0] != cfg.Palette[0] {
		t.Errorf("Round trip mismatch: %+v", back)
	}
}

func TestMarshal_DefaultOmitsPalette(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "palette") {
		t.Errorf("Default config should not list a palette:\n%s", data)
	}
}

func TestSettings_Colorizer(t *testing.T) {
	red := terminal.RGB{R: 255}
	tests := []struct {
		color string
		want  string
	}{
		{"ansi", "\x1b[91m"},
		{"256", "\x1b[38;5;196m"},
		{"truecolor", "\x1b[38;2;255;0;0m"},
	}

	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			cfg := Default()
			cfg.Color = tt.color
			s, err := cfg.Resolve()
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got := s.Colorizer().Token(red); got != tt.want {
				t.Errorf("Token = %q, want %q", got, tt.want)
			}
		})
	}
}
