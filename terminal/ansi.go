// @lixen: #focus{sys[term,ansi]}
package terminal

import (
	"io"
	"os"
	"strconv"
)

// Pre-built ANSI sequences
const (
	// ResetToken restores default rendering state; written once per row
	ResetToken = "\x1b[0m"

	// HomeToken moves the cursor to the top-left corner
	HomeToken = "\x1b[H"

	// ClearToken clears the screen and homes the cursor
	ClearToken = "\x1b[2J\x1b[H"

	csiCursorShow = "\x1b[?25h"
	csiAutoWrapOn = "\x1b[?7h"
)

// fg256Tokens caches the 256 foreground sequences, indexed by palette index
var fg256Tokens [256]string

func init() {
	for i := range fg256Tokens {
		fg256Tokens[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
	}
}

// SGR wraps select-graphic-rendition parameters into an escape sequence, e.g. SGR("31")
func SGR(params string) string {
	return "\x1b[" + params + "m"
}

// Fg256Token returns the foreground sequence for an xterm-256 index
func Fg256Token(index uint8) string {
	return fg256Tokens[index]
}

// FgRGBToken returns the 24-bit foreground sequence for c
func FgRGBToken(c RGB) string {
	b := make([]byte, 0, 20)
	b = append(b, "\x1b[38;2;"...)
	b = strconv.AppendUint(b, uint64(c.R), 10)
	b = append(b, ';')
	b = strconv.AppendUint(b, uint64(c.G), 10)
	b = append(b, ';')
	b = strconv.AppendUint(b, uint64(c.B), 10)
	b = append(b, 'm')
	return string(b)
}

// Color256 tokenizes colors through the xterm-256 palette
type Color256 struct{}

// Token implements render.Colorizer
func (Color256) Token(c RGB) string {
	return fg256Tokens[RGBTo256(c)]
}

// TrueColor tokenizes colors as 24-bit SGR sequences
type TrueColor struct{}

// Token implements render.Colorizer
func (TrueColor) Token(c RGB) string {
	return FgRGBToken(c)
}

// EmergencyReset restores default attributes, cursor visibility and line wrapping
// Safe to call from a recover handler; write errors are ignored
func EmergencyReset(w io.Writer) {
	io.WriteString(w, ResetToken)
	io.WriteString(w, csiCursorShow)
	io.WriteString(w, csiAutoWrapOn)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}
}
