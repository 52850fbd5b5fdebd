// @lixen: #focus{sys[term]}
// Package terminal provides the ANSI primitives used to print text-art frames.
//
// Features:
//   - 24-bit RGB color type with conversion from image/color values
//   - SGR foreground tokens for the xterm-256 palette and true color
//   - Nearest xterm-256 index search over the 6x6x6 cube and grayscale ramp
//   - TTY detection for in-place frame redraw
//   - Best-effort reset of the terminal after a crash
//
// The package emits direct ANSI sequences and bypasses terminfo/termcap.
package terminal
