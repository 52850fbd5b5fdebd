//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package terminal

import "os"

// IsTerminal always reports false on platforms without termios
func IsTerminal(f *os.File) bool {
	return false
}
