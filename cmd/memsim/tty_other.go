//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import "os"

// fileIsTerminal falls back to the character-device bit.
func fileIsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
