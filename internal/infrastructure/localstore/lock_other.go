//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package localstore

import "os"

// Platforms without advisory locks only get the in-process mutex.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
