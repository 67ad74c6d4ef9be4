//go:build !linux && !darwin

package vfs

import (
	"os"
	"time"
)

// creationTime is unsupported on this platform.
func creationTime(info os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
