//go:build !windows
// +build !windows

package tempfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile holds the OS advisory lock on a partial's companion ".lock"
// file. On Unix this is a whole-file flock lock, not a byte-range lock.
type lockFile struct {
	f    *os.File
	path string
}

// acquireLock opens (creating if needed) path and takes a non-blocking
// exclusive flock. Returns an error if another process already holds it.
func acquireLock(path string) (*lockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, err
	}
	return &lockFile{f: f, path: path}, nil
}

func (l *lockFile) unlockAndRemove() error {
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	err := l.f.Close()
	_ = os.Remove(l.path)
	return err
}
