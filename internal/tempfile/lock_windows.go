//go:build windows
// +build windows

package tempfile

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockFile holds the OS advisory lock on a partial's companion ".lock"
// file, taken on its first byte via LockFileEx.
type lockFile struct {
	f    *os.File
	path string
}

func acquireLock(path string) (*lockFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	handle := windows.Handle(f.Fd())
	overlapped := new(windows.Overlapped)
	const lockfileExclusiveLock = 0x00000002
	const lockfileFailImmediately = 0x00000001

	err = windows.LockFileEx(handle, lockfileExclusiveLock|lockfileFailImmediately, 0, 1, 0, overlapped)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &lockFile{f: f, path: path}, nil
}

func (l *lockFile) unlockAndRemove() error {
	handle := windows.Handle(l.f.Fd())
	overlapped := new(windows.Overlapped)
	_ = windows.UnlockFileEx(handle, 0, 1, 0, overlapped)
	err := l.f.Close()
	_ = os.Remove(l.path)
	return err
}
