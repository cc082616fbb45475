package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "panedesk.lock"
	webFileName  = "panedesk.web"
)

// ErrAlreadyRunning is returned by Lock when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another panedesk daemon is already running")

// Lock acquires an exclusive file lock for single-daemon enforcement.
// The caller must defer Cleanup.
func Lock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return fl, nil
}

// Running reports whether a daemon currently holds the lock in dir.
func Running(dir string) (bool, error) {
	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return false, nil
	}
	return true, nil
}

// WriteWebAddr records the web front-end's listen address so clients can
// find it.
func WriteWebAddr(dir, addr string) error {
	return os.WriteFile(filepath.Join(dir, webFileName), []byte(addr), 0600)
}

// WebAddr returns the address recorded by WriteWebAddr.
func WebAddr(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, webFileName))
	if err != nil {
		return "", fmt.Errorf("web front-end address not found: %w", err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("web front-end address file is empty")
	}
	return addr, nil
}

// Cleanup removes the address file and releases the lock.
func Cleanup(dir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dir, webFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}
