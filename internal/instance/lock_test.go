package instance

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLockAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")

	if running, err := Running(dir); err != nil || running {
		t.Fatalf("Running() before lock = %v, %v", running, err)
	}

	fl, err := Lock(dir)
	if err != nil {
		t.Fatalf("Lock() failed: %v", err)
	}

	if _, err := Lock(dir); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Lock() = %v, want ErrAlreadyRunning", err)
	}
	if running, err := Running(dir); err != nil || !running {
		t.Fatalf("Running() while locked = %v, %v", running, err)
	}

	if err := WriteWebAddr(dir, "127.0.0.1:7420"); err != nil {
		t.Fatalf("WriteWebAddr() failed: %v", err)
	}
	addr, err := WebAddr(dir)
	if err != nil || addr != "127.0.0.1:7420" {
		t.Fatalf("WebAddr() = %q, %v", addr, err)
	}

	Cleanup(dir, fl)

	if _, err := os.Stat(filepath.Join(dir, webFileName)); !os.IsNotExist(err) {
		t.Fatal("address file should have been removed after Cleanup")
	}
	if _, err := WebAddr(dir); err == nil {
		t.Fatal("WebAddr() after Cleanup should fail")
	}

	fl2, err := Lock(dir)
	if err != nil {
		t.Fatalf("Lock() after Cleanup should succeed: %v", err)
	}
	Cleanup(dir, fl2)
}
