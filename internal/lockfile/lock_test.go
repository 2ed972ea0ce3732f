package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gsdsync.lock")

	lock, err := Acquire(path, "sync")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	info, err := ReadLockInfo(path)
	if err != nil {
		t.Fatalf("ReadLockInfo failed: %v", err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", info.PID, os.Getpid())
	}
	if info.Command != "sync" {
		t.Errorf("Command = %q, want sync", info.Command)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	again, err := Acquire(path, "sync")
	if err != nil {
		t.Fatalf("re-Acquire after release failed: %v", err)
	}
	_ = again.Release()
}

func TestAcquireBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gsdsync.lock")

	held, err := Acquire(path, "sync")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer func() { _ = held.Release() }()

	_, err = Acquire(path, "sync")
	if !errors.Is(err, ErrLockBusy) {
		t.Fatalf("second Acquire error = %v, want ErrLockBusy", err)
	}
}

func TestReadLockInfo(t *testing.T) {
	dir := t.TempDir()

	t.Run("plain PID", func(t *testing.T) {
		path := filepath.Join(dir, "pid.lock")
		if err := os.WriteFile(path, []byte("98765\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		info, err := ReadLockInfo(path)
		if err != nil {
			t.Fatalf("ReadLockInfo failed: %v", err)
		}
		if info.PID != 98765 {
			t.Errorf("PID = %d, want 98765", info.PID)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		path := filepath.Join(dir, "bad.lock")
		if err := os.WriteFile(path, []byte("not a lock"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadLockInfo(path); err == nil {
			t.Error("expected error for invalid format")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := ReadLockInfo(filepath.Join(dir, "missing.lock")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil Release = %v", err)
	}
}
