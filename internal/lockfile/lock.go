// Package lockfile serializes sync runs on a planning directory with an
// advisory file lock.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockBusy is returned when another process holds the lock.
var ErrLockBusy = errors.New("lock already held by another process")

// LockInfo is written into the lock file by the holder.
type LockInfo struct {
	PID       int       `json:"pid"`
	Command   string    `json:"command,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is an acquired exclusive lock.
type Lock struct {
	path  string
	flock *flock.Flock
}

// Acquire takes the exclusive lock at path without blocking. When the lock is
// held elsewhere the returned error wraps ErrLockBusy and names the holder if
// it is known.
func Acquire(path, command string) (*Lock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}
	if !locked {
		if info, readErr := ReadLockInfo(path); readErr == nil && info.PID > 0 {
			return nil, fmt.Errorf("%w (pid %d, since %s)", ErrLockBusy, info.PID,
				info.StartedAt.Format(time.RFC3339))
		}
		return nil, ErrLockBusy
	}

	info := LockInfo{PID: os.Getpid(), Command: command, StartedAt: time.Now().UTC()}
	if data, err := json.Marshal(info); err == nil {
		// Written in place: replacing the file would detach it from the lock.
		_ = os.WriteFile(path, data, 0o600)
	}

	return &Lock{path: path, flock: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}

// ReadLockInfo reads holder information from a lock file. Plain PID files
// are accepted too.
func ReadLockInfo(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: lock path is derived from the planning dir
	if err != nil {
		return nil, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err == nil {
		return &info, nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid lock file format: %w", err)
	}
	return &LockInfo{PID: pid}, nil
}
