// Package git wraps the few git plumbing commands gsdsync needs.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoRemote is returned when the repository has no remote of the asked name.
var ErrNoRemote = errors.New("no such remote")

// run executes git in dir and returns trimmed stdout. Stderr is folded into
// the error.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return strings.TrimSpace(string(out)), nil
}

// RepoRoot returns the top-level directory of the work tree containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	root, err := run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return root, nil
}

// RemoteURL returns the fetch URL of remote ("origin" when empty) for the
// repository containing dir.
func RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	if remote == "" {
		remote = "origin"
	}
	if _, err := RepoRoot(ctx, dir); err != nil {
		return "", err
	}
	url, err := run(ctx, dir, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrNoRemote, remote, err)
	}
	return url, nil
}
