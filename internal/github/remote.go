package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/steveyegge/gsdsync/internal/git"
)

// gitRemoteRunner returns the origin URL of the repository at dir.
var gitRemoteRunner = func(ctx context.Context, dir string) ([]byte, error) {
	remote, err := git.RemoteURL(ctx, dir, "origin")
	return []byte(remote), err
}

// RepoFromGit detects owner and repo from the origin remote of dir.
func RepoFromGit(ctx context.Context, dir string) (owner, repo string, err error) {
	output, err := gitRemoteRunner(ctx, dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read git remote: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(output)))
}

// ParseRemoteURL extracts owner and repo from a git remote URL. It accepts
// https://host/owner/repo(.git), ssh://git@host/owner/repo(.git) and the scp
// form git@host:owner/repo(.git).
func ParseRemoteURL(remote string) (owner, repo string, err error) {
	var path string
	switch {
	case strings.Contains(remote, "://"):
		u, perr := url.Parse(remote)
		if perr != nil {
			return "", "", fmt.Errorf("invalid remote URL %q: %w", remote, perr)
		}
		path = u.Path
	case strings.Contains(remote, ":"):
		path = remote[strings.Index(remote, ":")+1:]
	default:
		return "", "", fmt.Errorf("unrecognized remote URL %q", remote)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("remote URL %q does not name owner/repo", remote)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
