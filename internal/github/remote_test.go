package github

import (
	"context"
	"errors"
	"testing"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		remote    string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/acme/widgets.git", "acme", "widgets", false},
		{"https://github.com/acme/widgets", "acme", "widgets", false},
		{"https://token@github.com/acme/widgets/", "acme", "widgets", false},
		{"git@github.com:acme/widgets.git", "acme", "widgets", false},
		{"ssh://git@github.com/acme/widgets.git", "acme", "widgets", false},
		{"https://ghe.example.com/team/widgets.git", "team", "widgets", false},
		{"https://github.com/acme", "", "", true},
		{"widgets", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRemoteURL(tt.remote)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRemoteURL(%q) error = %v, wantErr %v", tt.remote, err, tt.wantErr)
			continue
		}
		if owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("ParseRemoteURL(%q) = %q/%q, want %q/%q", tt.remote, owner, repo, tt.wantOwner, tt.wantRepo)
		}
	}
}

func TestRepoFromGit(t *testing.T) {
	orig := gitRemoteRunner
	t.Cleanup(func() { gitRemoteRunner = orig })

	gitRemoteRunner = func(ctx context.Context, dir string) ([]byte, error) {
		if dir != "/work" {
			t.Errorf("dir = %q, want /work", dir)
		}
		return []byte("git@github.com:acme/widgets.git\n"), nil
	}
	owner, repo, err := RepoFromGit(context.Background(), "/work")
	if err != nil || owner != "acme" || repo != "widgets" {
		t.Errorf("RepoFromGit() = %q, %q, %v", owner, repo, err)
	}

	gitRemoteRunner = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("no such remote")
	}
	if _, _, err := RepoFromGit(context.Background(), ""); err == nil {
		t.Error("RepoFromGit() error = nil, want failure without origin")
	}
}
