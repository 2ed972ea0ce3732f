package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// inDir runs the test from dir.
func inDir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefaults(t *testing.T) {
	inDir(t, t.TempDir())
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if ConfigFileUsed() != "" {
		t.Errorf("ConfigFileUsed() = %q, want none", ConfigFileUsed())
	}
	if GetBool("board.auto") || GetBool("board.create") || GetBool("todos.sync") {
		t.Error("board/todos flags should default to false")
	}
	if GetString("github.owner") != "" {
		t.Errorf("github.owner = %q, want empty", GetString("github.owner"))
	}
	if got := GetWatchDebounce(); got != DefaultWatchDebounce {
		t.Errorf("GetWatchDebounce() = %v, want %v", got, DefaultWatchDebounce)
	}
}

func TestEnvironmentBinding(t *testing.T) {
	inDir(t, t.TempDir())
	tests := []struct {
		envVar string
		key    string
		value  string
	}{
		{"GSDSYNC_GITHUB_OWNER", "github.owner", "acme"},
		{"GSDSYNC_GITHUB_API_URL", "github.api-url", "https://ghe.example.com/api/v3"},
		{"GSDSYNC_BOARD_NAME", "board.name", "Roadmap"},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			if err := Initialize(); err != nil {
				t.Fatalf("Initialize() returned error: %v", err)
			}
			if got := GetString(tt.key); got != tt.value {
				t.Errorf("GetString(%q) with %s set = %q, want %q", tt.key, tt.envVar, got, tt.value)
			}
		})
	}

	t.Setenv("GSDSYNC_TODOS_SYNC", "true")
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}
	if !GetBool("todos.sync") {
		t.Error("GSDSYNC_TODOS_SYNC=true not picked up")
	}
}

func TestConfigFileDiscovery(t *testing.T) {
	root := t.TempDir()
	planning := filepath.Join(root, ".planning")
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(planning, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}
	content := "github:\n  owner: acme\n  repo: widgets\nboard:\n  auto: true\nwatch:\n  debounce: 2s\n"
	if err := os.WriteFile(filepath.Join(planning, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	inDir(t, nested)
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if filepath.Base(ConfigFileUsed()) != ConfigFileName {
		t.Errorf("ConfigFileUsed() = %q", ConfigFileUsed())
	}
	if GetString("github.owner") != "acme" || GetString("github.repo") != "widgets" {
		t.Errorf("owner/repo = %q/%q", GetString("github.owner"), GetString("github.repo"))
	}
	if got := GetWatchDebounce(); got != 2*time.Second {
		t.Errorf("GetWatchDebounce() = %v, want 2s", got)
	}
	if got := GetBoardSettings().BoardName("widgets"); got != "widgets Development" {
		t.Errorf("BoardName() = %q", got)
	}

	// Environment beats the file, Set beats both.
	t.Setenv("GSDSYNC_GITHUB_OWNER", "env-owner")
	if GetString("github.owner") != "env-owner" {
		t.Errorf("env override: github.owner = %q", GetString("github.owner"))
	}
	Set("github.owner", "flag-owner")
	if GetString("github.owner") != "flag-owner" {
		t.Errorf("Set override: github.owner = %q", GetString("github.owner"))
	}
}

func TestMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("github: [unclosed\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	inDir(t, dir)
	if err := Initialize(); err == nil {
		t.Error("Initialize() error = nil, want parse failure")
	}
}

func TestGetWatchDebounceInvalid(t *testing.T) {
	inDir(t, t.TempDir())
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"soon", "-1s", "0"} {
		Set("watch.debounce", bad)
		if got := GetWatchDebounce(); got != DefaultWatchDebounce {
			t.Errorf("GetWatchDebounce() with %q = %v, want default", bad, got)
		}
	}
}

func TestBoardName(t *testing.T) {
	tests := []struct {
		name     string
		settings BoardSettings
		repo     string
		want     string
	}{
		{"none", BoardSettings{}, "widgets", ""},
		{"explicit", BoardSettings{Name: "Roadmap"}, "widgets", "Roadmap"},
		{"explicit beats auto", BoardSettings{Name: "Roadmap", Auto: true}, "widgets", "Roadmap"},
		{"auto", BoardSettings{Auto: true}, "widgets", "widgets Development"},
		{"auto without repo", BoardSettings{Auto: true}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.BoardName(tt.repo); got != tt.want {
				t.Errorf("BoardName(%q) = %q, want %q", tt.repo, got, tt.want)
			}
		})
	}
}

func TestGettersBeforeInitialize(t *testing.T) {
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	if GetString("github.owner") != "" || GetBool("board.auto") || GetDuration("watch.debounce") != 0 {
		t.Error("getters should return zero values before Initialize")
	}
	if (Store{}).GetString("github.repo") != "" {
		t.Error("Store.GetString should be empty before Initialize")
	}
}
