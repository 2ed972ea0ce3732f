package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultWatchDebounce is how long watch mode waits after the last write to
// the roadmap before syncing.
const DefaultWatchDebounce = 500 * time.Millisecond

// GetWatchDebounce returns watch.debounce, or DefaultWatchDebounce if it is
// unset or invalid. Logs a warning to stderr for invalid values.
func GetWatchDebounce() time.Duration {
	value := strings.TrimSpace(GetString("watch.debounce"))
	if value == "" {
		return DefaultWatchDebounce
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		fmt.Fprintf(os.Stderr, "Warning: invalid watch.debounce %q in config (want a positive duration like 500ms), using default '%s'\n", value, DefaultWatchDebounce)
		return DefaultWatchDebounce
	}
	return d
}

// BoardSettings selects the project board issues are linked to.
type BoardSettings struct {
	Name   string // explicit board title
	Owner  string // board owner; empty means the repository owner
	Auto   bool   // derive the title from the repository name
	Create bool   // create the board when it does not exist
}

// AutoBoardName is the board title used with board.auto.
func AutoBoardName(repo string) string {
	return repo + " Development"
}

// GetBoardSettings reads the board.* keys.
func GetBoardSettings() BoardSettings {
	return BoardSettings{
		Name:   strings.TrimSpace(GetString("board.name")),
		Owner:  strings.TrimSpace(GetString("board.owner")),
		Auto:   GetBool("board.auto"),
		Create: GetBool("board.create"),
	}
}

// BoardName resolves the board title for repo: an explicit name wins over
// board.auto. Returns "" when no board is wanted.
func (b BoardSettings) BoardName(repo string) string {
	if b.Name != "" {
		return b.Name
	}
	if b.Auto && repo != "" {
		return AutoBoardName(repo)
	}
	return ""
}
