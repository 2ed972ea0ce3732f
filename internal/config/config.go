// Package config loads gsdsync settings with viper.
//
// Values come, in increasing priority, from defaults, a gsdsync.yaml file,
// GSDSYNC_* environment variables and command-line flags applied with Set.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileName is the name of the project config file.
const ConfigFileName = "gsdsync.yaml"

// EnvPrefix is prepended to environment variable names: github.owner is
// read from GSDSYNC_GITHUB_OWNER.
const EnvPrefix = "GSDSYNC"

var v *viper.Viper

// Initialize sets up the viper singleton. It is safe to call more than once;
// each call starts from scratch.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("github.api-url", "")
	v.SetDefault("board.name", "")
	v.SetDefault("board.owner", "")
	v.SetDefault("board.auto", false)
	v.SetDefault("board.create", false)
	v.SetDefault("todos.sync", false)
	v.SetDefault("watch.debounce", DefaultWatchDebounce.String())
	v.SetDefault("json", false)

	path, err := FindConfigFile()
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// FindConfigFile walks up from the working directory looking for
// gsdsync.yaml or .planning/gsdsync.yaml, then falls back to the user config
// directory. Returns "" when there is no config file.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		for _, candidate := range []string{
			filepath.Join(dir, ConfigFileName),
			filepath.Join(dir, ".planning", ConfigFileName),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(userDir, "gsdsync", ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// ResetForTesting drops the singleton so the next Initialize starts clean.
func ResetForTesting() {
	v = nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set overrides a value for the rest of the process. Used for flags.
func Set(key string, value interface{}) {
	if v == nil {
		v = viper.New()
	}
	v.Set(key, value)
}

// Store adapts the singleton to tracker.ConfigStore.
type Store struct{}

func (Store) GetString(key string) string { return GetString(key) }
