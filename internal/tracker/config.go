package tracker

import (
	"fmt"
	"os"
	"strings"
)

// Config gives a tracker access to its settings. Keys are looked up under the
// tracker's prefix in the config store, then in the environment.
type Config struct {
	// Prefix is the config key prefix for this tracker (e.g., "github").
	Prefix string

	// Store provides access to the layered configuration.
	Store ConfigStore
}

// ConfigStore is the read side of the configuration system.
type ConfigStore interface {
	GetString(key string) string
}

// NewConfig creates a tracker config with the given prefix and store.
func NewConfig(prefix string, store ConfigStore) *Config {
	return &Config{Prefix: prefix, Store: store}
}

// Get returns a config value by key, checking the config store first and
// falling back to the environment. The key should not include the prefix.
// Example: cfg.Get("token") for prefix "github" looks up "github.token" and
// falls back to GITHUB_TOKEN.
func (c *Config) Get(key string) string {
	if c.Store != nil {
		if value := c.Store.GetString(c.Prefix + "." + key); value != "" {
			return value
		}
	}
	return os.Getenv(c.envVarName(key))
}

// GetRequired is like Get but returns an error with a hint when the value is empty.
func (c *Config) GetRequired(key string) (string, error) {
	if value := c.Get(key); value != "" {
		return value, nil
	}
	fullKey := c.Prefix + "." + key
	return "", fmt.Errorf("%s not configured\nSet %s in gsdsync.yaml\nOr: export %s=VALUE",
		fullKey, fullKey, c.envVarName(key))
}

// envVarName converts a config key to its environment variable name.
// Example: for prefix "github" and key "api-url", returns "GITHUB_API_URL".
func (c *Config) envVarName(key string) string {
	envKey := strings.ToUpper(c.Prefix + "_" + key)
	return strings.NewReplacer(".", "_", "-", "_").Replace(envKey)
}

// CommonConfig names the keys every tracker understands.
var CommonConfig = struct {
	Token  string
	Owner  string
	Repo   string
	APIURL string
}{
	Token:  "token",
	Owner:  "owner",
	Repo:   "repo",
	APIURL: "api-url",
}
