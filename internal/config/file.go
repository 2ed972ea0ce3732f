package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// KnownKeys are the settings gsdsync reads. `gsdsync config set` refuses
// anything else so typos don't silently do nothing.
var KnownKeys = map[string]bool{
	"github.token":   true,
	"github.owner":   true,
	"github.repo":    true,
	"github.api-url": true,
	"board.name":     true,
	"board.owner":    true,
	"board.auto":     true,
	"board.create":   true,
	"todos.sync":     true,
	"watch.debounce": true,
	"json":           true,
}

// IsKnownKey reports whether key is a gsdsync setting.
func IsKnownKey(key string) bool {
	return KnownKeys[key]
}

// SortedKeys returns KnownKeys in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WritablePath returns the config file `config set` should edit: the loaded
// file if there is one, else .planning/gsdsync.yaml when a .planning
// directory exists, else gsdsync.yaml in the working directory.
func WritablePath() (string, error) {
	if used := ConfigFileUsed(); used != "" {
		return used, nil
	}
	found, err := FindConfigFile()
	if err != nil {
		return "", err
	}
	if found != "" {
		return found, nil
	}
	if info, err := os.Stat(".planning"); err == nil && info.IsDir() {
		return filepath.Join(".planning", ConfigFileName), nil
	}
	return ConfigFileName, nil
}

// SetFileValue sets a dotted key (e.g. "github.owner") in the YAML file at
// path, creating intermediate mappings and the file itself as needed.
// Comments and unrelated keys are preserved.
func SetFileValue(path, key, value string) error {
	data, err := os.ReadFile(path) // #nosec G304 - config file path from caller
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var root yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if root.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level is not a mapping", path)
	}

	mapping := root.Content[0]
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := lookup(mapping, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode}
			mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("%s: %s is not a mapping", path, part)
		}
		mapping = child
	}

	leaf := parts[len(parts)-1]
	scalar := scalarNode(value)
	if existing := lookup(mapping, leaf); existing != nil {
		scalar.HeadComment = existing.HeadComment
		scalar.LineComment = existing.LineComment
		*existing = *scalar
	} else {
		mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: leaf}, scalar)
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to close encoder: %w", err)
	}

	// New files get 0600 from atomic.WriteFile; they may hold a token.
	if err := atomic.WriteFile(path, strings.NewReader(buf.String())); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// scalarNode formats value the way a person would write it by hand:
// booleans, numbers and durations bare, strings quoted only when needed.
func scalarNode(value string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	lower := strings.ToLower(value)
	switch {
	case lower == "true" || lower == "false":
		node.Value = lower
		node.Tag = "!!bool"
	case isNumeric(value):
		node.Tag = "!!int"
		if strings.Contains(value, ".") {
			node.Tag = "!!float"
		}
	default:
		node.Tag = "!!str"
		if needsQuoting(value) {
			node.Style = yaml.DoubleQuotedStyle
		}
	}
	return node
}

func isNumeric(s string) bool {
	if s == "" || s == "-" || s == "." {
		return false
	}
	dots := 0
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			dots++
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return dots <= 1
}

func needsQuoting(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	return strings.ContainsAny(s, ":#[]{},&*!|>'\"%@`")
}
