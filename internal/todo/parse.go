package todo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the file does not start with a "---" fence.
	ErrMissingFrontMatter = errors.New("missing front matter")
	// ErrUnterminatedFrontMatter indicates the closing "---" fence was not found.
	ErrUnterminatedFrontMatter = errors.New("unterminated front matter")
	// ErrMissingTitle indicates the front matter has no title.
	ErrMissingTitle = errors.New("front matter has no title")
)

// PendingDir is the subdirectory of a todos directory holding open todos.
const PendingDir = "pending"

// frontMatter holds the raw scalar fields of a todo header.
type frontMatter struct {
	title   string
	area    string
	created string
	files   []string
}

// Parse builds a Todo from a single file's content. The returned error explains
// why the file cannot be used as a todo.
func Parse(filename, content string) (*Todo, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	header, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}

	fm := decodeFrontMatter(header)
	if fm.title == "" {
		return nil, ErrMissingTitle
	}

	t := &Todo{
		Filename: filename,
		Title:    fm.title,
		Area:     fm.area,
		Created:  fm.created,
		Files:    fm.files,
		Problem:  section(body, "Problem"),
		Solution: section(body, "Solution"),
	}
	if t.Area == "" {
		t.Area = DefaultArea
	}
	return t, nil
}

func splitFrontMatter(content string) (header, body string, err error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", ErrMissingFrontMatter
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", ErrUnterminatedFrontMatter
}

// decodeFrontMatter reads the header as YAML when it is valid, and falls back to
// a line scanner for the loose "key: value" headers people write by hand.
func decodeFrontMatter(header string) frontMatter {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(header), &root); err == nil &&
		root.Kind == yaml.DocumentNode && len(root.Content) > 0 &&
		root.Content[0].Kind == yaml.MappingNode {
		return walkMapping(root.Content[0])
	}
	return scanFrontMatter(header)
}

func walkMapping(mapping *yaml.Node) frontMatter {
	var fm frontMatter
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		switch key.Value {
		case "title":
			fm.title = scalar(val)
		case "area":
			fm.area = scalar(val)
		case "created":
			fm.created = scalar(val)
		case "files":
			if val.Kind == yaml.SequenceNode {
				for _, item := range val.Content {
					if s := scalar(item); s != "" {
						fm.files = append(fm.files, s)
					}
				}
			}
		}
	}
	return fm
}

// scalar returns a scalar node's text as written, so dates and numbers are
// not reinterpreted.
func scalar(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		return ""
	}
	return strings.TrimSpace(n.Value)
}

func scanFrontMatter(header string) frontMatter {
	var fm frontMatter
	inFiles := false
	for _, line := range strings.Split(header, "\n") {
		if inFiles {
			trimmed := strings.TrimSpace(line)
			if line != trimmed && strings.HasPrefix(trimmed, "-") {
				if item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-")); item != "" {
					fm.files = append(fm.files, item)
				}
				continue
			}
			inFiles = false
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.HasPrefix(key, " ") || strings.HasPrefix(key, "\t") {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "title":
			if fm.title == "" {
				fm.title = value
			}
		case "area":
			if fm.area == "" {
				fm.area = value
			}
		case "created":
			if fm.created == "" {
				fm.created = value
			}
		case "files":
			inFiles = value == ""
		}
	}
	return fm
}

// section returns the trimmed text under "## <name>" up to the next "## "
// heading or the end of the document.
func section(body, name string) string {
	lines := strings.Split(body, "\n")
	heading := "## " + name
	for i, line := range lines {
		if strings.TrimRight(line, " \t") != heading {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if strings.HasPrefix(lines[j], "## ") {
				end = j
				break
			}
		}
		return strings.TrimSpace(strings.Join(lines[i+1:end], "\n"))
	}
	return ""
}

// LoadDir loads every todo in <todosDir>/pending in lexical filename order.
// Files that cannot be parsed are reported in Skipped. A missing pending
// directory is not an error.
func LoadDir(todosDir string) (*LoadResult, error) {
	result := &LoadResult{}
	pending := filepath.Join(todosDir, PendingDir)

	entries, err := os.ReadDir(pending)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read todos directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(pending, name)) //nolint:gosec // G304: inside the planning dir
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Filename: name, Reason: err.Error()})
			continue
		}
		t, err := Parse(name, string(data))
		if err != nil {
			result.Skipped = append(result.Skipped, Skip{Filename: name, Reason: err.Error()})
			continue
		}
		result.Todos = append(result.Todos, t)
	}

	return result, nil
}
