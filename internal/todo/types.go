// Package todo loads GSD todo notes from a planning directory.
//
// A todo is a markdown file under <todos>/pending/ with YAML front matter:
//
//	---
//	title: Fix flaky login test
//	area: auth
//	created: 2024-01-15
//	files:
//	  - internal/auth/login.go
//	---
//
//	## Problem
//
//	...
//
//	## Solution
//
//	TBD
package todo

// DefaultArea is used when a todo does not declare an area.
const DefaultArea = "general"

// PlaceholderSolution marks a solution section that has not been written yet.
const PlaceholderSolution = "TBD"

// Todo is one pending todo note. Filename is its identity.
type Todo struct {
	Filename string   `json:"filename"`
	Title    string   `json:"title"`
	Area     string   `json:"area"`
	Created  string   `json:"created,omitempty"`
	Problem  string   `json:"problem,omitempty"`
	Solution string   `json:"solution,omitempty"`
	Files    []string `json:"files,omitempty"`
}

// HasSolution reports whether the solution section carries real content.
func (t *Todo) HasSolution() bool {
	return t.Solution != "" && t.Solution != PlaceholderSolution
}

// Skip records a todo file that could not be loaded.
type Skip struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// LoadResult is the outcome of loading a todos directory.
type LoadResult struct {
	Todos   []*Todo `json:"todos"`
	Skipped []Skip  `json:"skipped,omitempty"`
}
