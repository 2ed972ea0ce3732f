package roadmap

import "strings"

// Edit replaces one whole line of a roadmap with another.
type Edit struct {
	PlanID string
	Old    string
	New    string
}

// CompletionEdit returns the edit that checks off plan's checkbox. The new line is
// the raw source line with only the checkbox marker changed to "x".
func CompletionEdit(plan *Plan) Edit {
	newLine := plan.LineText
	if loc := planPattern.FindStringSubmatchIndex(plan.LineText); loc != nil {
		start, end := loc[2], loc[3]
		newLine = plan.LineText[:start] + "x" + plan.LineText[end:]
	}
	return Edit{PlanID: plan.ID, Old: plan.LineText, New: newLine}
}

// ApplyEdits applies edits in order to a snapshot of content and returns the new
// text. Each edit replaces the first line equal to Old. Edits whose Old line no
// longer appears are returned in skipped; content itself is never modified.
func ApplyEdits(content string, edits []Edit) (result string, applied, skipped []Edit) {
	result = content
	for _, e := range edits {
		i := indexLine(result, e.Old)
		if i < 0 || e.Old == e.New {
			skipped = append(skipped, e)
			continue
		}
		result = result[:i] + e.New + result[i+len(e.Old):]
		applied = append(applied, e)
	}
	return result, applied, skipped
}

// indexLine finds the first occurrence of line that spans a whole line of content,
// i.e. starts at the beginning of content or after '\n' and ends at the end of
// content, at '\n' or at "\r\n".
func indexLine(content, line string) int {
	if line == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(content[offset:], line)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(line)
		startOK := start == 0 || content[start-1] == '\n'
		endOK := end == len(content) || content[end] == '\n' ||
			(content[end] == '\r' && (end+1 == len(content) || content[end+1] == '\n'))
		if startOK && endOK {
			return start
		}
		offset = start + 1
	}
}
