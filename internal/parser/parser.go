// Package parser reads and writes vault note files: YAML frontmatter carrying
// the note id and title, followed by the note content verbatim.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Frontmatter is the YAML header of a note file.
type Frontmatter struct {
	ID    int64  `yaml:"id,omitempty"`
	Title string `yaml:"title"`
}

// Result holds the output of parsing a note file.
type Result struct {
	ID      int64
	Title   string
	Content string
}

// Parse extracts the frontmatter and content from raw note bytes. Files
// without frontmatter are treated as pure content with a title taken from
// the first H1 heading; invalid YAML falls back to the same treatment.
func Parse(data []byte) (*Result, error) {
	header, body, ok := splitFrontmatter(string(data))
	if !ok {
		return &Result{Title: deriveTitle(body), Content: body}, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		s := string(data)
		return &Result{Title: deriveTitle(s), Content: s}, nil
	}
	if fm.ID < 0 {
		return nil, fmt.Errorf("parser: negative note id %d", fm.ID)
	}
	title := fm.Title
	if title == "" {
		title = deriveTitle(body)
	}
	return &Result{ID: fm.ID, Title: title, Content: body}, nil
}

// Format renders a note as a vault file.
func Format(id int64, title, content string) ([]byte, error) {
	header, err := yaml.Marshal(Frontmatter{ID: id, Title: title})
	if err != nil {
		return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString(delim + "\n")
	b.Write(header)
	b.WriteString(delim + "\n")
	b.WriteString(content)
	return []byte(b.String()), nil
}

// splitFrontmatter separates a leading --- delimited header from the body.
// Exactly one line break after the closing delimiter belongs to the header.
func splitFrontmatter(s string) (header, body string, ok bool) {
	first, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimRight(first, "\r") != delim {
		return "", s, false
	}
	pos := 0
	for pos <= len(rest) {
		line, after, more := strings.Cut(rest[pos:], "\n")
		if strings.TrimRight(line, "\r") == delim {
			header = rest[:pos]
			if more {
				return header, after, true
			}
			return header, "", true
		}
		if !more {
			break
		}
		pos += len(line) + 1
	}
	// No closing delimiter: everything is body.
	return "", s, false
}

// deriveTitle returns the first H1 heading, or empty string.
func deriveTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
