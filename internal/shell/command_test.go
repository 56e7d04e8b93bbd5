package shell

import (
	"errors"
	"testing"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/notestore"
)

func TestParse(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		line string
		want Command
	}{
		{"", nil},
		{"   ", nil},
		{"list", listCmd{}},
		{"LS", listCmd{}},
		{"reset", resetCmd{}},
		{"add Groceries | milk, eggs", addCmd{title: "Groceries", content: "milk, eggs"}},
		{"add | milk", addCmd{title: "", content: "milk"}},
		{"rm 3", removeCmd{id: "3"}},
		{"clear", clearCmd{}},
		{"search buy milk", searchCmd{query: "buy milk"}},
		{"search", searchCmd{query: ""}},
		{"mode", modeCmd{}},
		{"mode Title", modeCmd{mode: notestore.ModeTitle}},
		{"help", helpCmd{}},
		{"quit", quitCmd{}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}

	edits := []struct {
		line string
		want notestore.Edit
	}{
		{"edit 2 New | Body", notestore.Edit{ID: "2", Title: str("New"), Content: str("Body")}},
		{"title 2 Only the title", notestore.Edit{ID: "2", Title: str("Only the title")}},
		{"content 2 text", notestore.Edit{ID: "2", Content: str("text")}},
	}
	for _, tt := range edits {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			cmd, ok := got.(editCmd)
			if !ok {
				t.Fatalf("Parse(%q) = %T", tt.line, got)
			}
			if cmd.edit.ID != tt.want.ID || !sameText(cmd.edit.Title, tt.want.Title) || !sameText(cmd.edit.Content, tt.want.Content) {
				t.Errorf("edit = %+v, want %+v", cmd.edit, tt.want)
			}
		})
	}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{
		"add no separator",
		"rm",
		"edit 1 missing separator",
		"edit",
		"title 1",
		"content",
		"mode tags",
		"frobnicate",
	} {
		if _, err := Parse(line); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidInput", line, err)
		}
	}
}
