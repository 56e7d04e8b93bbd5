package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/notestore"
)

// Command is one parsed shell line, ready to run against a store.
type Command interface {
	Run(ctx context.Context, s *notestore.Store) error
}

type listCmd struct{}

func (listCmd) Run(ctx context.Context, s *notestore.Store) error { return s.LoadAll(ctx) }

type resetCmd struct{}

func (resetCmd) Run(ctx context.Context, s *notestore.Store) error { return s.Reset(ctx) }

type addCmd struct{ title, content string }

func (c addCmd) Run(ctx context.Context, s *notestore.Store) error {
	return s.Create(ctx, c.title, c.content)
}

type removeCmd struct{ id models.ID }

func (c removeCmd) Run(ctx context.Context, s *notestore.Store) error { return s.DeleteOne(ctx, c.id) }

type clearCmd struct{}

func (clearCmd) Run(ctx context.Context, s *notestore.Store) error { return s.DeleteAll(ctx) }

type editCmd struct{ edit notestore.Edit }

func (c editCmd) Run(ctx context.Context, s *notestore.Store) error { return s.Apply(ctx, c.edit) }

type searchCmd struct{ query string }

func (c searchCmd) Run(ctx context.Context, s *notestore.Store) error {
	return s.SearchCurrent(ctx, c.query)
}

// modeCmd switches the search mode. An empty mode only reports the current one.
type modeCmd struct{ mode notestore.Mode }

func (c modeCmd) Run(_ context.Context, s *notestore.Store) error {
	if c.mode == "" {
		return nil
	}
	return s.SetMode(c.mode)
}

type helpCmd struct{}

func (helpCmd) Run(context.Context, *notestore.Store) error { return nil }

type quitCmd struct{}

func (quitCmd) Run(context.Context, *notestore.Store) error { return nil }

const usage = `commands:
  list                         show every note
  add <title> | <content>      create a note
  rm <id>                      delete one note
  clear                        delete every note
  edit <id> <title> | <content>
                               replace title and content
  title <id> <title>           replace the title
  content <id> <content>       replace the content
  search <query>               search with the current mode
  mode [id|title|content]      show or set the search mode
  reset                        leave search results
  help                         show this help
  quit                         leave the shell`

// Parse turns one input line into a command. A blank line yields a nil
// command and no error.
func Parse(line string) (Command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "list", "ls":
		return listCmd{}, nil
	case "reset":
		return resetCmd{}, nil
	case "add", "new":
		title, content, ok := splitPair(rest)
		if !ok {
			return nil, usageError("add <title> | <content>")
		}
		return addCmd{title: title, content: content}, nil
	case "rm", "delete":
		if rest == "" {
			return nil, usageError("rm <id>")
		}
		return removeCmd{id: models.ID(rest)}, nil
	case "clear":
		return clearCmd{}, nil
	case "edit":
		id, pair, _ := strings.Cut(rest, " ")
		title, content, ok := splitPair(pair)
		if id == "" || !ok {
			return nil, usageError("edit <id> <title> | <content>")
		}
		return editCmd{notestore.Edit{ID: models.ID(id), Title: &title, Content: &content}}, nil
	case "title":
		id, title, _ := strings.Cut(rest, " ")
		title = strings.TrimSpace(title)
		if id == "" || title == "" {
			return nil, usageError("title <id> <title>")
		}
		return editCmd{notestore.Edit{ID: models.ID(id), Title: &title}}, nil
	case "content":
		id, content, _ := strings.Cut(rest, " ")
		content = strings.TrimSpace(content)
		if id == "" || content == "" {
			return nil, usageError("content <id> <content>")
		}
		return editCmd{notestore.Edit{ID: models.ID(id), Content: &content}}, nil
	case "search", "find":
		return searchCmd{query: rest}, nil
	case "mode":
		if rest == "" {
			return modeCmd{}, nil
		}
		m, err := notestore.ParseMode(strings.ToLower(rest))
		if err != nil {
			return nil, err
		}
		return modeCmd{mode: m}, nil
	case "help", "?":
		return helpCmd{}, nil
	case "quit", "exit", "q":
		return quitCmd{}, nil
	}
	return nil, fmt.Errorf("%w: unknown command %q, try help", apperr.ErrInvalidInput, name)
}

// splitPair splits "title | content". Both sides are trimmed.
func splitPair(s string) (string, string, bool) {
	a, b, ok := strings.Cut(s, "|")
	return strings.TrimSpace(a), strings.TrimSpace(b), ok
}

func usageError(form string) error {
	return fmt.Errorf("%w: usage: %s", apperr.ErrInvalidInput, form)
}
