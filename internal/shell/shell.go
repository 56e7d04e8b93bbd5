// Package shell is the interactive front end of the notes view: it reads
// commands line by line, runs them against a notestore.Store and redraws the
// collection after every change.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/notes/internal/notestore"
)

const prompt = "notes> "

// Shell reads commands from in and renders results to out.
type Shell struct {
	store    *notestore.Store
	in       io.Reader
	out      io.Writer
	render   *Renderer
	logger   *slog.Logger
	noPrompt bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger used for command traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithoutPrompt suppresses the prompt, for scripted input.
func WithoutPrompt() Option {
	return func(s *Shell) { s.noPrompt = true }
}

// New creates a shell over store. Every store change is rendered to out.
func New(store *notestore.Store, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		store:  store,
		in:     in,
		out:    out,
		render: NewRenderer(out),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	store.OnChange(s.render.View)
	return s
}

// Run loads every note, then executes commands until quit, end of input or
// ctx cancellation. Command failures are printed and do not stop the loop.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.store.LoadAll(ctx); err != nil {
		s.render.Error(err)
	}

	scanner := bufio.NewScanner(s.in)
	for {
		if !s.noPrompt {
			fmt.Fprint(s.out, prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := Parse(scanner.Text())
		if err != nil {
			s.render.Error(err)
			continue
		}
		switch cmd.(type) {
		case nil:
			continue
		case quitCmd:
			return nil
		case helpCmd:
			s.render.Text(usage)
			continue
		}

		if err := cmd.Run(ctx, s.store); err != nil {
			s.logger.Debug("shell command failed",
				slog.String("command", fmt.Sprintf("%T", cmd)),
				slog.String("error", err.Error()),
			)
			s.render.Error(err)
			continue
		}
		if _, ok := cmd.(modeCmd); ok {
			s.render.Mode(s.store.Mode())
		}
	}
}
