package internal

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/notes/internal/client"
	"github.com/starford/notes/internal/notestore"
)

// NewClientLogger returns the logger for the client front ends. It writes
// text to w (normally stderr) so stdout stays free for rendered notes and
// the MCP transport.
func NewClientLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewNoteStore builds an empty store bound to the configured notes API.
func NewNoteStore(cfg *Config, logger *slog.Logger) (*notestore.Store, error) {
	c, err := client.New(cfg.Client.BaseURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	opts := []notestore.Option{notestore.WithLogger(logger)}
	if cfg.Client.StaleGuard {
		opts = append(opts, notestore.WithStaleGuard())
	}
	return notestore.New(c, opts...), nil
}
