package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notes/internal"
	"github.com/starford/notes/internal/mcpserver"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/notestore"
	"github.com/starford/notes/internal/shell"
	pkgconfig "github.com/starford/notes/pkg/config"
)

const version = "1.0.0"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// The flag wins over the file.
	if u := cmd.String("url"); u != "" {
		cfg.Client.BaseURL = u
		if err := cfg.Client.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --url: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func openStore(cmd *cli.Command) (*notestore.Store, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewClientLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)
	store, err := internal.NewNoteStore(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, logger, nil
}

func runShell(ctx context.Context, cmd *cli.Command) error {
	store, logger, err := openStore(cmd)
	if err != nil {
		return err
	}
	return shell.New(store, os.Stdin, os.Stdout, shell.WithLogger(logger)).Run(ctx)
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	store, logger, err := openStore(cmd)
	if err != nil {
		return err
	}
	srv := mcpserver.New(store, version)
	if err := srv.Load(ctx); err != nil {
		logger.Warn("initial load failed, retrying on first tool call", slog.String("error", err.Error()))
	}
	return srv.ServeStdio()
}

// oneShot runs op on a freshly loaded store and prints the resulting view.
func oneShot(op func(ctx context.Context, cmd *cli.Command, s *notestore.Store) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		store, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		if err := store.LoadAll(ctx); err != nil {
			return err
		}
		if op != nil {
			if err := op(ctx, cmd, store); err != nil {
				return err
			}
		}
		shell.NewRenderer(os.Stdout).View(store.Snapshot())
		return nil
	}
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() < n {
		return fmt.Errorf("usage: %s %s", cmd.FullName(), cmd.ArgsUsage)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "notes",
		Usage:   "Note-management client with a reference notes API server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Notes API base URL, overrides client.base_url",
				Sources: cli.EnvVars("NOTES_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the notes API server",
				Action: serve,
			},
			{
				Name:   "shell",
				Usage:  "Interactive notes shell",
				Action: runShell,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the notes tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:    "list",
				Aliases: []string{"ls", "reset"},
				Usage:   "Show every note",
				Action:  oneShot(nil),
			},
			{
				Name:      "add",
				Usage:     "Create a note",
				ArgsUsage: "<title> <content>",
				Action: oneShot(func(ctx context.Context, cmd *cli.Command, s *notestore.Store) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					args := cmd.Args().Slice()
					return s.Create(ctx, args[0], strings.Join(args[1:], " "))
				}),
			},
			{
				Name:      "rm",
				Usage:     "Delete one note",
				ArgsUsage: "<id>",
				Action: oneShot(func(ctx context.Context, cmd *cli.Command, s *notestore.Store) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					return s.DeleteOne(ctx, models.ID(cmd.Args().First()))
				}),
			},
			{
				Name:  "clear",
				Usage: "Delete every note",
				Action: oneShot(func(ctx context.Context, _ *cli.Command, s *notestore.Store) error {
					return s.DeleteAll(ctx)
				}),
			},
			{
				Name:      "edit",
				Usage:     "Update the title, the content or both",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "content", Aliases: []string{"m"}, Usage: "New content"},
				},
				Action: oneShot(func(ctx context.Context, cmd *cli.Command, s *notestore.Store) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					edit := notestore.Edit{ID: models.ID(cmd.Args().First())}
					if cmd.IsSet("title") {
						title := cmd.String("title")
						edit.Title = &title
					}
					if cmd.IsSet("content") {
						content := cmd.String("content")
						edit.Content = &content
					}
					return s.Apply(ctx, edit)
				}),
			},
			{
				Name:      "search",
				Usage:     "Search notes by id, title or content",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "id, title or content",
						Value:   string(notestore.ModeID),
					},
				},
				Action: oneShot(func(ctx context.Context, cmd *cli.Command, s *notestore.Store) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					mode, err := notestore.ParseMode(cmd.String("mode"))
					if err != nil {
						return err
					}
					if err := s.SetMode(mode); err != nil {
						return err
					}
					return s.Search(ctx, strings.Join(cmd.Args().Slice(), " "), mode)
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
