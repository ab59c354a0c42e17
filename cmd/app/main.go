package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/rowanhart/curator/internal"
	"github.com/rowanhart/curator/internal/index"
	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/maintain"
	"github.com/rowanhart/curator/internal/mcpserver"
	"github.com/rowanhart/curator/internal/vault"
	pkgconfig "github.com/rowanhart/curator/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMaintain(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	v, err := vault.Open(cfg.Vault.Path, logger)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	var model llm.Model
	if cmd.Bool("reclassify") {
		g, err := llm.NewGemini(ctx, cfg.Model.APIKey, cfg.Model.Name)
		if err != nil {
			return fmt.Errorf("init model: %w", err)
		}
		model = g
	}

	_, err = maintain.NewRunner(v, model, logger).Run(ctx, maintain.Options{
		Reclassify:  cmd.Bool("reclassify"),
		FixHeaders:  cmd.Bool("fix-frontmatter"),
		Rename:      cmd.Bool("rename"),
		UpdateLinks: cmd.Bool("update-links"),
		DryRun:      cmd.Bool("dry-run"),
	})
	return err
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// MCP talks JSON-RPC over stdout; keep logs on stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	v, err := vault.Open(cfg.Vault.Path, logger)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, v.Store(), logger); err != nil {
		logger.Warn("index sync failed", slog.Any("error", err))
	}
	return mcpserver.New(v, db).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "curator",
		Usage:  "Chat bot that files captured thoughts into a Markdown vault and answers questions about them",
		Action: run,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "maintain",
				Usage:  "Run vault maintenance: rename legacy files, fix headers, update links, reclassify",
				Action: runMaintain,
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "rename", Usage: "Rename hyphenated slug files to Title Case"},
					&cli.BoolFlag{Name: "fix-frontmatter", Usage: "Sync categories and backfill missing header fields"},
					&cli.BoolFlag{Name: "update-links", Usage: "Rewrite wiki-links after renames"},
					&cli.BoolFlag{Name: "reclassify", Usage: "Re-evaluate note metadata with the model"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Log proposed changes without writing"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve read-only vault tools over MCP stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
