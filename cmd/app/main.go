package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/shelf/internal"
	"github.com/starford/shelf/internal/mcpserver"
	"github.com/starford/shelf/internal/snapshot"
	pkgconfig "github.com/starford/shelf/pkg/config"
)

var version = "dev"

// loadConfig reads the --config file over the defaults. The default path may be
// missing; an explicitly given one must exist.
func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg, !cmd.IsSet("config")); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}
	return cfg, configPath, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Shared with Run; the config watcher changes it at runtime.
	level := new(slog.LevelVar)
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLevel(level),
	}
	if configPath != "" {
		opts = append(opts, internal.WithConfigWatch(configPath))
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr.
	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	slog.SetDefault(internal.NewLogger(os.Stderr, level))

	svc, db, err := internal.OpenService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("MCP server starting", slog.String("store_driver", cfg.Store.Driver))
	return mcpserver.New(svc, version).ServeStdio()
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("export: output file is required")
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := internal.OpenService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := snapshot.Export(ctx, svc, path)
	if err != nil {
		return err
	}
	slog.Info("catalog exported", slog.String("file", path), slog.Int("books", n))
	return nil
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("import: input file is required")
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, db, err := internal.OpenService(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := snapshot.Import(ctx, svc, path)
	slog.Info("catalog imported", slog.String("file", path), slog.Int("books", n))
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "shelf",
		Usage:   "Library catalog with a REST API, a browser page and an MCP server",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the catalog as MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:      "export",
				Usage:     "Write the whole catalog to a JSON file",
				ArgsUsage: "<file>",
				Action:    runExport,
			},
			{
				Name:      "import",
				Usage:     "Create books from a JSON or YAML file",
				ArgsUsage: "<file>",
				Action:    runImport,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
