package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/pontos/internal"
	pkgconfig "github.com/starford/pontos/pkg/config"
)

type runFunc func(ctx context.Context, opts ...internal.Option) error

// action loads the configuration and hands it to run. A missing config
// file is not an error: the defaults cover the usual site layout.
func action(run runFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		configPath := cmd.String("config")

		cfg := internal.NewDefaultConfig()
		if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithOutput(os.Stdout),
		}

		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "pontos",
		Usage: "Content pipeline for the ponto lyrics site: generate, index and lint the docs tree",
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
				Name:   "generate",
				Usage:  "Fetch the spreadsheet and write one document per row",
				Action: action(internal.RunGenerate),
			},
			{
				Name:  "search",
				Usage: "Build the client-side search index from the docs tree",
				Description: "Walks the docs tree and writes the search index file. If the tree\n" +
					"cannot be walked or the index cannot be written, the error is logged,\n" +
					"any previous index is kept and the command exits with status 1, so a\n" +
					"site build running it fails instead of publishing stale search data.",
				Action: action(internal.RunSearch),
			},
			{
				Name:   "lint",
				Usage:  "Normalize words, frontmatter and file names; audit annotations",
				Action: action(internal.RunLint),
			},
			{
				Name:   "serve",
				Usage:  "Run the local preview API with live re-indexing",
				Action: action(internal.RunServe),
			},
			{
				Name:   "mcp",
				Usage:  "Expose the catalog to LLM clients over MCP stdio",
				Action: action(internal.RunMCP),
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
