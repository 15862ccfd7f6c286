// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/metasearch"
	"github.com/poiesic/metasearch/provider"
	"github.com/poiesic/metasearch/provider/jsonfile"
	"github.com/poiesic/metasearch/provider/openai"
	"github.com/poiesic/metasearch/session"
)

func main() {
	app := &cli.App{
		Name:  "metasearch",
		Usage: "Multi-provider search orchestration engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a full search session, streaming updates to stdout",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search query",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "session-id",
						Usage: "Session identifier (defaults to one derived from the query)",
					},
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Owner identifier",
						Value: "local",
					},
					&cli.StringSliceFlag{
						Name:  "results-file",
						Usage: "Provider result file as name=path.json, repeatable",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL for reranking (optional)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name for reranking",
					},
					&cli.BoolFlag{
						Name:  "human-review",
						Usage: "Insert a human-review step before synthesis",
					},
				},
			},
			{
				Name:   "tasks",
				Usage:  "List the persisted tasks of a session",
				Action: tasksCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "session-id",
						Usage:    "Session identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Owner identifier",
						Value: "local",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()
	query := c.String("query")

	providers, err := loadProviders(c.StringSlice("results-file"))
	if err != nil {
		return err
	}

	engineOpts := []metasearch.EngineOption{
		metasearch.WithProviders(providers...),
	}
	if host := c.String("embedding-host"); host != "" {
		config := provider.NewConfig(
			provider.WithEmbeddingHost(host),
			provider.WithEmbeddingModel(c.String("embedding-model")),
		)
		reranker, err := openai.NewReranker(config)
		if err != nil {
			return fmt.Errorf("creating reranker: %w", err)
		}
		engineOpts = append(engineOpts, metasearch.WithReranker(reranker))
	}

	engine, err := metasearch.NewEngine(c.String("db"), engineOpts...)
	if err != nil {
		return fmt.Errorf("opening engine: %w", err)
	}
	defer engine.Close()

	sessionId := c.String("session-id")
	if sessionId == "" {
		sessionId = "cli-" + sanitizeId(query)
	}

	sess, err := engine.NewSession(sessionId, c.String("owner"),
		session.WithSink(os.Stdout))
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer sess.Close()

	if c.Bool("human-review") {
		if err := sess.Planner().SetHumanReview(true); err != nil {
			return err
		}
	}

	outcome, err := sess.Run(ctx, query)
	if err != nil {
		return err
	}

	slog.Info("session finished",
		"session_id", sessionId,
		"strategy", outcome.Strategy,
		"results", len(outcome.Results),
		"duplicates_removed", outcome.Stats.DuplicatesRemoved)
	return nil
}

func tasksCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := metasearch.NewEngine(c.String("db"))
	if err != nil {
		return fmt.Errorf("opening engine: %w", err)
	}
	defer engine.Close()

	tasks, err := engine.TaskRepository().GetSessionTasks(ctx, c.String("session-id"), c.String("owner"))
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	if len(tasks) == 0 {
		fmt.Println("no tasks found")
		return nil
	}
	for _, task := range tasks {
		fmt.Printf("%s  [%s/%s]  %s", task.Id, task.Priority, task.Status, task.Title)
		if len(task.DependsOn) > 0 {
			fmt.Printf("  (after %s)", strings.Join(task.DependsOn, ", "))
		}
		fmt.Println()
	}
	return nil
}

// loadProviders builds one file-backed provider per name=path spec.
func loadProviders(specs []string) ([]provider.SearchProvider, error) {
	providers := make([]provider.SearchProvider, 0, len(specs))
	for _, spec := range specs {
		name, path, found := strings.Cut(spec, "=")
		if !found || name == "" || path == "" {
			return nil, fmt.Errorf("invalid results-file %q: expected name=path.json", spec)
		}
		p, err := jsonfile.NewProvider(name, path)
		if err != nil {
			return nil, fmt.Errorf("loading provider %q: %w", name, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func sanitizeId(text string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			builder.WriteByte('-')
		}
	}
	id := builder.String()
	if len(id) > 40 {
		id = id[:40]
	}
	return id
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
