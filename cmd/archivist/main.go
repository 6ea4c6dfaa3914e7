// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
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
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/poiesic/archivist"
	"github.com/poiesic/archivist/ai"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env file if it exists (for hosts and API key)
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "archivist",
		Usage: "Question answering over an archive of transcribed talks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the corpus database directory",
				EnvVars: []string{"ARCHIVIST_DB"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"ARCHIVIST_EMBEDDING_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "answer-host",
				Usage:   "Answer generation service host URL",
				EnvVars: []string{"ARCHIVIST_ANSWER_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"ARCHIVIST_EMBEDDING_MODEL"},
				Value:   "nomic-embed-text",
			},
			&cli.StringFlag{
				Name:    "answer-model",
				Usage:   "Answer generation model name",
				EnvVars: []string{"ARCHIVIST_ANSWER_MODEL"},
				Value:   "qwen2.5:7b",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the model services",
				EnvVars: []string{"ARCHIVIST_API_KEY"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question from the talks archive",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "passage",
						Aliases: []string{"p"},
						Usage:   "Answer over explicit passage ids (talk:chunk or row number) instead of retrieval",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve the best-matching passages for a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Number of passages to return",
						Value:   5,
					},
					&cli.BoolFlag{
						Name:  "full",
						Usage: "Print full passage text instead of a preview",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Report corpus index and store health",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openService(c *cli.Context) (*archivist.Service, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithAnswerHost(c.String("answer-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAnswerModel(c.String("answer-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return archivist.Open(c.String("db"), archivist.WithAIConfig(config))
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	if service.Degraded() {
		fmt.Fprintln(os.Stderr, "warning: corpus not loaded, answering from sample passages")
	}

	answer, err := service.Synthesize(context.Background(), question, c.StringSlice("passage"))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if answer.Sources != "" {
		fmt.Println()
		fmt.Println("Sources:")
		fmt.Println(answer.Sources)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	if service.Degraded() {
		fmt.Fprintln(os.Stderr, "warning: corpus not loaded, returning sample passages")
	}

	results, err := service.Search(context.Background(), query, c.Int("top"))
	if err != nil {
		return err
	}

	for i, r := range results {
		p := r.Passage
		fmt.Printf("%d. [%.3f] %s — %s", i+1, r.Score, p.Recorded, p.Title)
		if p.HasTiming() {
			fmt.Printf(" (%s)", p.StartLabel)
		}
		fmt.Println()

		text := p.Text
		if !c.Bool("full") {
			text = preview(text, 200)
		}
		fmt.Printf("   %s\n", text)
	}
	return nil
}

// preview shortens text for one-line search output. The cutoff never
// splits a multi-byte rune.
func preview(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + "…"
}

func statusCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	ctx := context.Background()
	status := service.Status(ctx)

	fmt.Printf("Index loaded: %v (%d vectors)\n", status.IndexLoaded, status.IndexSize)
	fmt.Printf("Store loaded: %v (%d passages)\n", status.StoreLoaded, status.StoreRows)

	info, err := service.Info(ctx)
	if err != nil {
		return err
	}
	if info != nil {
		fmt.Printf("Embedding model: %s\n", info.EmbeddingModel)
		fmt.Printf("Dimension: %d\n", info.Dimension)
		fmt.Printf("Built at: %s\n", info.BuiltAt)
	}
	return nil
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
