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

// Command indexer builds a corpus database from a JSONL file of talk
// chunks. Each line carries one chunk:
//
//	{"talk_id": "...", "chunk_index": 0, "archival_title": "...",
//	 "recorded_date": "2018-08-30", "text": "...",
//	 "media_id": "...", "start_seconds": 125, "end_seconds": 240}
//
// Media and timing fields are optional; chunks without them still index
// but their citations carry no deep links.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/poiesic/archivist"
	"github.com/poiesic/archivist/ai"
	"github.com/poiesic/archivist/core"
	"github.com/poiesic/archivist/ingestion"
	"github.com/urfave/cli/v2"
)

// chunkRecord is the JSONL wire form of one transcript chunk. Pointer
// timing fields distinguish absent from zero seconds.
type chunkRecord struct {
	TalkID       string   `json:"talk_id"`
	ChunkIndex   int      `json:"chunk_index"`
	Title        string   `json:"archival_title"`
	Recorded     string   `json:"recorded_date"`
	Text         string   `json:"text"`
	MediaID      string   `json:"media_id"`
	StartSeconds *float64 `json:"start_seconds"`
	EndSeconds   *float64 `json:"end_seconds"`
	StartLabel   string   `json:"start_label"`
	EndLabel     string   `json:"end_label"`
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:      "indexer",
		Usage:     "Build a talks corpus database from JSONL chunks",
		ArgsUsage: "<chunks.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to the corpus database directory to create",
				EnvVars:  []string{"ARCHIVIST_DB"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"ARCHIVIST_EMBEDDING_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"ARCHIVIST_EMBEDDING_MODEL"},
				Value:   "nomic-embed-text",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the embedding service",
				EnvVars: []string{"ARCHIVIST_API_KEY"},
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of chunks per embedding request",
				Value: 32,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent embedding workers (0 uses the default)",
			},
		},
		Action: indexCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func indexCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one JSONL input file is required")
	}
	inputPath := c.Args().First()

	passages, err := readChunks(inputPath)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		return fmt.Errorf("no chunks found in %s", inputPath)
	}

	dbPath := c.String("db")
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	service, err := archivist.Open(dbPath, archivist.WithAIConfig(config))
	if err != nil {
		return err
	}
	defer service.Close()

	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithEmbeddingModel(c.String("embedding-model")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}

	pipeline, err := service.NewIngestionPipeline(opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Indexing %d chunks from %s into %s\n", len(passages), inputPath, dbPath)

	n, err := pipeline.Ingest(context.Background(), passages)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d passages\n", n)
	return nil
}

// readChunks parses one passage per JSONL line, skipping blank lines.
func readChunks(path string) ([]*core.Passage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var passages []*core.Passage
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var record chunkRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		passages = append(passages, record.toPassage())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return passages, nil
}

func (r *chunkRecord) toPassage() *core.Passage {
	p := &core.Passage{
		TalkID:       r.TalkID,
		ChunkIndex:   r.ChunkIndex,
		Title:        r.Title,
		Recorded:     r.Recorded,
		Text:         r.Text,
		MediaID:      r.MediaID,
		StartSeconds: -1,
		EndSeconds:   -1,
		StartLabel:   r.StartLabel,
		EndLabel:     r.EndLabel,
	}
	if r.StartSeconds != nil {
		p.StartSeconds = *r.StartSeconds
	}
	if r.EndSeconds != nil {
		p.EndSeconds = *r.EndSeconds
	}
	return p
}
