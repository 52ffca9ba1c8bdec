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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/guardrail"
	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/config"
	"github.com/poiesic/guardrail/core"
	"github.com/poiesic/guardrail/orchestrator"
	"github.com/poiesic/guardrail/reembed"
)

func main() {
	app := &cli.App{
		Name:  "guardrail",
		Usage: "Coverage guardrail: answer insurance coverage questions grounded in policy text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML config file overriding the chunking, retrieval, and guardrail tunables (no command-line flag sets these tunables)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a policy document into the chunk store",
				Action: ingestCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "policy-id",
						Aliases:  []string{"p"},
						Usage:    "Policy identifier to ingest this document under",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the policy document",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "mime",
						Usage: "Declared MIME type of the document",
						Value: "text/plain",
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
					chatHostFlag(),
					chatModelFlag(),
					embeddingDimFlag(),
				},
			},
			{
				Name:   "query",
				Usage:  "Ask a single coverage question against a policy and print the streamed answer and verdict",
				Action: queryCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "policy-id",
						Aliases:  []string{"p"},
						Usage:    "Policy identifier to query",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "utterance",
						Aliases:  []string{"q"},
						Usage:    "The coverage question to ask",
						Required: true,
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
					chatHostFlag(),
					chatModelFlag(),
					embeddingDimFlag(),
				},
			},
			{
				Name:   "delete-policy",
				Usage:  "Delete every chunk belonging to a policy",
				Action: deletePolicyCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "policy-id",
						Aliases:  []string{"p"},
						Usage:    "Policy identifier to delete",
						Required: true,
					},
				},
			},
			{
				Name:  "policy",
				Usage: "Manage policy display metadata (never consulted by coverage reasoning)",
				Subcommands: []*cli.Command{
					{
						Name:   "set",
						Usage:  "Create or update a policy's display metadata",
						Action: policySetCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:     "policy-id",
								Aliases:  []string{"p"},
								Required: true,
							},
							&cli.StringFlag{
								Name:     "display-name",
								Required: true,
							},
							&cli.StringFlag{
								Name: "owner",
							},
						},
					},
					{
						Name:   "get",
						Usage:  "Print a policy's display metadata",
						Action: policyGetCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:     "policy-id",
								Aliases:  []string{"p"},
								Required: true,
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List every policy's display metadata",
						Action: policyListCommand,
						Flags:  []cli.Flag{dbFlag()},
					},
					{
						Name:   "rm",
						Usage:  "Remove a policy's display metadata",
						Action: policyRemoveCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:     "policy-id",
								Aliases:  []string{"p"},
								Required: true,
							},
						},
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed a policy's chunks after an embedding model change",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "policy-id",
						Aliases:  []string{"p"},
						Usage:    "Policy identifier to reembed",
						Required: true,
					},
					embeddingHostFlag(),
					embeddingModelFlag(),
					chatHostFlag(),
					chatModelFlag(),
					embeddingDimFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed per batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func embeddingHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "embedding-host",
		Usage: "Embedding service host URL",
		Value: "http://localhost:11434/v1",
	}
}

func chatHostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "chat-host",
		Usage: "Chat/completion service host URL (defaults to embedding-host if not specified)",
	}
}

func embeddingModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "embedding-model",
		Usage:    "Embedding model name",
		Required: true,
	}
}

func chatModelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "chat-model",
		Usage:    "Chat model name used for evaluation, extraction, and composition",
		Required: true,
	}
}

func embeddingDimFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "embedding-dim",
		Usage: "Fixed embedding dimension D",
		Value: 1536,
	}
}

// coreConfigFromFlags builds the chunking/retrieval/guardrail tunables,
// loading a YAML file first when -config is given and always applying
// Default() as the base, so an unset -config leaves every default in
// place.
func coreConfigFromFlags(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

func airagConfigFromFlags(c *cli.Context) *airag.Config {
	embeddingHost := c.String("embedding-host")
	chatHost := c.String("chat-host")
	if chatHost == "" {
		chatHost = embeddingHost
	}
	return airag.NewConfig(
		airag.WithEmbeddingHost(embeddingHost),
		airag.WithChatHost(chatHost),
		airag.WithEmbeddingModel(c.String("embedding-model")),
		airag.WithChatModel(c.String("chat-model")),
		airag.WithEmbeddingDim(c.Int("embedding-dim")),
	)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	policyID := c.String("policy-id")
	filePath := c.String("file")

	documentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	coreCfg, err := coreConfigFromFlags(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	g, err := guardrail.New(dbPath, guardrail.WithAIRAGConfig(airagConfigFromFlags(c)), guardrail.WithCoreConfig(coreCfg))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	pipeline, err := g.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	result, err := pipeline.Ingest(ctx, policyID, documentBytes, c.String("mime"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Ingested policy %q: %d chunks across %d pages\n",
		result.PolicyID, result.ChunkCount, result.Pages)
	return nil
}

// stdoutEventWriter prints streamed tokens as they arrive, then prints
// the trailer verdict as JSON once the turn concludes.
type stdoutEventWriter struct{}

func (stdoutEventWriter) WriteEvent(e orchestrator.Event) error {
	switch e.Type {
	case orchestrator.EventToken:
		fmt.Fprint(os.Stdout, e.Token)
	case orchestrator.EventTrailer:
		fmt.Fprintln(os.Stdout)
		data, err := json.MarshalIndent(e.Verdict, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
	case orchestrator.EventError:
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "error: %s\n", e.Error)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	policyID := c.String("policy-id")
	utterance := c.String("utterance")

	coreCfg, err := coreConfigFromFlags(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	g, err := guardrail.New(dbPath, guardrail.WithAIRAGConfig(airagConfigFromFlags(c)), guardrail.WithCoreConfig(coreCfg))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	session, err := g.Orchestrator().CreateSession(policyID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if err := g.Orchestrator().Ask(ctx, session.ID, policyID, utterance, stdoutEventWriter{}); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}

func deletePolicyCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	policyID := c.String("policy-id")

	g, err := guardrail.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	if err := g.ChunkStore().DeletePolicy(ctx, policyID); err != nil {
		return fmt.Errorf("failed to delete policy %q: %w", policyID, err)
	}

	fmt.Fprintf(os.Stdout, "Deleted policy %q\n", policyID)
	return nil
}

func policySetCommand(c *cli.Context) error {
	g, err := guardrail.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	rec := &core.PolicyRecord{
		PolicyID:    c.String("policy-id"),
		DisplayName: c.String("display-name"),
		Owner:       c.String("owner"),
		CreatedAt:   time.Now().UTC(),
	}
	if err := g.PolicyRepository().Put(rec); err != nil {
		return fmt.Errorf("failed to save policy record: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Saved policy %q (%s)\n", rec.PolicyID, rec.DisplayName)
	return nil
}

func policyGetCommand(c *cli.Context) error {
	g, err := guardrail.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	rec, err := g.PolicyRepository().Get(c.String("policy-id"))
	if err != nil {
		return fmt.Errorf("failed to fetch policy record: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func policyListCommand(c *cli.Context) error {
	g, err := guardrail.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	records, err := g.PolicyRepository().List()
	if err != nil {
		return fmt.Errorf("failed to list policy records: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func policyRemoveCommand(c *cli.Context) error {
	g, err := guardrail.New(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	if err := g.PolicyRepository().Delete(c.String("policy-id")); err != nil {
		return fmt.Errorf("failed to delete policy record: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Removed policy %q\n", c.String("policy-id"))
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	policyID := c.String("policy-id")

	g, err := guardrail.New(dbPath, guardrail.WithAIRAGConfig(airagConfigFromFlags(c)))
	if err != nil {
		return fmt.Errorf("failed to open guardrail: %w", err)
	}
	defer g.Close()

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	reembedConfig.RetryDelay = 1 * time.Second

	reembedder := reembed.NewReembedder(g.ChunkStore(), g.Provider().Embedder(), policyID, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Policy: %s\n", policyID)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
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
