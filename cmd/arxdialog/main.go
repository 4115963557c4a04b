// Copyright 2025 Helikon Labs
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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/helikon/arxdialog"
	"github.com/helikon/arxdialog/core"
	"github.com/helikon/arxdialog/dialog"
	"github.com/helikon/arxdialog/rag"
	"github.com/helikon/arxdialog/rag/jsonsplit"
	"github.com/helikon/arxdialog/reindex"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "arxdialog",
		Usage: "Ingest arXiv papers and hold grounded conversations about them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a paper into its local index",
				ArgsUsage: "<arxiv-id-or-url>",
				Action:    ingestCommand,
				Flags:     engineFlags(),
			},
			{
				Name:      "ask",
				Usage:     "Ask a single question about an ingested paper",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "paper",
						Aliases:  []string{"p"},
						Usage:    "ArXiv ID of the paper to query",
						Required: true,
					},
				),
			},
			{
				Name:   "chat",
				Usage:  "Interactive conversation; paste a paper link or ID to load it",
				Action: chatCommand,
				Flags:  engineFlags(),
			},
			{
				Name:   "analyze",
				Usage:  "Run the standard analysis questions against an ingested paper",
				Action: analyzeCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "paper",
						Aliases:  []string{"p"},
						Usage:    "ArXiv ID of the paper to analyze",
						Required: true,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every entry of a paper's index",
				Action: reindexCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "paper",
						Aliases:  []string{"p"},
						Usage:    "ArXiv ID of the paper to reindex",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding per-paper indexes and checkpoints",
			Value:   "./arxdialog-data",
			EnvVars: []string{"ARXDIALOG_DATA_DIR"},
		},
		&cli.StringFlag{
			Name:    "fragments-dir",
			Usage:   "Directory holding pre-split fragment files (<id>.json)",
			Value:   "./fragments",
			EnvVars: []string{"ARXDIALOG_FRAGMENTS_DIR"},
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"ARXDIALOG_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "text-embedding-3-small",
			EnvVars: []string{"ARXDIALOG_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "chat-model",
			Usage:   "Chat model name",
			Value:   "qwen2.5:7b",
			EnvVars: []string{"ARXDIALOG_CHAT_MODEL"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token for the model host",
			Value:   "none",
			EnvVars: []string{"ARXDIALOG_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "system-prompt",
			Usage:   "System instruction sent with every model call",
			Value:   "You are a helpful assistant.",
			EnvVars: []string{"ARXDIALOG_SYSTEM_PROMPT"},
		},
	}
}

func setup(c *cli.Context) error {
	// A missing .env file is fine; explicit flags and env vars still apply.
	_ = godotenv.Load()

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

func buildEngine(c *cli.Context) (*arxdialog.Engine, error) {
	config := rag.NewConfig(
		rag.WithHost(c.String("host")),
		rag.WithEmbeddingModel(c.String("embedding-model")),
		rag.WithChatModel(c.String("chat-model")),
		rag.WithToken(c.String("token")),
		rag.WithSystemPrompt(c.String("system-prompt")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	splitter := jsonsplit.NewSplitter(c.String("fragments-dir"))
	return arxdialog.NewEngine(c.String("data-dir"), splitter, arxdialog.WithRAGConfig(config))
}

// consoleView prints answer deltas to stdout as the model streams them
// and the transcript turns as they are published. An answer that was
// fully streamed is not reprinted.
type consoleView struct {
	printed  int
	streamed strings.Builder
}

func (v *consoleView) StreamDelta(delta string) {
	fmt.Print(delta)
	v.streamed.WriteString(delta)
}

func (v *consoleView) Publish(transcript []core.Turn, history []string) {
	for ; v.printed < len(transcript); v.printed++ {
		turn := transcript[v.printed]
		if turn.User != "" {
			fmt.Printf("> %s\n", turn.User)
		}
		if v.streamed.Len() > 0 && turn.Assistant == v.streamed.String() {
			fmt.Println()
		} else {
			fmt.Printf("%s\n", turn.Assistant)
		}
		v.streamed.Reset()
	}
}

func buildOrchestrator(engine *arxdialog.Engine) (*dialog.Orchestrator, error) {
	view := &consoleView{}
	return engine.NewOrchestrator(view, dialog.WithStreamSink(view.StreamDelta))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one paper ID or URL")
	}

	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	documentKey := core.NormalizeDocumentKey(c.Args().First())
	committed, err := pipeline.Ingest(context.Background(), documentKey)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", documentKey, err)
	}

	fmt.Printf("Ingested %s: %d fragments committed\n", documentKey, committed)
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected a question")
	}

	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	orchestrator, err := buildOrchestrator(engine)
	if err != nil {
		return err
	}

	session := dialog.NewSession()
	session.DocumentKey = core.NormalizeDocumentKey(c.String("paper"))

	question := strings.Join(c.Args().Slice(), " ")
	return orchestrator.HandleTurn(context.Background(), session, question)
}

func chatCommand(c *cli.Context) error {
	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	orchestrator, err := buildOrchestrator(engine)
	if err != nil {
		return err
	}

	session := dialog.NewSession()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Paste an arXiv link or ID to load a paper, then ask questions. Ctrl-D to quit.")
	for {
		fmt.Print("? ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if err := orchestrator.HandleTurn(context.Background(), session, input); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func analyzeCommand(c *cli.Context) error {
	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	orchestrator, err := buildOrchestrator(engine)
	if err != nil {
		return err
	}

	session := dialog.NewSession()
	session.DocumentKey = core.NormalizeDocumentKey(c.String("paper"))

	return orchestrator.AutoAnalyze(context.Background(), session)
}

func reindexCommand(c *cli.Context) error {
	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	documentKey := core.NormalizeDocumentKey(c.String("paper"))
	reindexer, err := engine.NewReindexer(documentKey, config, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Paper: %s\n", documentKey)
	return reindexer.Run(context.Background())
}
