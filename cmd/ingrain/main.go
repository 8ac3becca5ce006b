// Copyright 2026 Poiesic Systems
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
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/ingrain"
	"github.com/poiesic/ingrain/config"
	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/vector"
)

func main() {
	app := &cli.App{
		Name:  "ingrain",
		Usage: "Asynchronous document ingestion for vector search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "ingrain.yaml",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the queue API server",
				Action: serveCommand,
			},
			{
				Name:   "worker",
				Usage:  "Run the ingestion worker loop",
				Action: workerCommand,
			},
			{
				Name:      "enqueue",
				Usage:     "Submit files for ingestion into a collection",
				ArgsUsage: "FILE [FILE...]",
				Action:    enqueueCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Target collection name",
						Required: true,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the status of one job",
				ArgsUsage: "JOB_ID",
				Action:    statusCommand,
			},
			{
				Name:   "queue",
				Usage:  "List jobs in the queue",
				Action: queueCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pending",
						Usage: "Show only pending jobs",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Search a collection for similar chunks",
				ArgsUsage: "QUERY...",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Collection to search",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of results to return",
						Value: 5,
					},
				},
			},
			{
				Name:   "sweep",
				Usage:  "Return stale processing jobs to the queue",
				Action: sweepCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "age",
						Usage: "Claims older than this are considered abandoned",
						Value: 15 * time.Minute,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// A missing .env file is fine; explicit environment still applies.
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

func loadSystem(c *cli.Context) (*ingrain.System, *config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	sys, err := ingrain.Open(c.Context, cfg)
	if err != nil {
		return nil, nil, err
	}
	return sys, cfg, nil
}

func serveCommand(c *cli.Context) error {
	sys, cfg, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: sys.Router(),
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api server listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func workerCommand(c *cli.Context) error {
	sys, cfg, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	w, err := sys.NewWorker()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Recover jobs stranded by a previous crash before polling.
	if requeued, err := sys.Jobs().RequeueStale(ctx, cfg.StaleClaimAge()); err != nil {
		slog.Warn("stale claim sweep failed", "err", err)
	} else if len(requeued) > 0 {
		slog.Info("requeued stale jobs", "count", len(requeued))
	}

	return w.Run(ctx)
}

func enqueueCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	sys, _, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	job, err := sys.Jobs().Enqueue(c.Context, c.String("db"), c.Args().Slice())
	if err != nil {
		return err
	}

	fmt.Printf("enqueued job %s (%d files, collection %s)\n", job.ID, len(job.Files), job.Collection)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one job ID is required")
	}

	sys, _, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	job, err := sys.Jobs().Get(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	printJob(job)
	return nil
}

func queueCommand(c *cli.Context) error {
	sys, _, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	var jobs []*core.Job
	if c.Bool("pending") {
		jobs, err = sys.Jobs().ListPending(c.Context)
	} else {
		jobs, err = sys.Jobs().List(c.Context)
	}
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Println("queue is empty")
		return nil
	}
	for _, job := range jobs {
		fmt.Printf("%s  %-10s  %-20s  %d files  %s\n",
			job.ID, job.Status, job.Collection, len(job.Files),
			job.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query string is required")
	}

	sys, _, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	embedder, err := sys.Embedder()
	if err != nil {
		return err
	}

	vec, err := embedder.EmbedText(c.Context, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}

	matches, err := sys.Index().Query(c.Context, vec, c.Int("top"), vector.Filter{Collection: c.String("db")})
	if err != nil {
		return err
	}

	fmt.Printf("found %d hits\n", len(matches))
	for i, hit := range matches {
		fmt.Printf("%d: %s (page %d)[%0.3f]\n  %s\n",
			i, hit.Metadata.Source, hit.Metadata.Page, hit.Score, snippet(hit.Metadata.Text))
	}
	return nil
}

func sweepCommand(c *cli.Context) error {
	sys, _, err := loadSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	requeued, err := sys.Jobs().RequeueStale(c.Context, c.Duration("age"))
	if err != nil {
		return err
	}

	if len(requeued) == 0 {
		fmt.Println("no stale jobs")
		return nil
	}
	for _, id := range requeued {
		fmt.Printf("requeued %s\n", id)
	}
	return nil
}

func printJob(job *core.Job) {
	fmt.Printf("job:        %s\n", job.ID)
	fmt.Printf("collection: %s\n", job.Collection)
	fmt.Printf("status:     %s\n", job.Status)
	fmt.Printf("created:    %s\n", job.CreatedAt.Format(time.RFC3339))
	fmt.Printf("files:      %s\n", strings.Join(job.Files, ", "))
	if job.Result != nil {
		if job.Result.Error != "" {
			fmt.Printf("error:      %s\n", job.Result.Error)
		}
		fmt.Printf("processed:  %d\n", len(job.Result.ProcessedFiles))
		fmt.Printf("skipped:    %d\n", len(job.Result.SkippedFiles))
		fmt.Printf("chunks:     %d\n", job.Result.ChunkCount)
	}
}

func snippet(text string) string {
	const max = 120
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
