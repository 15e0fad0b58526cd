package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/knowhub"
	"github.com/aretw0/knowhub/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notices to generate")
	adapter := flag.String("adapter", knowhub.AdapterFS, "Storage adapter: fs or sqlite")
	keep := flag.Bool("keep", false, "Keep the benchmark knowledge base after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "knowhub_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := []knowhub.Option{
		knowhub.WithAdapter(*adapter),
		knowhub.WithAutoInit(true),
		knowhub.WithVersioning(false),
		knowhub.WithLogger(logger),
	}
	ctx := context.Background()

	fmt.Printf("Generating %d notices in %s (%s)...\n", *count, benchDir, *adapter)
	startGen := time.Now()
	repo, err := knowhub.Open(ctx, benchDir, opts...)
	if err != nil {
		panic(err)
	}
	notices := make([]core.Notice, *count)
	for i := range *count {
		notices[i] = core.Notice{
			ID:       fmt.Sprintf("notice-%d", i),
			Title:    fmt.Sprintf("Notice %d", i),
			Content:  "# Benchmark\nThis is a test notice.",
			Author:   "bench",
			Date:     core.FormatCalendarDate(time.Now()),
			Priority: core.PriorityNormal,
		}
	}
	if err := knowhub.Notices(repo).BulkPut(ctx, notices); err != nil {
		panic(err)
	}
	_ = knowhub.Close(repo)
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	// Run 1: a fresh process loading the whole knowledge base.
	fmt.Println("Running Load (Run 1 - Cold)...")
	startCold := time.Now()
	h, err := knowhub.New(ctx, benchDir, opts...)
	if err != nil {
		panic(err)
	}
	cold := time.Since(startCold)
	fmt.Printf("Run 1 Result: %v (Items: %d)\n", cold, len(h.Notices()))

	// Run 2: reload through the same repository, served by its cache.
	fmt.Println("Running Load (Run 2 - Warm)...")
	startWarm := time.Now()
	if err := h.Load(ctx); err != nil {
		panic(err)
	}
	warm := time.Since(startWarm)
	fmt.Printf("Run 2 Result: %v (Items: %d)\n", warm, len(h.Notices()))
	h.Close()
	_ = knowhub.Close(h.Repository())

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notices, %s):\n", *count, *adapter)
	fmt.Printf("  Cold: %v\n", cold)
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}
