// Command adapter is a minimal demonstration entrypoint: it loads
// configuration, constructs a Pipeline, sends one user message read from
// stdin or argv, and prints the resulting text to stdout and the usage to
// stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	adapter "github.com/nevindra/respbridge"
	"github.com/nevindra/respbridge/internal/config"
	"github.com/nevindra/respbridge/observer"
)

func main() {
	configPath := flag.String("config", "", "path to a respbridge.toml config file")
	system := flag.String("system", "", "system instructions")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Load(*configPath)
	if cfg.APIKey == "" {
		logger.Error("missing API key: set RESPBRIDGE_API_KEY or api_key in the config file")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	shutdown, err := observer.Init(ctx)
	if err != nil {
		logger.Warn("tracing disabled: failed to initialize exporter", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	opts := []adapter.Option{
		adapter.WithTracer(observer.NewTracer()),
		adapter.WithLogger(logger),
	}

	pipeline := adapter.NewPipeline(adapter.Config{
		APIKey:                 cfg.APIKey,
		BaseURL:                cfg.BaseURL,
		Model:                  cfg.Model,
		EnableStatefulChaining: cfg.EnableStatefulChaining,
		MaxOutputTokens:        cfg.MaxOutputTokens,
		Temperature:            cfg.Temperature,
		AutoCompactEnabled:     cfg.AutoCompactEnabled,
	}, opts...)

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("failed to read stdin", "error", err)
			os.Exit(1)
		}
		prompt = string(data)
	}
	if strings.TrimSpace(prompt) == "" {
		fmt.Fprintln(os.Stderr, "usage: adapter [-config path] [-system text] <message>")
		os.Exit(2)
	}

	messages := []adapter.Message{adapter.UserMessage(prompt)}
	events, err := pipeline.CreateMessage(ctx, *system, messages, nil, nil, nil)
	if err != nil {
		logger.Error("createMessage failed", "error", err)
		os.Exit(1)
	}

	for _, ev := range events {
		switch ev.Type {
		case adapter.EventText:
			fmt.Print(ev.Text)
		case adapter.EventUsage:
			fmt.Fprintf(os.Stderr, "\n[usage] input=%d output=%d\n", ev.InputTokens, ev.OutputTokens)
		}
	}
	fmt.Println()
}
