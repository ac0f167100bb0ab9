package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"blast/pkg/loadgen"
)

func main() {
	var (
		url         = flag.String("url", "", "target URL (required)")
		method      = flag.String("method", "", "HTTP method (default GET)")
		body        = flag.String("body", "", "request body")
		requests    = flag.Int("n", 1, "total number of requests")
		concurrency = flag.Int("c", 1, "number of concurrent workers")
		timeout     = flag.Int("timeout", 0, "per-request timeout in seconds (default 30)")
		interactive = flag.Bool("interactive", false, "prompt for parameters between runs")
		verbose     = flag.Bool("v", false, "enable progress logging")
	)
	flag.Parse()

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if *interactive {
		runShell(os.Stdin, os.Stdout, logger)
		return
	}

	if *url == "" {
		fmt.Fprintln(os.Stderr, "a target URL is required; use -url")
		flag.Usage()
		os.Exit(1)
	}

	cfg := loadgen.Config{
		URL:         *url,
		Method:      *method,
		Body:        *body,
		Requests:    *requests,
		Concurrency: *concurrency,
		Timeout:     *timeout,
	}

	if err := execute(cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs one configuration and prints its report, using the terse
// single-outcome form when exactly one request was asked for.
func execute(cfg loadgen.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	if cfg.Requests == 1 && cfg.Concurrency <= 1 {
		out, err := loadgen.ProbeOnce(ctx, cfg, logger)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	summary, err := loadgen.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}
