package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/scoring"
	"github.com/okian/podium/internal/podiumcheck"
	"github.com/okian/podium/pkg/logger"
)

// Default configuration constants.
const (
	defaultUpdates      = 2000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultCheckTimeout = 10 * time.Minute
	defaultEmptySlotP   = 0.1
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		updates     = flag.Int("updates", defaultUpdates, "Number of podium updates to submit")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		ratePerSec  = flag.Float64("rate", 0, "Updates per second across all workers (0 = unlimited)")
		sports      = flag.String("sports", "football,basketball", "Comma separated sport ids")
		communities = flag.String("communities", "nairobi,westlands,parklands", "Comma separated community ids")
		emptyP      = flag.Float64("empty", defaultEmptySlotP, "Probability that a slot is left empty")
		seed        = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
		gold        = flag.Int("gold", scoring.DefaultGoldPoints, "Points awarded for first place")
		silver      = flag.Int("silver", scoring.DefaultSilverPoints, "Points awarded for second place")
		bronze      = flag.Int("bronze", scoring.DefaultBronzePoints, "Points awarded for third place")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile     = flag.String("log", "", "Log file for check output (default: podium_check_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Log every failed update")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		podiumcheck.ShowHelp(os.Stdout)
		return
	}

	closer, err := podiumcheck.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultCheckTimeout)
	defer cancel()

	cfg := &podiumcheck.Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Updates:     *updates,
		Workers:     *workers,
		Rate:        *ratePerSec,
		Timeout:     *timeout,
		Sports:      splitList(*sports),
		Communities: splitList(*communities),
		EmptySlotP:  *emptyP,
		Seed:        *seed,
		Scheme:      scoring.NewScheme(scoring.WithPoints(*gold, *silver, *bronze)),
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	log := logger.Named("podium-check")
	if _, err := podiumcheck.Run(ctx, cfg, log); err != nil {
		log.Error(ctx, "check failed", logger.Error(err))
		cancel()
		os.Exit(1) //nolint:gocritic // cancel is called above
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
