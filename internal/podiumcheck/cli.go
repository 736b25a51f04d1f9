package podiumcheck

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/podium/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initialises the global logger to write to both stdout and a file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "podium_check_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the check tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Podium Check Tool
=================

Submits concurrent podium updates to a running leaderboard and verifies
the resulting podiums and overall standings.

Usage:
  podium-check [options]

Options:
  -url string            Base URL of the service (default "http://localhost:9080")
  -updates int           Number of podium updates (default 2000)
  -workers int           Number of concurrent workers (default CPU cores * 2)
  -rate float            Updates per second across all workers (default 0, unlimited)
  -sports string         Comma separated sport ids (default "football,basketball")
  -communities string    Comma separated community ids (default "nairobi,westlands,parklands")
  -empty float           Probability that a slot is left empty (default 0.1)
  -seed uint             Generator seed (default: time based)
  -gold/-silver/-bronze  Points the server awards (default 10/7/5)
  -timeout duration      HTTP request timeout (default 30s)
  -log string            Log file (default: podium_check_TIMESTAMP.log)
  -verbose               Log every failed update
  -help                  Show this help message
`)
}
