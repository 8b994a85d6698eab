package fixtures

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/clubops/gpscanon/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "fixturegen_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the fixture generator.
func ShowHelp() {
	os.Stdout.WriteString(`GPS Fixture Generator
=====================

Generates realistic vendor GPS session exports and can push them through a
running canonicalization service.

Usage:
  go run cmd/fixturegen/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -sessions int
        Number of session files to generate (default 5)
  -players int
        Number of players per session (default 22)
  -format string
        Output format: csv, json, xml or xlsx (default "csv")
  -out string
        Output directory for generated files (default "fixtures")
  -team string
        Team id used when uploading (default "team-1")
  -gps string
        GPS system name used for the profile (default "fixture-gps")
  -upload
        Upload generated files to the service
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for tool output (default: fixturegen_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Generate five CSV sessions in ./fixtures
  go run cmd/fixturegen/main.go

  # Generate Excel exports for a full squad
  go run cmd/fixturegen/main.go -format xlsx -players 28 -sessions 10

  # Generate and ingest against a local service
  go run cmd/fixturegen/main.go -upload -url http://localhost:8080
`)
}
