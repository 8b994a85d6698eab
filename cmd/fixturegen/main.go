package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/clubops/gpscanon/internal/fixtures"
)

// Default configuration constants.
const (
	defaultSessions   = 5
	defaultPlayers    = 22
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL of the service")
		sessions  = flag.Int("sessions", defaultSessions, "Number of session files to generate")
		players   = flag.Int("players", defaultPlayers, "Number of players per session")
		format    = flag.String("format", "csv", "Output format: csv, json, xml or xlsx")
		outputDir = flag.String("out", "fixtures", "Output directory for generated files")
		teamID    = flag.String("team", "team-1", "Team id used when uploading")
		gpsSystem = flag.String("gps", "fixture-gps", "GPS system name used for the profile")
		upload    = flag.Bool("upload", false, "Upload generated files to the service")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for tool output (default: fixturegen_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		fixtures.ShowHelp()
		return
	}

	// Setup logging
	if err := fixtures.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create generator configuration
	config := &fixtures.Config{
		BaseURL:   *baseURL,
		Sessions:  *sessions,
		Players:   *players,
		Format:    *format,
		OutputDir: *outputDir,
		TeamID:    *teamID,
		GpsSystem: *gpsSystem,
		Upload:    *upload,
		Timeout:   *timeout,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	// Run the generator
	if err := fixtures.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Fixture generation failed: " + err.Error() + "\n")
		return
	}
}
