package fixtures

import "time"

// Config holds configuration for fixture generation
type Config struct {
	BaseURL   string        // Base URL of the service for uploads
	Players   int           // Number of players per session
	Sessions  int           // Number of session files to generate
	Format    string        // Output format: csv, json, xml or xlsx
	OutputDir string        // Directory for generated files
	GpsSystem string        // GPS system name used for the profile
	TeamID    string        // Team the sessions belong to
	Timeout   time.Duration // HTTP request timeout
	Upload    bool          // Upload generated files to the service
	LogFile   string        // Log file for tool output
	Verbose   bool          // Enable verbose logging
}

// Session is one generated vendor export
type Session struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

// Stats holds generation run statistics
type Stats struct {
	Generated  int
	Uploaded   int
	Failed     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	OutputDirs []string
}
