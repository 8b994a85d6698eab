package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/clubops/gpscanon/pkg/logger"
)

// Run generates the session fixtures and optionally uploads them to a
// running service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting fixture generation",
		logger.Int("sessions", config.Sessions),
		logger.Int("players", config.Players),
		logger.String("format", config.Format),
		logger.String("outputDir", config.OutputDir),
		logger.Any("upload", config.Upload))

	sessions, err := GenerateSessions(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("session generation failed: %w", err)
	}

	paths := make([]string, 0, len(sessions))
	for _, session := range sessions {
		path, err := WriteSession(config, session)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", session.Name, err)
		}
		paths = append(paths, path)
		stats.OutputDirs = append(stats.OutputDirs, path)
	}

	if config.Upload {
		if err := uploadAll(ctx, config, paths, stats); err != nil {
			return err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return nil
}

func uploadAll(ctx context.Context, config *Config, paths []string, stats *Stats) error {
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	profileID, err := createProfile(ctx, config)
	if err != nil {
		return fmt.Errorf("profile creation failed: %w", err)
	}

	for _, path := range paths {
		if err := uploadSession(ctx, config, profileID, path); err != nil {
			stats.Failed++
			logger.Get().Warn(ctx, "upload failed", logger.String("file", path), logger.Error(err))
			continue
		}
		stats.Uploaded++
	}
	if stats.Uploaded == 0 && len(paths) > 0 {
		return fmt.Errorf("all %d uploads failed", len(paths))
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "fixture run finished",
		logger.Int("generated", stats.Generated),
		logger.Int("uploaded", stats.Uploaded),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()))
}
