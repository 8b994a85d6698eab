// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/clubops/gpscanon/internal/adapters/repository"
	service "github.com/clubops/gpscanon/internal/app"
	"github.com/clubops/gpscanon/internal/domain/canon"
	"github.com/clubops/gpscanon/internal/domain/reconcile"
	"github.com/clubops/gpscanon/internal/domain/suggest"
	"github.com/clubops/gpscanon/internal/ingest"
	"github.com/clubops/gpscanon/internal/profile"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ParseDependencies
	SuggestDependencies
	ConvertDependencies
	RegistryDependencies
	ProfileDependencies
	ReportDependencies
	PlayerDependencies
}

// ParseDependencies covers the upload inspection endpoint.
type ParseDependencies interface {
	ParseVendorFile(ctx context.Context, data []byte, filename string) (*service.ParseResult, error)
}

// SuggestDependencies covers header-to-metric proposals.
type SuggestDependencies interface {
	SuggestMapping(header string) (suggest.Suggestion, error)
}

// ConvertDependencies covers unit conversion.
type ConvertDependencies interface {
	Convert(ctx context.Context, value float64, from, to, dimension string) (float64, error)
}

// RegistryDependencies covers the canonical metric catalog.
type RegistryDependencies interface {
	MetricCatalog() []canon.Metric
}

// ProfileDependencies covers saving and reading mapping profiles.
type ProfileDependencies interface {
	SaveProfile(ctx context.Context, in profile.SaveInput) (*repository.Profile, error)
	GetProfile(ctx context.Context, id string) (*repository.Profile, error)
}

// ReportDependencies covers report ingestion and reads.
type ReportDependencies interface {
	ParseFile(ctx context.Context, data []byte, filename string) (*ingest.ParsedFile, error)
	IngestReport(ctx context.Context, in service.IngestInput) (*repository.Report, error)
	GetReport(ctx context.Context, id string) (*repository.Report, error)
	GetReportData(ctx context.Context, id string) ([]repository.ReportData, error)
}

// PlayerDependencies covers player name reconciliation.
type PlayerDependencies interface {
	AutoMatch(ctx context.Context, reportName, teamID, gpsSystem string) (reconcile.Result, error)
	SaveMapping(ctx context.Context, in service.SaveMappingInput) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	parseHandler    *ParseHandler
	suggestHandler  *SuggestHandler
	convertHandler  *ConvertHandler
	registryHandler *RegistryHandler
	profileHandler  *ProfileHandler
	reportHandler   *ReportHandler
	playerHandler   *PlayerHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		parseHandler:    NewParseHandler(deps),
		suggestHandler:  NewSuggestHandler(deps),
		convertHandler:  NewConvertHandler(deps),
		registryHandler: NewRegistryHandler(deps),
		profileHandler:  NewProfileHandler(deps),
		reportHandler:   NewReportHandler(deps),
		playerHandler:   NewPlayerHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metricsz", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/statsz", MetricsMiddleware(s.statsHandler.HandleStats, "statsz"))
	mux.HandleFunc("/parse", MetricsMiddleware(s.parseHandler.HandlePostParse, "parse"))
	mux.HandleFunc("/suggest", MetricsMiddleware(s.suggestHandler.HandlePostSuggest, "suggest"))
	mux.HandleFunc("/convert", MetricsMiddleware(s.convertHandler.HandlePostConvert, "convert"))
	mux.HandleFunc("/metrics-registry", MetricsMiddleware(s.registryHandler.HandleGetRegistry, "metrics-registry"))
	mux.HandleFunc("/profiles", MetricsMiddleware(s.profileHandler.HandleProfiles, "profiles"))
	mux.HandleFunc("/profiles/", MetricsMiddleware(s.profileHandler.HandleProfileByID, "profiles"))
	mux.HandleFunc("/reports", MetricsMiddleware(s.reportHandler.HandlePostReport, "reports"))
	mux.HandleFunc("/reports/", MetricsMiddleware(s.reportHandler.HandleReportByID, "reports"))
	mux.HandleFunc("/players/match", MetricsMiddleware(s.playerHandler.HandlePostMatch, "players-match"))
	mux.HandleFunc("/players/mappings", MetricsMiddleware(s.playerHandler.HandlePostMapping, "players-mappings"))
}
