// Package service provides the core business service that implements
// the dependencies required by the HTTP API. It wires the metric registry,
// the conversion engine, file ingestion, profile saves and player
// reconciliation together with the recalc queue and worker pool.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	recalcqueue "github.com/clubops/gpscanon/internal/adapters/mq/queue"
	workerpool "github.com/clubops/gpscanon/internal/adapters/mq/worker"
	"github.com/clubops/gpscanon/internal/adapters/repository"
	"github.com/clubops/gpscanon/internal/domain/canon"
	"github.com/clubops/gpscanon/internal/domain/reconcile"
	"github.com/clubops/gpscanon/internal/domain/suggest"
	"github.com/clubops/gpscanon/internal/domain/units"
	"github.com/clubops/gpscanon/internal/ingest"
	"github.com/clubops/gpscanon/internal/profile"
	"github.com/clubops/gpscanon/pkg/logger"
	"github.com/clubops/gpscanon/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize        = 10000
	defaultConfirmThreshold = 0.80
)

// ParseResult is everything a client needs to build a mapping profile from
// one uploaded vendor file.
type ParseResult struct {
	Metadata    ingest.Metadata               `json:"metadata"`
	Headers     []string                      `json:"headers"`
	Players     []string                      `json:"players"`
	Columns     []ingest.ColumnInfo           `json:"columns"`
	Validation  *ingest.Report                `json:"validation"`
	Suggestions map[string]suggest.Suggestion `json:"suggestions"`
}

// IngestInput describes one report ingestion request. File is the already
// parsed vendor export. PlayerMappings carries the caller's name decisions,
// report name to roster player id; names neither decided here nor resolved
// by a saved or auto-confirmed match keep their rows out of the batch.
type IngestInput struct {
	Name           string
	TeamID         string
	EventID        string
	ProfileID      string
	FileName       string
	File           *ingest.ParsedFile
	PlayerMappings map[string]string
}

// SaveMappingInput persists one human player-name decision.
type SaveMappingInput struct {
	ReportName  string  `json:"reportName"`
	TeamID      string  `json:"teamId"`
	GpsSystem   string  `json:"gpsSystem"`
	PlayerID    string  `json:"playerId"`
	Confidence  float64 `json:"confidence"`
	MappingType string  `json:"mappingType"`
}

// Service implements the API dependencies for the canonicalization system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry  *canon.Registry
	converter *units.Engine
	suggester suggest.Suggester
	parser    *ingest.Parser
	profiles  *profile.Engine
	store     repository.Store

	recalcQueue recalcqueue.Queue
	pool        *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	confirmThreshold float64
	maxFileSize      int64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. Without it the service runs on
// the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of recalc workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the recalc queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithConfirmThreshold sets the auto-confirm confidence threshold for
// player matching.
func WithConfirmThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.confirmThreshold = threshold
		}
	}
}

// WithMaxFileSize caps accepted upload size in bytes.
func WithMaxFileSize(limit int64) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxFileSize = limit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:        defaultQueueSize,
		confirmThreshold: defaultConfirmThreshold,
		maxFileSize:      ingest.DefaultMaxFileSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting gps canonicalization service...")

	s.registry = canon.NewRegistry()
	s.converter = units.NewEngine(units.WithLogger(s.logger))
	s.suggester = suggest.New(s.registry, suggest.WithLogger(s.logger))
	s.parser = ingest.NewParser(
		ingest.WithMaxFileSize(s.maxFileSize),
		ingest.WithLogger(s.logger),
	)
	if s.store == nil {
		s.store = repository.NewMemory()
		s.logger.Info(ctx, "using in-memory store")
	}
	s.profiles = profile.New(s.registry, s.store,
		profile.WithNotifier(s),
		profile.WithLogger(s.logger),
	)

	s.recalcQueue = recalcqueue.NewInMemoryQueue(
		recalcqueue.WithCapacity(s.queueSize),
		recalcqueue.WithBufferSize(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.recalcQueue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "gps canonicalization service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("metrics", len(s.registry.All())),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping gps canonicalization service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.store != nil {
		s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "gps canonicalization service stopped")
}

// ParseVendorFile parses and validates an uploaded export and proposes a
// mapping per column.
func (s *Service) ParseVendorFile(ctx context.Context, data []byte, filename string) (*ParseResult, error) {
	parsed, err := s.parser.Parse(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Metadata:    parsed.Metadata,
		Headers:     parsed.Headers,
		Players:     parsed.PlayerNames,
		Columns:     ingest.AnalyzeColumns(parsed.Headers, parsed.Rows),
		Validation:  ingest.Validate(parsed),
		Suggestions: make(map[string]suggest.Suggestion, len(parsed.Headers)),
	}

	for _, header := range parsed.Headers {
		if ingest.IsPlayerColumn(header) {
			continue
		}
		suggestion, err := s.suggester.Suggest(header)
		if err != nil {
			continue
		}
		result.Suggestions[header] = suggestion
	}

	return result, nil
}

// ParseFile parses an upload and returns the raw rows for ingestion.
func (s *Service) ParseFile(ctx context.Context, data []byte, filename string) (*ingest.ParsedFile, error) {
	return s.parser.Parse(ctx, data, filename)
}

// SuggestMapping proposes a canonical metric and display unit for one
// column header.
func (s *Service) SuggestMapping(header string) (suggest.Suggestion, error) {
	return s.suggester.Suggest(header)
}

// Convert converts a value between two units of a dimension.
func (s *Service) Convert(ctx context.Context, value float64, from, to, dimension string) (float64, error) {
	d := units.Dimension(dimension)
	if !units.IsDimension(d) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownDimension, dimension)
	}
	return s.converter.Convert(ctx, value, from, to, d)
}

// MetricCatalog returns the canonical metric registry in seed order.
func (s *Service) MetricCatalog() []canon.Metric {
	return s.registry.All()
}

// SaveProfile validates and persists a mapping profile under the identity
// guard.
func (s *Service) SaveProfile(ctx context.Context, in profile.SaveInput) (*repository.Profile, error) {
	return s.profiles.SaveProfile(ctx, in)
}

// GetProfile returns a stored profile.
func (s *Service) GetProfile(ctx context.Context, id string) (*repository.Profile, error) {
	return s.store.GetProfile(ctx, id)
}

// IngestReport canonicalizes a parsed vendor file through a profile and
// persists the report with its data batch.
func (s *Service) IngestReport(ctx context.Context, in IngestInput) (*repository.Report, error) {
	prof, err := s.store.GetProfile(ctx, in.ProfileID)
	if err != nil {
		return nil, err
	}

	report := &repository.Report{
		Name:            in.Name,
		ProfileID:       prof.ID,
		TeamID:          in.TeamID,
		EventID:         in.EventID,
		FileName:        in.FileName,
		ProfileSnapshot: prof.Columns,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	validation := ingest.Validate(in.File)
	if !validation.IsValid {
		message := validationMessage(validation)
		if err := s.store.MarkReportFailed(ctx, report.ID, message); err != nil {
			return nil, err
		}
		metrics.RecordReportIngested("failed")
		report.Status = repository.ReportFailed
		report.Error = message
		return report, fmt.Errorf("%w: %s", ErrValidationFailed, message)
	}

	rows, unresolved, err := s.canonicalize(ctx, prof, in)
	if err != nil {
		if failErr := s.store.MarkReportFailed(ctx, report.ID, err.Error()); failErr != nil {
			s.logger.Error(ctx, "marking report failed", logger.Error(failErr))
		}
		metrics.RecordReportIngested("failed")
		return nil, err
	}

	if err := s.store.SaveReportData(ctx, report.ID, rows); err != nil {
		metrics.RecordReportIngested("failed")
		return nil, err
	}
	if len(unresolved) > 0 {
		if err := s.store.SetUnresolvedPlayers(ctx, report.ID, unresolved); err != nil {
			return nil, err
		}
	}
	if err := s.store.IncrementProfileUsage(ctx, prof.ID); err != nil {
		s.logger.Warn(ctx, "incrementing profile usage", logger.Error(err))
	}

	metrics.RecordReportIngested("processed")
	metrics.RecordReportDataRows(len(rows))
	s.logger.Info(ctx, "report ingested",
		logger.String("report_id", report.ID),
		logger.String("profile_id", prof.ID),
		logger.Int("rows", len(rows)),
		logger.Int("unresolvedPlayers", len(unresolved)),
	)

	return s.store.GetReport(ctx, report.ID)
}

// canonicalize turns the parsed rows into canonical report data. Any cell
// that cannot be converted fails the whole batch. Rows whose player name has
// no caller decision and no confirmed match are left out of the batch; their
// names come back in the second return value for human follow-up.
func (s *Service) canonicalize(ctx context.Context, prof *repository.Profile, in IngestInput) ([]repository.ReportData, []string, error) {
	playerColumn := ingest.FindPlayerColumn(in.File.Headers)
	matcher := s.matcher(in.TeamID, prof.GpsSystem)

	players, err := s.store.PlayersByTeam(ctx, in.TeamID)
	if err != nil {
		return nil, nil, err
	}
	roster := make([]reconcile.Candidate, len(players))
	for i, p := range players {
		roster[i] = reconcile.Candidate{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	}

	resolved := make(map[string]string)
	seen := make(map[string]struct{})
	var unresolved []string
	var out []repository.ReportData

	for _, row := range in.File.Rows {
		if ingest.IsServiceRow(row) {
			metrics.RecordServiceRowSkipped()
			continue
		}

		name := strings.TrimSpace(row[playerColumn].Raw)
		if name == "" {
			continue
		}

		playerID, ok := resolved[name]
		if !ok {
			playerID = s.decidePlayer(ctx, matcher, name, prof.GpsSystem, roster, in)
			resolved[name] = playerID
		}
		if playerID == "" {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				unresolved = append(unresolved, name)
			}
			continue
		}

		for _, col := range prof.Columns {
			metric, err := s.registry.Lookup(col.CanonicalMetric)
			if err != nil {
				return nil, nil, err
			}
			if metric.Dimension == units.Identity {
				continue
			}

			cell := row[col.SourceColumn]
			if cell.IsEmpty() {
				continue
			}

			value, err := s.canonicalValue(ctx, metric, col, cell)
			if err != nil {
				return nil, nil, fmt.Errorf("row for %q, column %q: %w", name, col.SourceColumn, err)
			}

			out = append(out, repository.ReportData{
				PlayerID:        playerID,
				PlayerName:      name,
				CanonicalMetric: metric.Code,
				Value:           value,
				Unit:            metric.CanonicalUnit,
			})
		}
	}

	return out, unresolved, nil
}

// decidePlayer resolves a report name, preferring the caller's explicit
// decision over the matcher. Decisions match on the raw name first, then on
// its normalized form.
func (s *Service) decidePlayer(ctx context.Context, matcher reconcile.Matcher, name, gpsSystem string, roster []reconcile.Candidate, in IngestInput) string {
	if id, ok := in.PlayerMappings[name]; ok && id != "" {
		return id
	}
	normalized := reconcile.NormalizeName(name)
	for decided, id := range in.PlayerMappings {
		if id != "" && reconcile.NormalizeName(decided) == normalized {
			return id
		}
	}
	return s.resolvePlayer(ctx, matcher, name, roster, in.TeamID, gpsSystem)
}

// canonicalValue converts one cell into the metric's canonical unit. Time
// cells may arrive as clock strings; those are already seconds once parsed.
func (s *Service) canonicalValue(ctx context.Context, metric canon.Metric, col repository.ColumnMapping, cell ingest.Value) (float64, error) {
	if metric.Dimension == units.Time {
		if secs, ok := ingest.ClockSeconds(cell.Raw); ok {
			return secs, nil
		}
	}

	num, ok := cell.Float()
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrConversionFailed, cell.Raw)
	}

	from := col.SourceUnit
	if from == "" {
		from = metric.CanonicalUnit
	}
	value, err := s.converter.Convert(ctx, num, from, metric.CanonicalUnit, metric.Dimension)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	return value, nil
}

// resolvePlayer returns a roster player id for a report name, or empty when
// the name needs a human decision. Auto-confirmed fuzzy matches are
// persisted so the next upload short-circuits.
func (s *Service) resolvePlayer(ctx context.Context, matcher reconcile.Matcher, name string, roster []reconcile.Candidate, teamID, gpsSystem string) string {
	result, err := matcher.Resolve(ctx, name, roster)
	if err != nil {
		s.logger.Warn(ctx, "player resolution failed",
			logger.String("name", name),
			logger.Error(err),
		)
		return ""
	}
	if result.Action != reconcile.ActionConfirm || result.Suggested == nil {
		return ""
	}

	if result.Source == reconcile.SourceFuzzy {
		err := s.store.SaveMapping(ctx, &repository.PlayerMapping{
			ReportName:     name,
			NormalizedName: reconcile.NormalizeName(name),
			PlayerID:       result.Suggested.ID,
			TeamID:         teamID,
			GpsSystem:      gpsSystem,
			Confidence:     result.Confidence,
			MappingType:    "auto",
		})
		if err != nil {
			s.logger.Warn(ctx, "saving auto mapping", logger.String("name", name), logger.Error(err))
		}
	}

	return result.Suggested.ID
}

// GetReport returns a stored report.
func (s *Service) GetReport(ctx context.Context, id string) (*repository.Report, error) {
	return s.store.GetReport(ctx, id)
}

// GetReportData returns the canonicalized rows of a processed report.
func (s *Service) GetReportData(ctx context.Context, id string) ([]repository.ReportData, error) {
	return s.store.ReportData(ctx, id)
}

// AutoMatch resolves one report name against the team roster, honoring any
// saved mapping.
func (s *Service) AutoMatch(ctx context.Context, reportName, teamID, gpsSystem string) (reconcile.Result, error) {
	players, err := s.store.PlayersByTeam(ctx, teamID)
	if err != nil {
		return reconcile.Result{}, err
	}
	roster := make([]reconcile.Candidate, len(players))
	for i, p := range players {
		roster[i] = reconcile.Candidate{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	}
	return s.matcher(teamID, gpsSystem).Resolve(ctx, reportName, roster)
}

// SaveMapping persists a human player-name decision, replacing any previous
// one for the same key.
func (s *Service) SaveMapping(ctx context.Context, in SaveMappingInput) error {
	mappingType := in.MappingType
	if mappingType == "" {
		mappingType = "manual"
	}
	return s.store.SaveMapping(ctx, &repository.PlayerMapping{
		ReportName:     in.ReportName,
		NormalizedName: reconcile.NormalizeName(in.ReportName),
		PlayerID:       in.PlayerID,
		TeamID:         in.TeamID,
		GpsSystem:      in.GpsSystem,
		Confidence:     in.Confidence,
		MappingType:    mappingType,
	})
}

// matcher builds a fuzzy matcher scoped to one team and vendor system.
func (s *Service) matcher(teamID, gpsSystem string) reconcile.Matcher {
	return reconcile.New(
		reconcile.WithConfirmThreshold(s.confirmThreshold),
		reconcile.WithMappingSource(&mappingSource{store: s.store, teamID: teamID, gpsSystem: gpsSystem}),
		reconcile.WithLogger(s.logger),
	)
}

// NotifyRecalc enqueues a recalc job for a locked profile's appended keys.
func (s *Service) NotifyRecalc(ctx context.Context, profileID string, addedKeys []string) error {
	s.mu.RLock()
	queue := s.recalcQueue
	started := s.started
	s.mu.RUnlock()

	if !started || queue == nil {
		return ErrNotStarted
	}
	if !queue.Enqueue(ctx, recalcqueue.Job{ProfileID: profileID, AddedKeys: addedKeys}) {
		return fmt.Errorf("%w: recalc for profile %s", recalcqueue.ErrQueueFull, profileID)
	}
	return nil
}

// Recalculate re-derives report data for a profile's appended canonical
// keys. Only derived metrics can be recomputed from stored canonical data;
// plain vendor columns need a re-upload and are skipped.
func (s *Service) Recalculate(ctx context.Context, profileID string, addedKeys []string) error {
	reports, err := s.store.ReportsByProfile(ctx, profileID)
	if err != nil {
		return err
	}

	for _, key := range addedKeys {
		metric, err := s.registry.Lookup(profile.MetricFromKey(key))
		if err != nil {
			s.logger.Warn(ctx, "recalc for unknown metric", logger.String("key", key))
			continue
		}
		if !metric.IsDerived {
			s.logger.Debug(ctx, "skipping non-derived metric in recalc",
				logger.String("metric", metric.Code))
			continue
		}

		for i := range reports {
			report := &reports[i]
			if report.Status != repository.ReportProcessed {
				continue
			}
			if err := s.deriveMetric(ctx, report, metric); err != nil {
				return err
			}
		}
	}
	return nil
}

// deriveMetric appends rows for one derived metric to an already processed
// report, computed from the canonical rows it stores.
func (s *Service) deriveMetric(ctx context.Context, report *repository.Report, metric canon.Metric) error {
	rows, err := s.store.ReportData(ctx, report.ID)
	if err != nil {
		return err
	}

	type inputs struct {
		distance float64
		duration float64
		hasDist  bool
		hasDur   bool
		hasMet   bool
		playerID string
	}
	byPlayer := make(map[string]*inputs)
	order := make([]string, 0)
	for _, row := range rows {
		agg, ok := byPlayer[row.PlayerName]
		if !ok {
			agg = &inputs{playerID: row.PlayerID}
			byPlayer[row.PlayerName] = agg
			order = append(order, row.PlayerName)
		}
		switch row.CanonicalMetric {
		case "total_distance":
			agg.distance = row.Value
			agg.hasDist = true
		case "duration":
			agg.duration = row.Value
			agg.hasDur = true
		case metric.Code:
			agg.hasMet = true
		}
	}

	added := 0
	for _, name := range order {
		agg := byPlayer[name]
		if agg.hasMet || !agg.hasDist || !agg.hasDur || agg.duration <= 0 {
			continue
		}

		// Meters per minute from canonical meters and seconds, then into
		// the metric's canonical speed unit.
		perMin := agg.distance / (agg.duration / 60)
		value, err := s.converter.Convert(ctx, perMin, "m/min", metric.CanonicalUnit, metric.Dimension)
		if err != nil {
			return fmt.Errorf("derive %s: %w", metric.Code, err)
		}

		rows = append(rows, repository.ReportData{
			PlayerID:        agg.playerID,
			PlayerName:      name,
			CanonicalMetric: metric.Code,
			Value:           value,
			Unit:            metric.CanonicalUnit,
		})
		added++
	}

	if added == 0 {
		return nil
	}
	if err := s.store.SaveReportData(ctx, report.ID, rows); err != nil {
		return err
	}
	metrics.RecordReportDataRows(added)
	s.logger.Info(ctx, "derived metric recalculated",
		logger.String("report_id", report.ID),
		logger.String("metric", metric.Code),
		logger.Int("rows", added),
	)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"confirmThreshold": s.confirmThreshold,
	}

	if s.started {
		stats["queueLength"] = s.recalcQueue.Len(context.Background())
		stats["metricCount"] = len(s.registry.All())
	}

	return stats
}

// validationMessage flattens a validation report into one failure message.
func validationMessage(report *ingest.Report) string {
	if len(report.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(report.Errors))
	for _, issue := range report.Errors {
		parts = append(parts, issue.Message)
	}
	const maxParts = 5
	if len(parts) > maxParts {
		parts = append(parts[:maxParts], fmt.Sprintf("and %d more", len(parts)-maxParts))
	}
	return strings.Join(parts, "; ")
}

// mappingSource adapts the mapping store to the reconciler, scoped to one
// team and vendor system.
type mappingSource struct {
	store     repository.MappingStore
	teamID    string
	gpsSystem string
}

func (ms *mappingSource) ActiveMapping(ctx context.Context, reportName string) (*reconcile.SavedMapping, error) {
	m, err := ms.store.ActiveMapping(ctx, ms.teamID, ms.gpsSystem, reconcile.NormalizeName(reportName))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return &reconcile.SavedMapping{ID: m.ID, PlayerID: m.PlayerID, Confidence: m.Confidence}, nil
}
