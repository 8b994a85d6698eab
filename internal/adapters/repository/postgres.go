package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubops/gpscanon/pkg/metrics"
)

const (
	sqlInsertProfile = `
		INSERT INTO gps_profiles (id, name, gps_system, columns, hidden_keys, usage_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, now(), now())`

	sqlSelectProfile = `
		SELECT id, name, gps_system, columns, hidden_keys, usage_count, created_at, updated_at
		FROM gps_profiles WHERE id = $1`

	sqlSelectProfileForUpdate = sqlSelectProfile + ` FOR UPDATE`

	sqlUpdateProfile = `
		UPDATE gps_profiles
		SET name = $2, gps_system = $3, columns = $4, hidden_keys = $5, updated_at = now()
		WHERE id = $1`

	sqlIncrementProfileUsage = `
		UPDATE gps_profiles SET usage_count = usage_count + 1, updated_at = now() WHERE id = $1`

	sqlInsertReport = `
		INSERT INTO gps_reports (id, name, profile_id, team_id, event_id, file_name, status, error, snapshot, row_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8, 0, now(), now())`

	sqlSelectReport = `
		SELECT id, name, profile_id, team_id, event_id, file_name, status, error, snapshot, unresolved, row_count, created_at, updated_at
		FROM gps_reports WHERE id = $1`

	sqlSelectReportsByProfile = `
		SELECT id, name, profile_id, team_id, event_id, file_name, status, error, snapshot, unresolved, row_count, created_at, updated_at
		FROM gps_reports WHERE profile_id = $1 ORDER BY created_at`

	sqlUpdateReportProcessed = `
		UPDATE gps_reports SET status = $2, error = '', row_count = $3, updated_at = now() WHERE id = $1`

	sqlUpdateReportUnresolved = `
		UPDATE gps_reports SET unresolved = $2, updated_at = now() WHERE id = $1`

	sqlUpdateReportFailed = `
		UPDATE gps_reports SET status = $2, error = $3, updated_at = now() WHERE id = $1`

	sqlDeleteReportData = `DELETE FROM gps_report_data WHERE report_id = $1`

	sqlInsertReportData = `
		INSERT INTO gps_report_data (id, report_id, player_id, player_name, canonical_metric, value, unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	sqlSelectReportData = `
		SELECT id, report_id, player_id, player_name, canonical_metric, value, unit
		FROM gps_report_data WHERE report_id = $1 ORDER BY player_name, canonical_metric`

	sqlSelectPlayersByTeam = `
		SELECT id, team_id, first_name, last_name FROM players WHERE team_id = $1 ORDER BY last_name, first_name`

	sqlUpsertPlayer = `
		INSERT INTO players (id, team_id, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET team_id = $2, first_name = $3, last_name = $4`

	sqlSelectActiveMapping = `
		SELECT id, report_name, normalized_name, player_id, team_id, gps_system, confidence, mapping_type, is_active, created_at, updated_at
		FROM player_mappings
		WHERE team_id = $1 AND gps_system = $2 AND normalized_name = $3 AND is_active
		LIMIT 1`

	sqlDeactivateMappings = `
		UPDATE player_mappings SET is_active = false, updated_at = now()
		WHERE team_id = $1 AND gps_system = $2 AND normalized_name = $3 AND is_active`

	sqlInsertMapping = `
		INSERT INTO player_mappings (id, report_name, normalized_name, player_id, team_id, gps_system, confidence, mapping_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, now(), now())`
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool to the given DSN and verifies connectivity.
func NewPostgres(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	var c pgConfig
	for _, opt := range opts {
		opt(&c)
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if c.maxConns > 0 {
		poolCfg.MaxConns = c.maxConns
	}
	if c.connectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = c.connectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) CreateProfile(ctx context.Context, p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	columns, hidden, err := marshalProfileFields(p)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = s.pool.Exec(ctx, sqlInsertProfile, p.ID, p.Name, p.GpsSystem, columns, hidden)
	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// UpdateProfile locks the row, applies mutate and writes the result in one
// transaction. Usage count changes made by mutate are not persisted; only
// name, system, columns and hidden keys are written back.
func (s *Postgres) UpdateProfile(ctx context.Context, id string, mutate func(*Profile) error) (*Profile, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds())) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	profile, err := scanProfile(tx.QueryRow(ctx, sqlSelectProfileForUpdate, id))
	if err != nil {
		return nil, err
	}
	if err := mutate(profile); err != nil {
		return nil, err
	}

	columns, hidden, err := marshalProfileFields(profile)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, sqlUpdateProfile, profile.ID, profile.Name, profile.GpsSystem, columns, hidden); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return profile, nil
}

func (s *Postgres) GetProfile(ctx context.Context, id string) (*Profile, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()
	return scanProfile(s.pool.QueryRow(ctx, sqlSelectProfile, id))
}

func (s *Postgres) IncrementProfileUsage(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, sqlIncrementProfileUsage, id)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	return nil
}

func (s *Postgres) CreateReport(ctx context.Context, r *Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = ReportUploaded
	}
	snapshot, err := json.Marshal(r.ProfileSnapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	start := time.Now()
	_, err = s.pool.Exec(ctx, sqlInsertReport, r.ID, r.Name, r.ProfileID, r.TeamID, r.EventID, r.FileName, r.Status, snapshot)
	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (s *Postgres) GetReport(ctx context.Context, id string) (*Report, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	r, err := scanReport(s.pool.QueryRow(ctx, sqlSelectReport, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Postgres) ReportsByProfile(ctx context.Context, profileID string) ([]Report, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.pool.Query(ctx, sqlSelectReportsByProfile, profileID)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// SaveReportData replaces the report's rows and marks it processed, all in
// one transaction.
func (s *Postgres) SaveReportData(ctx context.Context, reportID string, rows []ReportData) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds())) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sqlDeleteReportData, reportID); err != nil {
		return fmt.Errorf("clear report data: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		id := row.ID
		if id == "" {
			id = uuid.NewString()
		}
		batch.Queue(sqlInsertReportData, id, reportID, nullable(row.PlayerID), row.PlayerName, row.CanonicalMetric, row.Value, row.Unit)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert report data: %w", err)
	}

	if _, err := tx.Exec(ctx, sqlUpdateReportProcessed, reportID, ReportProcessed, len(rows)); err != nil {
		return fmt.Errorf("mark report processed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Postgres) SetUnresolvedPlayers(ctx context.Context, reportID string, names []string) error {
	payload, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshal unresolved players: %w", err)
	}
	start := time.Now()
	tag, err := s.pool.Exec(ctx, sqlUpdateReportUnresolved, reportID, payload)
	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("set unresolved players: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}
	return nil
}

func (s *Postgres) MarkReportFailed(ctx context.Context, reportID, message string) error {
	tag, err := s.pool.Exec(ctx, sqlUpdateReportFailed, reportID, ReportFailed, message)
	if err != nil {
		return fmt.Errorf("mark report failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}
	return nil
}

func (s *Postgres) ReportData(ctx context.Context, reportID string) ([]ReportData, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.pool.Query(ctx, sqlSelectReportData, reportID)
	if err != nil {
		return nil, fmt.Errorf("select report data: %w", err)
	}
	defer rows.Close()

	var out []ReportData
	for rows.Next() {
		var (
			d        ReportData
			playerID *string
		)
		if err := rows.Scan(&d.ID, &d.ReportID, &playerID, &d.PlayerName, &d.CanonicalMetric, &d.Value, &d.Unit); err != nil {
			return nil, fmt.Errorf("scan report data: %w", err)
		}
		if playerID != nil {
			d.PlayerID = *playerID
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report data: %w", err)
	}
	return out, nil
}

func (s *Postgres) PlayersByTeam(ctx context.Context, teamID string) ([]Player, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	rows, err := s.pool.Query(ctx, sqlSelectPlayersByTeam, teamID)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var roster []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.FirstName, &p.LastName); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		roster = append(roster, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return roster, nil
}

func (s *Postgres) UpsertPlayer(ctx context.Context, p *Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, err := s.pool.Exec(ctx, sqlUpsertPlayer, p.ID, p.TeamID, p.FirstName, p.LastName); err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}

func (s *Postgres) ActiveMapping(ctx context.Context, teamID, gpsSystem, normalizedName string) (*PlayerMapping, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var m PlayerMapping
	err := s.pool.QueryRow(ctx, sqlSelectActiveMapping, teamID, gpsSystem, normalizedName).Scan(
		&m.ID, &m.ReportName, &m.NormalizedName, &m.PlayerID, &m.TeamID, &m.GpsSystem,
		&m.Confidence, &m.MappingType, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select mapping: %w", err)
	}
	return &m, nil
}

// SaveMapping deactivates the previous decision for the same key and inserts
// the new one in a single transaction.
func (s *Postgres) SaveMapping(ctx context.Context, m *PlayerMapping) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds())) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sqlDeactivateMappings, m.TeamID, m.GpsSystem, m.NormalizedName); err != nil {
		return fmt.Errorf("deactivate mappings: %w", err)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, err := tx.Exec(ctx, sqlInsertMapping, m.ID, m.ReportName, m.NormalizedName, m.PlayerID, m.TeamID, m.GpsSystem, m.Confidence, m.MappingType); err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	m.IsActive = true
	return nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var (
		p       Profile
		columns []byte
		hidden  []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.GpsSystem, &columns, &hidden, &p.UsageCount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	if len(columns) > 0 {
		if err := json.Unmarshal(columns, &p.Columns); err != nil {
			return nil, fmt.Errorf("unmarshal columns: %w", err)
		}
	}
	if len(hidden) > 0 {
		if err := json.Unmarshal(hidden, &p.HiddenCanonicalKeys); err != nil {
			return nil, fmt.Errorf("unmarshal hidden keys: %w", err)
		}
	}
	return &p, nil
}

func scanReport(row rowScanner) (*Report, error) {
	var (
		r          Report
		snapshot   []byte
		unresolved []byte
	)
	err := row.Scan(&r.ID, &r.Name, &r.ProfileID, &r.TeamID, &r.EventID, &r.FileName, &r.Status, &r.Error,
		&snapshot, &unresolved, &r.RowCount, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &r.ProfileSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	if len(unresolved) > 0 {
		if err := json.Unmarshal(unresolved, &r.UnresolvedPlayers); err != nil {
			return nil, fmt.Errorf("unmarshal unresolved players: %w", err)
		}
	}
	return &r, nil
}

func marshalProfileFields(p *Profile) (columns, hidden []byte, err error) {
	columns, err = json.Marshal(p.Columns)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal columns: %w", err)
	}
	hidden, err = json.Marshal(p.HiddenCanonicalKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal hidden keys: %w", err)
	}
	return columns, hidden, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
