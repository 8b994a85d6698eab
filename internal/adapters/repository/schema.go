package repository

import (
	"context"
	"fmt"
)

// Schema contains the SQL statements creating the store's tables and indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS gps_profiles (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    gps_system  TEXT NOT NULL,
    columns     JSONB NOT NULL DEFAULT '[]',
    hidden_keys JSONB NOT NULL DEFAULT '[]',
    usage_count INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS gps_reports (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL,
    profile_id UUID NOT NULL REFERENCES gps_profiles(id),
    team_id    TEXT NOT NULL,
    event_id   TEXT NOT NULL DEFAULT '',
    file_name  TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'uploaded',
    error      TEXT NOT NULL DEFAULT '',
    snapshot   JSONB NOT NULL DEFAULT '[]',
    unresolved JSONB NOT NULL DEFAULT '[]',
    row_count  INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS gps_report_data (
    id               UUID PRIMARY KEY,
    report_id        UUID NOT NULL REFERENCES gps_reports(id) ON DELETE CASCADE,
    player_id        TEXT,
    player_name      TEXT NOT NULL,
    canonical_metric TEXT NOT NULL,
    value            DOUBLE PRECISION NOT NULL,
    unit             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_data_report ON gps_report_data(report_id);

CREATE TABLE IF NOT EXISTS players (
    id         TEXT PRIMARY KEY,
    team_id    TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_players_team ON players(team_id);

CREATE TABLE IF NOT EXISTS player_mappings (
    id              UUID PRIMARY KEY,
    report_name     TEXT NOT NULL,
    normalized_name TEXT NOT NULL,
    player_id       TEXT NOT NULL,
    team_id         TEXT NOT NULL,
    gps_system      TEXT NOT NULL,
    confidence      DOUBLE PRECISION NOT NULL,
    mapping_type    TEXT NOT NULL,
    is_active       BOOLEAN NOT NULL DEFAULT true,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_mappings_lookup
    ON player_mappings(team_id, gps_system, normalized_name) WHERE is_active;
`

// EnsureSchema creates the tables and indexes when they do not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
