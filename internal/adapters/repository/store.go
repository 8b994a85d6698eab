// Package repository defines the persistence entities and store interfaces
// for profiles, reports and player mappings, with in-memory and Postgres
// implementations.
package repository

import (
	"context"
	"time"
)

// Report lifecycle states.
const (
	ReportUploaded  = "uploaded"
	ReportProcessed = "processed"
	ReportFailed    = "failed"
)

// ColumnMapping binds one vendor column to a canonical metric. SourceUnit is
// the unit the vendor column arrives in; DisplayUnit is presentation only.
type ColumnMapping struct {
	CanonicalMetric string `json:"canonicalMetric"`
	SourceColumn    string `json:"sourceColumn"`
	SourceUnit      string `json:"sourceUnit"`
	DisplayName     string `json:"displayName"`
	DisplayUnit     string `json:"displayUnit"`
	Order           int    `json:"order"`
	Description     string `json:"description,omitempty"`
}

// Profile is a named set of column mappings for one vendor export layout.
type Profile struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	GpsSystem           string          `json:"gpsSystem"`
	Columns             []ColumnMapping `json:"columns"`
	HiddenCanonicalKeys []string        `json:"hiddenCanonicalKeys,omitempty"`
	UsageCount          int             `json:"usageCount"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Report is one ingested vendor file. ProfileSnapshot preserves the column
// mappings exactly as they were at ingest time. UnresolvedPlayers lists the
// report names whose rows were held back pending a human decision.
type Report struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	ProfileID         string          `json:"profileId"`
	TeamID            string          `json:"teamId"`
	EventID           string          `json:"eventId,omitempty"`
	FileName          string          `json:"fileName"`
	Status            string          `json:"status"`
	Error             string          `json:"error,omitempty"`
	ProfileSnapshot   []ColumnMapping `json:"profileSnapshot"`
	UnresolvedPlayers []string        `json:"unresolvedPlayers,omitempty"`
	RowCount          int             `json:"rowCount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ReportData is one canonicalized cell of a processed report. Value is in
// the metric's canonical unit.
type ReportData struct {
	ID              string  `json:"id"`
	ReportID        string  `json:"reportId"`
	PlayerID        string  `json:"playerId,omitempty"`
	PlayerName      string  `json:"playerName"`
	CanonicalMetric string  `json:"canonicalMetric"`
	Value           float64 `json:"value"`
	Unit            string  `json:"unit"`
}

// Player is one roster entry.
type Player struct {
	ID        string `json:"id"`
	TeamID    string `json:"teamId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// PlayerMapping is a persisted name-to-player decision. Only one active
// mapping exists per (team, gps system, normalized name).
type PlayerMapping struct {
	ID             string    `json:"id"`
	ReportName     string    `json:"reportName"`
	NormalizedName string    `json:"normalizedName"`
	PlayerID       string    `json:"playerId"`
	TeamID         string    `json:"teamId"`
	GpsSystem      string    `json:"gpsSystem"`
	Confidence     float64   `json:"confidence"`
	MappingType    string    `json:"mappingType"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProfileStore persists mapping profiles. UpdateProfile applies mutate to
// the stored profile atomically; returning an error from mutate aborts the
// write and surfaces that error unchanged.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	UpdateProfile(ctx context.Context, id string, mutate func(*Profile) error) (*Profile, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
	IncrementProfileUsage(ctx context.Context, id string) error
}

// ReportStore persists reports and their canonicalized data. SaveReportData
// writes the batch all-or-nothing and marks the report processed.
type ReportStore interface {
	CreateReport(ctx context.Context, r *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ReportsByProfile(ctx context.Context, profileID string) ([]Report, error)
	SaveReportData(ctx context.Context, reportID string, rows []ReportData) error
	SetUnresolvedPlayers(ctx context.Context, reportID string, names []string) error
	MarkReportFailed(ctx context.Context, reportID, message string) error
	ReportData(ctx context.Context, reportID string) ([]ReportData, error)
}

// PlayerStore reads the club roster.
type PlayerStore interface {
	PlayersByTeam(ctx context.Context, teamID string) ([]Player, error)
	UpsertPlayer(ctx context.Context, p *Player) error
}

// MappingStore persists player name decisions. SaveMapping deactivates any
// previous mapping for the same key before inserting the new one.
type MappingStore interface {
	ActiveMapping(ctx context.Context, teamID, gpsSystem, normalizedName string) (*PlayerMapping, error)
	SaveMapping(ctx context.Context, m *PlayerMapping) error
}

// Store aggregates every persistence concern.
type Store interface {
	ProfileStore
	ReportStore
	PlayerStore
	MappingStore

	// Close releases the underlying resources.
	Close()
}
