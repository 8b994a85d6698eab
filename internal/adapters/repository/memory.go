package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used by tests and standalone runs.
type Memory struct {
	mu       sync.RWMutex
	closed   bool
	profiles map[string]*Profile
	reports  map[string]*Report
	data     map[string][]ReportData
	players  map[string][]Player
	mappings []*PlayerMapping
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*Profile),
		reports:  make(map[string]*Report),
		data:     make(map[string][]ReportData),
		players:  make(map[string][]Player),
	}
}

func (m *Memory) CreateProfile(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := m.profiles[p.ID]; ok {
		return fmt.Errorf("%w: profile %s", ErrConflict, p.ID)
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.profiles[p.ID] = cloneProfile(p)
	return nil
}

func (m *Memory) UpdateProfile(_ context.Context, id string, mutate func(*Profile) error) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	stored, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	working := cloneProfile(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now()
	m.profiles[id] = working
	return cloneProfile(working), nil
}

func (m *Memory) GetProfile(_ context.Context, id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	stored, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	return cloneProfile(stored), nil
}

func (m *Memory) IncrementProfileUsage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	stored, ok := m.profiles[id]
	if !ok {
		return fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	stored.UsageCount++
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) CreateReport(_ context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, ok := m.reports[r.ID]; ok {
		return fmt.Errorf("%w: report %s", ErrConflict, r.ID)
	}
	if r.Status == "" {
		r.Status = ReportUploaded
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.reports[r.ID] = cloneReport(r)
	return nil
}

func (m *Memory) GetReport(_ context.Context, id string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	stored, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	return cloneReport(stored), nil
}

func (m *Memory) ReportsByProfile(_ context.Context, profileID string) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	var out []Report
	for _, r := range m.reports {
		if r.ProfileID == profileID {
			out = append(out, *cloneReport(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveReportData(_ context.Context, reportID string, rows []ReportData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	report, ok := m.reports[reportID]
	if !ok {
		return fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}
	batch := make([]ReportData, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		row.ReportID = reportID
		batch[i] = row
	}
	m.data[reportID] = batch
	report.Status = ReportProcessed
	report.Error = ""
	report.RowCount = len(batch)
	report.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) SetUnresolvedPlayers(_ context.Context, reportID string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	report, ok := m.reports[reportID]
	if !ok {
		return fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}
	report.UnresolvedPlayers = append([]string(nil), names...)
	report.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) MarkReportFailed(_ context.Context, reportID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	report, ok := m.reports[reportID]
	if !ok {
		return fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}
	report.Status = ReportFailed
	report.Error = message
	report.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) ReportData(_ context.Context, reportID string) ([]ReportData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	if _, ok := m.reports[reportID]; !ok {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, reportID)
	}
	rows := make([]ReportData, len(m.data[reportID]))
	copy(rows, m.data[reportID])
	return rows, nil
}

func (m *Memory) PlayersByTeam(_ context.Context, teamID string) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	roster := make([]Player, len(m.players[teamID]))
	copy(roster, m.players[teamID])
	return roster, nil
}

func (m *Memory) UpsertPlayer(_ context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	roster := m.players[p.TeamID]
	for i := range roster {
		if roster[i].ID == p.ID {
			roster[i] = *p
			return nil
		}
	}
	m.players[p.TeamID] = append(roster, *p)
	return nil
}

func (m *Memory) ActiveMapping(_ context.Context, teamID, gpsSystem, normalizedName string) (*PlayerMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}
	for _, mapping := range m.mappings {
		if mapping.IsActive &&
			mapping.TeamID == teamID &&
			mapping.GpsSystem == gpsSystem &&
			mapping.NormalizedName == normalizedName {
			clone := *mapping
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *Memory) SaveMapping(_ context.Context, mapping *PlayerMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	now := time.Now()
	for _, existing := range m.mappings {
		if existing.IsActive &&
			existing.TeamID == mapping.TeamID &&
			existing.GpsSystem == mapping.GpsSystem &&
			existing.NormalizedName == mapping.NormalizedName {
			existing.IsActive = false
			existing.UpdatedAt = now
		}
	}
	if mapping.ID == "" {
		mapping.ID = uuid.NewString()
	}
	mapping.IsActive = true
	mapping.CreatedAt = now
	mapping.UpdatedAt = now
	clone := *mapping
	m.mappings = append(m.mappings, &clone)
	return nil
}

// Mappings returns every stored mapping for a team, active first, newest
// first within each group.
func (m *Memory) Mappings(teamID string) []PlayerMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []PlayerMapping
	for _, mapping := range m.mappings {
		if mapping.TeamID == teamID {
			out = append(out, *mapping)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func cloneProfile(p *Profile) *Profile {
	clone := *p
	clone.Columns = append([]ColumnMapping(nil), p.Columns...)
	clone.HiddenCanonicalKeys = append([]string(nil), p.HiddenCanonicalKeys...)
	return &clone
}

func cloneReport(r *Report) *Report {
	clone := *r
	clone.ProfileSnapshot = append([]ColumnMapping(nil), r.ProfileSnapshot...)
	clone.UnresolvedPlayers = append([]string(nil), r.UnresolvedPlayers...)
	return &clone
}
