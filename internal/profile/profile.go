// Package profile saves GPS mapping profiles with an identity guard: once a
// profile has processed reports, its existing rows keep their identity. Rows
// may be appended and presentation fields edited, but removing or re-keying
// a row that reports depend on is rejected.
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/clubops/gpscanon/internal/adapters/repository"
	"github.com/clubops/gpscanon/internal/domain/canon"
	"github.com/clubops/gpscanon/pkg/logger"
	"github.com/clubops/gpscanon/pkg/metrics"
)

// keySeparator joins the two halves of a row identity key. It must not occur
// in metric codes or vendor column names.
const keySeparator = "__@@__"

// RowKey is the identity of one mapping row. Display fields do not
// participate; only the metric and the source column do.
func RowKey(canonicalMetric, sourceColumn string) string {
	return strings.ToLower(strings.TrimSpace(canonicalMetric)) +
		keySeparator +
		strings.ToLower(strings.TrimSpace(sourceColumn))
}

// MetricFromKey returns the canonical metric half of a row identity key.
func MetricFromKey(key string) string {
	metric, _, _ := strings.Cut(key, keySeparator)
	return metric
}

// LockState captures whether a stored profile's rows are frozen and which
// row keys the freeze covers.
type LockState struct {
	Locked       bool
	SnapshotKeys map[string]struct{}
}

// lockState derives the guard state from the stored profile. A profile is
// locked as soon as one report has been processed with it.
func lockState(p *repository.Profile) LockState {
	state := LockState{
		Locked:       p.UsageCount > 0,
		SnapshotKeys: make(map[string]struct{}, len(p.Columns)),
	}
	for _, col := range p.Columns {
		state.SnapshotKeys[RowKey(col.CanonicalMetric, col.SourceColumn)] = struct{}{}
	}
	return state
}

// SaveInput is one profile save request. An empty ID creates a new profile;
// a set ID updates the stored one under the guard.
type SaveInput struct {
	ID                  string                     `json:"id,omitempty"`
	Name                string                     `json:"name"`
	GpsSystem           string                     `json:"gpsSystem"`
	Columns             []repository.ColumnMapping `json:"columns"`
	HiddenCanonicalKeys []string                   `json:"hiddenCanonicalKeys,omitempty"`
}

// RecalcNotifier is told when new canonical keys are appended to a locked
// profile, so existing reports can be recalculated for the added metrics.
type RecalcNotifier interface {
	NotifyRecalc(ctx context.Context, profileID string, addedKeys []string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the recalc notifier.
func WithNotifier(n RecalcNotifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// Engine validates and persists mapping profiles.
type Engine struct {
	registry *canon.Registry
	store    repository.ProfileStore
	notifier RecalcNotifier
	log      logger.Logger
}

// New creates an Engine over the given registry and store.
func New(registry *canon.Registry, store repository.ProfileStore, opts ...Option) *Engine {
	e := &Engine{registry: registry, store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SaveProfile validates the rows and persists the profile. Updates run the
// guard check and the write in the same store transaction, so a conflicting
// concurrent save cannot slip a removed row past the check.
func (e *Engine) SaveProfile(ctx context.Context, in SaveInput) (*repository.Profile, error) {
	if err := e.validateColumns(in.Columns); err != nil {
		metrics.RecordProfileSaved("rejected")
		return nil, err
	}

	if in.ID == "" {
		return e.create(ctx, in)
	}
	return e.update(ctx, in)
}

func (e *Engine) create(ctx context.Context, in SaveInput) (*repository.Profile, error) {
	p := &repository.Profile{
		Name:                in.Name,
		GpsSystem:           in.GpsSystem,
		Columns:             in.Columns,
		HiddenCanonicalKeys: in.HiddenCanonicalKeys,
	}
	if err := e.store.CreateProfile(ctx, p); err != nil {
		metrics.RecordProfileSaved("rejected")
		return nil, fmt.Errorf("create profile: %w", err)
	}
	metrics.RecordProfileSaved("created")
	if e.log != nil {
		e.log.Info(ctx, "profile created",
			logger.String("profile_id", p.ID),
			logger.String("gps_system", p.GpsSystem),
			logger.Int("columns", len(p.Columns)))
	}
	return p, nil
}

func (e *Engine) update(ctx context.Context, in SaveInput) (*repository.Profile, error) {
	var (
		locked    bool
		addedKeys []string
	)

	updated, err := e.store.UpdateProfile(ctx, in.ID, func(p *repository.Profile) error {
		state := lockState(p)
		locked = state.Locked

		newKeys := make(map[string]struct{}, len(in.Columns))
		for _, col := range in.Columns {
			newKeys[RowKey(col.CanonicalMetric, col.SourceColumn)] = struct{}{}
		}

		if state.Locked {
			// The gps system re-interprets every stored report mapped
			// through the profile, so it freezes with the rows.
			if !strings.EqualFold(strings.TrimSpace(in.GpsSystem), strings.TrimSpace(p.GpsSystem)) {
				metrics.RecordGuardViolation()
				return fmt.Errorf("%w: gps system %q", ErrProfileGuardViolation, p.GpsSystem)
			}
			for key := range state.SnapshotKeys {
				if _, ok := newKeys[key]; !ok {
					metrics.RecordGuardViolation()
					return fmt.Errorf("%w: %s", ErrProfileGuardViolation, key)
				}
			}
		}

		addedKeys = addedKeys[:0]
		for key := range newKeys {
			if _, ok := state.SnapshotKeys[key]; !ok {
				addedKeys = append(addedKeys, key)
			}
		}

		p.Name = in.Name
		p.GpsSystem = in.GpsSystem
		p.Columns = in.Columns
		p.HiddenCanonicalKeys = in.HiddenCanonicalKeys
		return nil
	})
	if err != nil {
		metrics.RecordProfileSaved("rejected")
		return nil, err
	}

	metrics.RecordProfileSaved("updated")
	if e.log != nil {
		e.log.Info(ctx, "profile updated",
			logger.String("profile_id", updated.ID),
			logger.Bool("locked", locked),
			logger.Int("added_keys", len(addedKeys)))
	}

	if locked && len(addedKeys) > 0 && e.notifier != nil {
		if err := e.notifier.NotifyRecalc(ctx, updated.ID, addedKeys); err != nil {
			if e.log != nil {
				e.log.Warn(ctx, "recalc notification failed",
					logger.String("profile_id", updated.ID),
					logger.Error(err))
			}
		}
	}
	return updated, nil
}

// validateColumns checks every row against the registry before any write.
func (e *Engine) validateColumns(cols []repository.ColumnMapping) error {
	if len(cols) == 0 {
		return ErrEmptyProfile
	}

	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		m, err := e.registry.Lookup(col.CanonicalMetric)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.SourceColumn, err)
		}

		key := strings.ToLower(strings.TrimSpace(col.CanonicalMetric))
		if _, ok := seen[key]; ok {
			metrics.RecordDuplicateKey()
			return fmt.Errorf("%w: %s", ErrDuplicateCanonicalKey, key)
		}
		seen[key] = struct{}{}

		if col.DisplayUnit != "" && !m.SupportsUnit(col.DisplayUnit) {
			return fmt.Errorf("%w: %s for %s", ErrUnsupportedDisplayUnit, col.DisplayUnit, m.Code)
		}
		if col.SourceUnit != "" && !m.SupportsUnit(col.SourceUnit) {
			return fmt.Errorf("%w: %s for %s", ErrUnsupportedSourceUnit, col.SourceUnit, m.Code)
		}
	}
	return nil
}
