// Package reconcile resolves player names found in vendor files against the
// club roster. Saved human decisions always win over fuzzy matching.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/clubops/gpscanon/pkg/logger"
	"github.com/clubops/gpscanon/pkg/metrics"
)

// minCandidateScore filters out roster players too dissimilar to rank.
const minCandidateScore = 0.3

// defaultConfirmThreshold is the score above which a fuzzy match is
// auto-confirmed without human review.
const defaultConfirmThreshold = 0.80

// Action is the recommended handling for one report name.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCreate  Action = "create"
	ActionManual  Action = "manual"
	ActionSkip    Action = "skip"
)

// Source records where a resolution came from.
type Source string

const (
	SourceSaved Source = "saved"
	SourceFuzzy Source = "fuzzy"
)

// Candidate is one roster player offered to the matcher.
type Candidate struct {
	ID        string
	FirstName string
	LastName  string
}

// FullName joins the candidate's name parts.
func (c Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Match pairs a candidate with its similarity score.
type Match struct {
	Candidate Candidate
	Score     float64
}

// Result is the matcher's recommendation for one report name.
type Result struct {
	ReportName   string     `json:"reportName"`
	Suggested    *Candidate `json:"suggested,omitempty"`
	Confidence   float64    `json:"confidence"`
	Alternatives []Match    `json:"-"`
	Action       Action     `json:"action"`
	MappingID    string     `json:"mappingId,omitempty"`
	Source       Source     `json:"source,omitempty"`
}

// SavedMapping is a previously confirmed name-to-player decision.
type SavedMapping struct {
	ID         string
	PlayerID   string
	Confidence float64
}

// MappingSource looks up the active saved mapping for a report name.
// A nil mapping with nil error means no decision is on file.
type MappingSource interface {
	ActiveMapping(ctx context.Context, reportName string) (*SavedMapping, error)
}

// Matcher resolves report names against a roster.
type Matcher interface {
	Resolve(ctx context.Context, reportName string, roster []Candidate) (Result, error)
}

// Option configures a FuzzyMatcher.
type Option func(*FuzzyMatcher)

// WithConfirmThreshold overrides the auto-confirm score threshold.
func WithConfirmThreshold(threshold float64) Option {
	return func(m *FuzzyMatcher) {
		if threshold >= 0 && threshold <= 1 {
			m.confirmThreshold = threshold
		}
	}
}

// WithMappingSource enables the saved-mapping fast path.
func WithMappingSource(source MappingSource) Option {
	return func(m *FuzzyMatcher) {
		m.mappings = source
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(m *FuzzyMatcher) {
		m.log = log
	}
}

// FuzzyMatcher is the built-in Matcher.
type FuzzyMatcher struct {
	confirmThreshold float64
	mappings         MappingSource
	log              logger.Logger
}

// New creates a FuzzyMatcher with the default confirm threshold.
func New(opts ...Option) *FuzzyMatcher {
	m := &FuzzyMatcher{confirmThreshold: defaultConfirmThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve recommends a roster player for the given report name. A saved
// mapping whose player is still on the roster short-circuits fuzzy matching.
func (m *FuzzyMatcher) Resolve(ctx context.Context, reportName string, roster []Candidate) (Result, error) {
	if strings.TrimSpace(reportName) == "" {
		return Result{}, ErrEmptyName
	}

	if m.mappings != nil {
		saved, err := m.mappings.ActiveMapping(ctx, reportName)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrMappingLookup, err)
		}
		if saved != nil {
			if candidate := findByID(roster, saved.PlayerID); candidate != nil {
				metrics.RecordPlayerMatch(string(ActionConfirm), string(SourceSaved))
				return Result{
					ReportName: reportName,
					Suggested:  candidate,
					Confidence: saved.Confidence,
					Action:     ActionConfirm,
					MappingID:  saved.ID,
					Source:     SourceSaved,
				}, nil
			}
			// Mapped player left the roster; fall through to fuzzy.
			if m.log != nil {
				m.log.Warn(ctx, "saved mapping points to unknown player",
					logger.String("report_name", reportName),
					logger.String("player_id", saved.PlayerID))
			}
		}
	}

	ranked := m.Rank(reportName, roster)
	if len(ranked) == 0 {
		metrics.RecordPlayerMatch(string(ActionCreate), string(SourceFuzzy))
		return Result{
			ReportName: reportName,
			Action:     ActionCreate,
			Source:     SourceFuzzy,
		}, nil
	}

	best := ranked[0]
	action := ActionManual
	if best.Score >= m.confirmThreshold {
		action = ActionConfirm
	}
	metrics.RecordPlayerMatch(string(action), string(SourceFuzzy))

	suggested := best.Candidate
	return Result{
		ReportName:   reportName,
		Suggested:    &suggested,
		Confidence:   best.Score,
		Alternatives: ranked[1:],
		Action:       action,
		Source:       SourceFuzzy,
	}, nil
}

// Rank scores every roster candidate against the report name and returns
// those above the minimum score, best first.
func (m *FuzzyMatcher) Rank(reportName string, roster []Candidate) []Match {
	matches := make([]Match, 0, len(roster))
	for _, candidate := range roster {
		score := Similarity(reportName, candidate.FullName())
		if score > minCandidateScore {
			matches = append(matches, Match{Candidate: candidate, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func findByID(roster []Candidate, id string) *Candidate {
	for i := range roster {
		if roster[i].ID == id {
			return &roster[i]
		}
	}
	return nil
}
