package validate

import (
	"context"
	"errors"
	"fmt"

	"aero-importer/core/aero"
	"aero-importer/core/store"
	"aero-importer/feature/importer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoPlanner is returned when expected counts must be derived but no
// pipeline is available.
var ErrNoPlanner = errors.New("expected counts required")

// Planner runs the import pipeline without writing.
type Planner interface {
	Plan(ctx context.Context, req importer.Request) (*importer.Plan, error)
}

// KindReport compares one kind.
type KindReport struct {
	Expected int64 `json:"expected" yaml:"expected"`
	Actual   int64 `json:"actual" yaml:"actual"`
	Match    bool  `json:"match" yaml:"match"`
}

// Report is the outcome of a validation.
type Report struct {
	Filter  store.Filter             `json:"filter" yaml:"filter"`
	Kinds   map[aero.Kind]KindReport `json:"kinds" yaml:"kinds"`
	Matched bool                     `json:"matched" yaml:"matched"`
}

// Mismatches returns the kinds whose counts differ, in load order.
func (r *Report) Mismatches() []aero.Kind {
	var out []aero.Kind
	for _, kind := range aero.Kinds {
		if kr, ok := r.Kinds[kind]; ok && !kr.Match {
			out = append(out, kind)
		}
	}
	return out
}

// Service validates the store.
type Service struct {
	db      *gorm.DB
	planner Planner
	logger  *zap.Logger
}

// NewService creates a validation service. planner may be nil, in which
// case callers must supply expected counts.
func NewService(db *gorm.DB, planner Planner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, planner: planner, logger: logger}
}

// Expected re-derives expected counts with a dry run.
func (s *Service) Expected(ctx context.Context, filter store.Filter, req importer.Request) (map[aero.Kind]int64, error) {
	if s.planner == nil {
		return nil, ErrNoPlanner
	}
	req.DryRun = true
	plan, err := s.planner.Plan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("derive expected counts: %w", err)
	}
	return plan.Result.CountMatching(filter), nil
}

// Validate compares expected with the stored counts under filter. When
// expected is nil it is derived with Expected; otherwise only the kinds it
// names are compared.
func (s *Service) Validate(ctx context.Context, filter store.Filter, expected map[aero.Kind]int64) (*Report, error) {
	if expected == nil {
		var err error
		expected, err = s.Expected(ctx, filter, importer.Request{})
		if err != nil {
			return nil, err
		}
	}

	actual, err := store.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	report := &Report{Filter: filter, Kinds: make(map[aero.Kind]KindReport, len(expected)), Matched: true}
	for kind, want := range expected {
		kr := KindReport{Expected: want, Actual: actual[kind], Match: want == actual[kind]}
		report.Kinds[kind] = kr
		if !kr.Match {
			report.Matched = false
		}
	}

	if report.Matched {
		s.logger.Info("Validation passed", zap.String("source", string(filter.Source)), zap.String("cycle", filter.Cycle))
	} else {
		for _, kind := range report.Mismatches() {
			kr := report.Kinds[kind]
			s.logger.Warn("Count mismatch",
				zap.String("kind", string(kind)),
				zap.Int64("expected", kr.Expected),
				zap.Int64("actual", kr.Actual),
			)
		}
	}
	return report, nil
}

// CheckSchema compares the store tables with the models.
func (s *Service) CheckSchema() (*store.SchemaReport, error) {
	return store.CheckSchema(s.db)
}

// ParseExpected validates a kind -> count map as read from JSON. Table
// names are accepted as keys.
func ParseExpected(raw map[string]int64) (map[aero.Kind]int64, error) {
	out := make(map[aero.Kind]int64, len(raw))
	for name, n := range raw {
		kind, err := aero.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count for %s", kind)
		}
		out[kind] = n
	}
	return out, nil
}

// ParseFilter builds a filter from query values. An empty source matches every source.
func ParseFilter(src, cycle string) (store.Filter, error) {
	f := store.Filter{Cycle: cycle}
	if src == "" {
		return f, nil
	}
	s, err := aero.ParseSource(src)
	if err != nil {
		return f, err
	}
	f.Source = s
	return f, nil
}
