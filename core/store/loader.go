package store

import (
	"context"
	"errors"
	"fmt"

	"aero-importer/core/aero"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

// Loader writes reconciled entities with idempotent upserts.
type Loader struct {
	db     *gorm.DB
	cfg    Config
	logger *zap.Logger
}

// NewLoader creates a loader. A nil logger disables logging.
func NewLoader(db *gorm.DB, cfg Config, logger *zap.Logger) *Loader {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{db: db, cfg: cfg, logger: logger}
}

// Load upserts every kind of set in load order, one transaction per kind.
// A failing kind is rolled back and reported as an aero.StoreError; kinds
// already committed stay committed and later kinds are still attempted.
// The returned map holds the rows written per committed kind.
func (l *Loader) Load(ctx context.Context, set *EntitySet) (map[aero.Kind]int, error) {
	written := make(map[aero.Kind]int, len(aero.Kinds))
	var errs []error

	for _, kind := range aero.Kinds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		n, err := l.loadKind(ctx, set, kind)
		if err != nil {
			l.logger.Error("Failed to load kind",
				zap.String("kind", string(kind)),
				zap.Int("rows", n),
				zap.Error(err),
			)
			errs = append(errs, &aero.StoreError{Kind: kind, Err: err})
			continue
		}
		written[kind] = n
		if n > 0 {
			l.logger.Info("Loaded kind", zap.String("kind", string(kind)), zap.Int("rows", n))
		}
	}

	return written, errors.Join(errs...)
}

func (l *Loader) loadKind(ctx context.Context, set *EntitySet, kind aero.Kind) (int, error) {
	switch kind {
	case aero.KindAirport:
		return upsert(ctx, l.db, set.Airports, kind, l.cfg.BatchSize)
	case aero.KindRunway:
		return upsert(ctx, l.db, set.Runways, kind, l.cfg.BatchSize)
	case aero.KindRunwayEnd:
		return upsert(ctx, l.db, set.RunwayEnds, kind, l.cfg.BatchSize)
	case aero.KindNavaid:
		return upsert(ctx, l.db, set.Navaids, kind, l.cfg.BatchSize)
	case aero.KindWaypoint:
		return upsert(ctx, l.db, set.Waypoints, kind, l.cfg.BatchSize)
	case aero.KindAirspace:
		return upsert(ctx, l.db, set.Airspaces, kind, l.cfg.BatchSize)
	default:
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
}

// upsert inserts rows in batches, updating every non-key column on conflict.
// The primary key and created_at are never overwritten.
func upsert[T any](ctx context.Context, db *gorm.DB, rows []T, kind aero.Kind, batchSize int) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	cols := ConflictColumns(kind)
	columns := make([]clause.Column, len(cols))
	for i, c := range cols {
		columns[i] = clause.Column{Name: c}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{Columns: columns, UpdateAll: true}).
			CreateInBatches(rows, batchSize).Error
	})
	if err != nil {
		return len(rows), fmt.Errorf("upsert %s: %w", kind.Table(), err)
	}
	return len(rows), nil
}
