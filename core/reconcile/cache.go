package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aero-importer/core/aero"
	"aero-importer/core/store"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ReferenceIndex maps canonical ids of stored rows to their row ids.
type ReferenceIndex struct {
	// Airports, Runways and Navaids are keyed by ofmx_id.
	Airports map[string]uuid.UUID
	Runways  map[string]uuid.UUID
	Navaids  map[string]uuid.UUID

	// Built is the timestamp when this index was loaded.
	Built time.Time
}

// Lookup returns the stored row id of a referenced kind.
func (ix *ReferenceIndex) Lookup(kind aero.Kind, id string) (uuid.UUID, bool) {
	if ix == nil {
		return uuid.Nil, false
	}
	var m map[string]uuid.UUID
	switch kind {
	case aero.KindAirport:
		m = ix.Airports
	case aero.KindRunway:
		m = ix.Runways
	case aero.KindNavaid:
		m = ix.Navaids
	}
	v, ok := m[id]
	return v, ok
}

// ReferenceCache shares the stored reference index between runs.
type ReferenceCache struct {
	db  *gorm.DB
	ttl time.Duration

	mu      sync.RWMutex
	current *ReferenceIndex
	sf      singleflight.Group
}

// NewReferenceCache creates a cache over db. A zero ttl disables reuse.
func NewReferenceCache(db *gorm.DB, ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{db: db, ttl: ttl}
}

func (c *ReferenceCache) fresh(ix *ReferenceIndex) bool {
	return ix != nil && c.ttl > 0 && time.Since(ix.Built) <= c.ttl
}

// Get returns the cached index, loading it when missing or expired.
// Concurrent callers share a single load.
func (c *ReferenceCache) Get(ctx context.Context) (*ReferenceIndex, error) {
	// Fast path: check if index exists and is fresh
	c.mu.RLock()
	ix := c.current
	c.mu.RUnlock()
	if c.fresh(ix) {
		return ix, nil
	}

	result, err, _ := c.sf.Do("refs", func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		c.mu.RLock()
		ix := c.current
		c.mu.RUnlock()
		if c.fresh(ix) {
			return ix, nil
		}

		loaded, err := BuildIndex(ctx, c.db)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.current = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ReferenceIndex), nil
}

// Invalidate drops the cached index. The importer calls it after writing.
func (c *ReferenceCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// BuildIndex loads the canonical ids of stored airports, runways and navaids
// concurrently. A table that does not exist yet contributes no ids.
func BuildIndex(ctx context.Context, db *gorm.DB) (*ReferenceIndex, error) {
	var (
		airports, runways, navaids map[string]uuid.UUID
		aptErr, rwyErr, navErr     error
		wg                         sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		airports, aptErr = loadIDs(ctx, db, &store.Airport{})
	}()
	go func() {
		defer wg.Done()
		runways, rwyErr = loadIDs(ctx, db, &store.Runway{})
	}()
	go func() {
		defer wg.Done()
		navaids, navErr = loadIDs(ctx, db, &store.Navaid{})
	}()
	wg.Wait()

	if aptErr != nil {
		return nil, aptErr
	}
	if rwyErr != nil {
		return nil, rwyErr
	}
	if navErr != nil {
		return nil, navErr
	}

	return &ReferenceIndex{
		Airports: airports,
		Runways:  runways,
		Navaids:  navaids,
		Built:    time.Now(),
	}, nil
}

func loadIDs(ctx context.Context, db *gorm.DB, model any) (map[string]uuid.UUID, error) {
	var rows []struct {
		ID     uuid.UUID
		OfmxID string
	}
	tx := db.WithContext(ctx)
	if !tx.Migrator().HasTable(model) {
		return map[string]uuid.UUID{}, nil
	}
	if err := tx.Model(model).Select("id", "ofmx_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load reference index: %w", err)
	}
	ids := make(map[string]uuid.UUID, len(rows))
	for _, r := range rows {
		ids[r.OfmxID] = r.ID
	}
	return ids, nil
}
