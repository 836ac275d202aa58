package reconcile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"aero-importer/core/aero"
	"aero-importer/core/geo"
	"aero-importer/core/store"
	"aero-importer/core/utils"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Reconciler converts raw records into store rows.
type Reconciler struct {
	ids    IDs
	cache  *ReferenceCache
	logger *zap.Logger
}

// New creates a reconciler. A nil cache resolves references within the run only.
// An invalid namespace falls back to DefaultNamespace with a warning.
func New(cfg Config, cache *ReferenceCache, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ids, err := NewIDs(cfg.Namespace)
	if err != nil {
		logger.Warn("Using default reconcile namespace", zap.Error(err))
		ids = IDs{ns: DefaultNamespace}
	}
	return &Reconciler{ids: ids, cache: cache, logger: logger}
}

// IDs returns the id generator used for row keys.
func (r *Reconciler) IDs() IDs {
	return r.ids
}

// run holds the state shared by the per-kind goroutines of one reconciliation.
type run struct {
	*Reconciler
	stored *ReferenceIndex

	// canonical id -> row id of records in this run, per referenced kind
	local map[aero.Kind]map[string]uuid.UUID

	// runway canonical id -> end points in stream order
	ends map[string][]orb.Point

	mu      sync.Mutex
	summary Summary
}

// Reconcile assigns identity, resolves references, stamps provenance and
// collapses duplicates. recs must be in stream order: source order, then
// sequence within a source.
func (r *Reconciler) Reconcile(ctx context.Context, recs []aero.Record) (*Result, error) {
	buckets, dups := dedupe(recs)

	st := &run{
		Reconciler: r,
		local:      make(map[aero.Kind]map[string]uuid.UUID, 3),
		ends:       make(map[string][]orb.Point),
	}
	st.summary.Duplicates = dups

	for _, kind := range []aero.Kind{aero.KindAirport, aero.KindRunway, aero.KindNavaid} {
		ids := make(map[string]uuid.UUID, len(buckets[kind]))
		for _, rec := range buckets[kind] {
			key := Key(rec)
			ids[key] = r.ids.For(kind, key)
		}
		st.local[kind] = ids
	}
	for _, rec := range buckets[aero.KindRunwayEnd] {
		end := rec.(*aero.RunwayEnd)
		ref := CanonicalID(end.RunwayRef)
		st.ends[ref] = append(st.ends[ref], end.Point)
	}

	if r.cache != nil && needsStore(buckets) {
		ix, err := r.cache.Get(ctx)
		if err != nil {
			return nil, err
		}
		st.stored = ix
	}

	res := &Result{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Airports = convert(ctx, buckets[aero.KindAirport], st.airport)
		return ctx.Err()
	})
	g.Go(func() error {
		res.Runways = convert(ctx, buckets[aero.KindRunway], st.runway)
		return ctx.Err()
	})
	g.Go(func() error {
		res.RunwayEnds = convert(ctx, buckets[aero.KindRunwayEnd], st.runwayEnd)
		return ctx.Err()
	})
	g.Go(func() error {
		res.Navaids = convert(ctx, buckets[aero.KindNavaid], st.navaid)
		return ctx.Err()
	})
	g.Go(func() error {
		res.Waypoints = convert(ctx, buckets[aero.KindWaypoint], st.waypoint)
		return ctx.Err()
	})
	g.Go(func() error {
		// airspaces are reconciled serially within this goroutine
		res.Airspaces = convert(ctx, buckets[aero.KindAirspace], st.airspace)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Summary = st.summary
	res.Summary.Entities = res.EntitySet.Counts()
	return res, nil
}

// dedupe groups records by kind, keeping the last record per uniqueness key at
// the position where the key was first seen.
func dedupe(recs []aero.Record) (map[aero.Kind][]aero.Record, int) {
	buckets := make(map[aero.Kind][]aero.Record, len(aero.Kinds))
	pos := make(map[aero.Kind]map[string]int, len(aero.Kinds))
	dups := 0
	for _, rec := range recs {
		kind := rec.Kind()
		if pos[kind] == nil {
			pos[kind] = make(map[string]int)
		}
		key := Key(rec)
		if i, ok := pos[kind][key]; ok {
			buckets[kind][i] = rec
			dups++
			continue
		}
		pos[kind][key] = len(buckets[kind])
		buckets[kind] = append(buckets[kind], rec)
	}
	return buckets, dups
}

func needsStore(buckets map[aero.Kind][]aero.Record) bool {
	return len(buckets[aero.KindRunway]) > 0 || len(buckets[aero.KindRunwayEnd]) > 0 || len(buckets[aero.KindNavaid]) > 0
}

func convert[T any](ctx context.Context, recs []aero.Record, fn func(aero.Record) T) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if ctx.Err() != nil {
			return nil
		}
		out = append(out, fn(rec))
	}
	return out
}

func (st *run) warn(err error) {
	st.logger.Warn("Reconcile warning", zap.Error(err))
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.summary.Warnings) < MaxWarnings {
		st.summary.Warnings = append(st.summary.Warnings, err.Error())
	}
}

// resolve looks up a reference in the current run, then in the stored index.
func (st *run) resolve(kind aero.Kind, id string, refKind aero.Kind, ref string) (*string, *uuid.UUID) {
	ref = CanonicalID(ref)
	if ref == "" {
		return nil, nil
	}
	if uid, ok := st.local[refKind][ref]; ok {
		return &ref, &uid
	}
	if uid, ok := st.stored.Lookup(refKind, ref); ok {
		return &ref, &uid
	}

	st.mu.Lock()
	st.summary.Unresolved++
	st.mu.Unlock()
	st.warn(&aero.ReferenceError{Kind: kind, ID: id, RefKind: refKind, Ref: ref})
	return &ref, nil
}

func (st *run) base(kind aero.Kind, key string, m *aero.Meta) store.Base {
	from, to := m.Prov.Window()
	return store.Base{
		ID:        st.ids.For(kind, key),
		Source:    string(m.Prov.Source),
		Cycle:     m.Prov.Cycle,
		ValidFrom: from,
		ValidTo:   to,
	}
}

func (st *run) dropGeometry(err error) {
	st.mu.Lock()
	st.summary.Rejected++
	st.mu.Unlock()
	st.warn(err)
}

func (st *run) airport(rec aero.Record) store.Airport {
	a := rec.(*aero.Airport)
	id := Key(a)
	return store.Airport{
		Base:             st.base(aero.KindAirport, id, &a.Meta),
		OfmxID:           id,
		Region:           a.Region,
		CodeID:           utils.StrPtr(a.CodeID),
		CodeICAO:         utils.StrPtr(a.CodeICAO),
		CodeGPS:          utils.StrPtr(a.CodeGPS),
		CodeType:         utils.StrPtr(a.CodeType),
		Name:             utils.StrPtr(a.Name),
		City:             utils.StrPtr(a.City),
		Elevation:        a.Elevation,
		ElevationUOM:     utils.StrPtr(a.ElevationUOM),
		MagVar:           a.MagVar,
		MagVarYear:       a.MagVarYear,
		TransitionAlt:    a.TransitionAlt,
		TransitionAltUOM: utils.StrPtr(a.TransitionAltUOM),
		Remarks:          utils.StrPtr(a.Remarks),
		Geom:             store.NewGeometry(a.Point),
	}
}

func (st *run) runway(rec aero.Record) store.Runway {
	rw := rec.(*aero.Runway)
	id := Key(rw)
	row := store.Runway{
		Base:        st.base(aero.KindRunway, id, &rw.Meta),
		OfmxID:      id,
		Region:      rw.Region,
		Designator:  utils.StrPtr(rw.Designator),
		Length:      rw.Length,
		Width:       rw.Width,
		UomDimRwy:   utils.StrPtr(rw.UOMDimRwy),
		Surface:     utils.StrPtr(rw.Surface),
		Preparation: utils.StrPtr(rw.Preparation),
		PcnNote:     utils.StrPtr(rw.PCNNote),
		StripLength: rw.StripLength,
		StripWidth:  rw.StripWidth,
		UomDimStrip: utils.StrPtr(rw.UOMDimStrip),
	}
	row.AirportOfmxID, row.AirportUID = st.resolve(aero.KindRunway, id, aero.KindAirport, rw.AirportRef)

	if pts := st.ends[id]; len(pts) >= 2 {
		line, err := geo.Line(pts[:2])
		if err != nil {
			st.dropGeometry(fmt.Errorf("runway %s: %w", id, err))
		} else {
			row.Geom = store.NewGeometry(line)
		}
	}
	return row
}

func (st *run) runwayEnd(rec aero.Record) store.RunwayEnd {
	e := rec.(*aero.RunwayEnd)
	id := Key(e)
	row := store.RunwayEnd{
		Base:        st.base(aero.KindRunwayEnd, id, &e.Meta),
		OfmxID:      id,
		Region:      e.Region,
		Designator:  utils.StrPtr(e.Designator),
		TrueBearing: e.TrueBearing,
		MagBearing:  e.MagBearing,
		Geom:        store.NewGeometry(e.Point),
	}
	row.RunwayOfmxID, row.RunwayUID = st.resolve(aero.KindRunwayEnd, id, aero.KindRunway, e.RunwayRef)
	row.AirportOfmxID, row.AirportUID = st.resolve(aero.KindRunwayEnd, id, aero.KindAirport, e.AirportRef)
	return row
}

func (st *run) navaid(rec aero.Record) store.Navaid {
	n := rec.(*aero.Navaid)
	id := Key(n)
	row := store.Navaid{
		Base:           st.base(aero.KindNavaid, id, &n.Meta),
		OfmxID:         id,
		Region:         n.Region,
		CodeID:         utils.StrPtr(n.CodeID),
		Name:           utils.StrPtr(n.Name),
		NavaidType:     utils.StrPtr(n.NavaidType),
		CodeType:       utils.StrPtr(n.CodeType),
		Frequency:      n.Frequency,
		FrequencyUOM:   utils.StrPtr(n.FrequencyUOM),
		Channel:        utils.StrPtr(n.Channel),
		GhostFrequency: n.GhostFrequency,
		Elevation:      n.Elevation,
		ElevationUOM:   utils.StrPtr(n.ElevationUOM),
		MagVar:         n.MagVar,
		Datum:          utils.StrPtr(n.Datum),
		Geom:           store.NewGeometry(n.Point),
	}
	row.AssociatedVorOfmxID, row.AssociatedVorUID = st.resolve(aero.KindNavaid, id, aero.KindNavaid, n.AssociatedVOR)
	return row
}

func (st *run) waypoint(rec aero.Record) store.Waypoint {
	w := rec.(*aero.Waypoint)
	id := Key(w)
	return store.Waypoint{
		Base:      st.base(aero.KindWaypoint, id, &w.Meta),
		OfmxID:    id,
		Region:    w.Region,
		CodeID:    utils.StrPtr(w.CodeID),
		Name:      utils.StrPtr(w.Name),
		PointType: utils.StrPtr(w.PointType),
		Geom:      store.NewGeometry(w.Point),
	}
}

func (st *run) airspace(rec aero.Record) store.Airspace {
	a := rec.(*aero.Airspace)
	row := store.Airspace{
		Base:          st.base(aero.KindAirspace, Key(a), &a.Meta),
		OfmxID:        CanonicalID(a.NativeID),
		Region:        strings.TrimSpace(a.Region),
		CodeID:        strings.TrimSpace(a.CodeID),
		CodeType:      strings.TrimSpace(a.CodeType),
		Name:          strings.TrimSpace(a.Name),
		NameAlt:       utils.StrPtr(a.NameAlt),
		AirspaceClass: utils.StrPtr(a.Class),
		UpperRef:      utils.StrPtr(a.Upper.Ref),
		UpperValue:    a.Upper.Value,
		UpperUOM:      utils.StrPtr(a.Upper.UOM),
		LowerRef:      utils.StrPtr(a.Lower.Ref),
		LowerValue:    a.Lower.Value,
		LowerUOM:      utils.StrPtr(a.Lower.UOM),
		Remarks:       utils.StrPtr(a.Remarks),
	}
	if a.Polygon != nil {
		ring, err := geo.Ring(a.Polygon)
		if err != nil {
			st.dropGeometry(fmt.Errorf("airspace %s (%s): %w", row.OfmxID, row.Name, err))
		} else {
			row.Geom = store.NewGeometry(geo.MultiPolygon(ring))
		}
	}
	return row
}
