package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"aero-importer/core/aero"
	"aero-importer/core/reconcile"
	"aero-importer/core/shapes"
	"aero-importer/core/source"
	"aero-importer/core/store"
	"aero-importer/feature/arinc"
	"aero-importer/feature/ofmx"
	"aero-importer/feature/openair"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	// ErrNoSources is returned when neither the request nor the configuration names a snapshot.
	ErrNoSources = errors.New("no snapshot location given")
	// ErrNoDatabase is returned by a writing run without a store connection.
	ErrNoDatabase = errors.New("database connection required")
	// ErrBusy is returned by TryImport while another import is running.
	ErrBusy = errors.New("an import is already running")
)

// Config holds the settings of the pipeline.
type Config struct {
	Store     store.Config
	Reconcile reconcile.Config
	Source    source.Config
	// Schema is the store schema created by Migrate.
	Schema string
}

// Plan is a reconciled run that has not been written.
type Plan struct {
	Result  *reconcile.Result
	Summary *RunSummary
}

// Service runs imports.
type Service struct {
	db         *gorm.DB
	opener     *source.Opener
	cache      *reconcile.ReferenceCache
	reconciler *reconcile.Reconciler
	loader     *store.Loader
	cfg        Config
	logger     *zap.Logger

	mu sync.Mutex

	lastMu sync.RWMutex
	last   *RunSummary
}

// NewService creates an import service. db may be nil, in which case only
// dry runs are possible and references resolve within a run only.
func NewService(db *gorm.DB, opener *source.Opener, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{db: db, opener: opener, cfg: cfg, logger: logger}
	if db != nil {
		s.cache = reconcile.NewReferenceCache(db, time.Duration(cfg.Reconcile.CacheTTLSeconds)*time.Second)
		s.loader = store.NewLoader(db, cfg.Store, logger)
	}
	s.reconciler = reconcile.New(cfg.Reconcile, s.cache, logger)
	return s
}

// Last returns the summary of the most recent run, or nil.
func (s *Service) Last() *RunSummary {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

func (s *Service) remember(sum *RunSummary) {
	s.lastMu.Lock()
	s.last = sum
	s.lastMu.Unlock()
}

// parsed holds the collectors of one run.
type parsed struct {
	ofmx    *aero.Collector
	arinc   *aero.Collector
	shapes  ofmx.ShapeIndex
	openair *openair.Collector
	misc    *aero.Collector
	names   []string
	failed  []SourceError
	namesMu sync.Mutex
}

func (p *parsed) opened(name string) {
	p.namesMu.Lock()
	p.names = append(p.names, name)
	p.namesMu.Unlock()
}

func (p *parsed) fail(perr *aero.ParseError) {
	p.namesMu.Lock()
	p.failed = append(p.failed, SourceError{
		File:    perr.File,
		Line:    perr.Line,
		Section: perr.Section,
		Error:   perr.Error(),
	})
	p.namesMu.Unlock()
}

// Plan parses and reconciles the snapshots of req without writing.
func (s *Service) Plan(ctx context.Context, req Request) (*Plan, error) {
	started := time.Now()
	req = req.withDefaults(s.cfg.Source)
	if req.empty() {
		return nil, ErrNoSources
	}

	p := &parsed{
		ofmx:    aero.NewCollector(),
		arinc:   aero.NewCollector(),
		shapes:  ofmx.ShapeIndex{},
		openair: &openair.Collector{},
		misc:    aero.NewCollector(),
	}

	g, gctx := errgroup.WithContext(ctx)
	if req.OFMX != "" {
		g.Go(func() error {
			return s.parse(gctx, req, req.OFMX, ofmx.SelectMember, p, func(r *source.Stream) error {
				prov := aero.Provenance{Source: aero.SourceOFMX, Cycle: req.Cycle, File: r.Name}
				return ofmx.Parse(gctx, r, prov, p.ofmx)
			})
		})
	}
	if req.Shapes != "" {
		g.Go(func() error {
			return s.parse(gctx, req, req.Shapes, ofmx.SelectShapes, p, func(r *source.Stream) error {
				return ofmx.ParseShapes(gctx, r, p.shapes, p.misc)
			})
		})
	}
	if req.ARINC != "" {
		g.Go(func() error {
			return s.parse(gctx, req, req.ARINC, arinc.SelectMember, p, func(r *source.Stream) error {
				prov := aero.Provenance{Source: aero.SourceARINC, Cycle: req.Cycle, File: r.Name}
				return arinc.Parse(gctx, r, prov, p.arinc)
			})
		})
	}
	if req.OpenAIR != "" {
		g.Go(func() error {
			return s.parse(gctx, req, req.OpenAIR, openair.SelectMember, p, func(r *source.Stream) error {
				return openair.Parse(gctx, r, r.Name, p.openair)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(p.names)
	sort.Slice(p.failed, func(i, j int) bool { return p.failed[i].File < p.failed[j].File })

	var (
		byID   shapes.Lookup
		byName shapes.NameClassLookup
	)
	if req.Shapes != "" {
		byID = p.shapes
	}
	if req.OpenAIR != "" {
		ix := openair.BuildIndex(p.openair.Shapes())
		s.logger.Debug("Built OpenAIR index", zap.Int("shapes", ix.Len()))
		byName = ix
	}
	airspaces := append(p.ofmx.Airspaces(), p.arinc.Airspaces()...)
	merged := shapes.Merge(airspaces, byID, byName)

	records := append(p.ofmx.Records(), p.arinc.Records()...)
	res, err := s.reconciler.Reconcile(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	sum := &RunSummary{
		ID:                uuid.NewString(),
		DryRun:            req.DryRun,
		Sources:           p.names,
		StartedAt:         started.UTC(),
		Parsed:            mergeCounts(p.ofmx.Counts(), p.arinc.Counts()),
		Entities:          res.Summary.Entities,
		Rejected:          make(map[aero.Kind]map[string]int),
		Shapes:            merged,
		Duplicates:        res.Summary.Duplicates,
		Unresolved:        res.Summary.Unresolved,
		DroppedGeometries: res.Summary.Rejected,
		ParseErrors:       p.failed,
		Warnings:          append([]string(nil), res.Summary.Warnings...),
	}

	for _, f := range p.failed {
		s.logger.Warn("Source parse aborted",
			zap.String("file", f.File),
			zap.Int("line", f.Line),
			zap.String("section", f.Section),
			zap.String("error", f.Error),
		)
		if len(sum.Warnings) < reconcile.MaxWarnings {
			sum.Warnings = append(sum.Warnings, f.Error)
		}
	}

	var rejections []aero.Rejection
	rejections = append(rejections, p.ofmx.Rejections()...)
	rejections = append(rejections, p.arinc.Rejections()...)
	rejections = append(rejections, p.misc.Rejections()...)
	rejections = append(rejections, p.openair.Rejections()...)
	for _, rej := range rejections {
		class := aero.ErrorClass(rej.Err)
		if sum.Rejected[rej.Kind] == nil {
			sum.Rejected[rej.Kind] = make(map[string]int)
		}
		sum.Rejected[rej.Kind][class]++
		s.logger.Warn("Record rejected",
			zap.String("kind", string(rej.Kind)),
			zap.String("class", class),
			zap.Error(rej.Err),
		)
		if len(sum.Warnings) < reconcile.MaxWarnings {
			sum.Warnings = append(sum.Warnings, rej.Err.Error())
		}
	}

	sum.elapsed = time.Since(started)
	sum.Duration = sum.elapsed.String()

	s.logger.Info("Planned import",
		zap.String("run", sum.ID),
		zap.Strings("sources", sum.Sources),
		zap.Int("records", len(records)),
		zap.Int("rejected", sum.TotalRejected()),
		zap.Int("parse_errors", len(sum.ParseErrors)),
		zap.Int("duplicates", sum.Duplicates),
		zap.Int("unresolved", sum.Unresolved),
	)
	return &Plan{Result: res, Summary: sum}, nil
}

func (s *Service) parse(ctx context.Context, req Request, raw string, pick source.Selector, p *parsed, fn func(*source.Stream) error) error {
	loc := source.ParseLocation(raw, req.Bucket)
	r, err := s.opener.Open(ctx, loc, pick)
	if err != nil {
		return fmt.Errorf("open %s: %w", loc, err)
	}
	defer r.Close()
	p.opened(r.Name)

	rt := &readTracker{ReadCloser: r.ReadCloser}
	err = fn(&source.Stream{ReadCloser: rt, Name: r.Name})
	if err == nil {
		return nil
	}
	if rt.err != nil {
		return fmt.Errorf("read %s: %w", r.Name, rt.err)
	}
	// A parse error stops this source only; what it emitted so far stands.
	var perr *aero.ParseError
	if errors.As(err, &perr) {
		if perr.File == "" {
			perr.File = r.Name
		}
		if ctx.Err() == nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			p.fail(perr)
			return nil
		}
	}
	return fmt.Errorf("parse %s: %w", r.Name, err)
}

// readTracker remembers the first read failure of a stream, so a broken
// transfer is not mistaken for malformed input.
type readTracker struct {
	io.ReadCloser
	err error
}

func (t *readTracker) Read(b []byte) (int, error) {
	n, err := t.ReadCloser.Read(b)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

func mergeCounts(parts ...map[aero.Kind]int) map[aero.Kind]int {
	out := make(map[aero.Kind]int, len(aero.Kinds))
	for _, kind := range aero.Kinds {
		out[kind] = 0
	}
	for _, part := range parts {
		for k, n := range part {
			out[k] += n
		}
	}
	return out
}

// Import runs a full import, waiting for any running import to finish.
func (s *Service) Import(ctx context.Context, req Request) (*RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, req)
}

// TryImport runs an import unless one is already running, in which case it
// returns ErrBusy.
func (s *Service) TryImport(ctx context.Context, req Request) (*RunSummary, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()
	return s.run(ctx, req)
}

func (s *Service) run(ctx context.Context, req Request) (*RunSummary, error) {
	started := time.Now()
	if !req.DryRun && s.db == nil {
		return nil, ErrNoDatabase
	}

	// Planning resolves references against the store, so the schema must
	// exist first.
	if !req.DryRun && (req.Migrate || s.cfg.Store.Migrate) {
		if err := store.Migrate(ctx, s.db, s.cfg.Schema); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	sum := plan.Summary
	if req.DryRun {
		s.remember(sum)
		return sum, nil
	}

	written, loadErr := s.loader.Load(ctx, &plan.Result.EntitySet)
	s.cache.Invalidate()

	sum.Written = written
	sum.elapsed = time.Since(started)
	sum.Duration = sum.elapsed.String()
	if loadErr != nil {
		sum.Error = loadErr.Error()
	}
	s.remember(sum)

	s.logger.Info("Import finished",
		zap.String("run", sum.ID),
		zap.Any("written", written),
		zap.Duration("duration", sum.elapsed),
		zap.Bool("failed", loadErr != nil),
	)
	return sum, loadErr
}
