package importer

import (
	"time"

	"aero-importer/core/aero"
	"aero-importer/core/shapes"
	"aero-importer/core/source"
)

// Request names the snapshots of one run. Empty locations fall back to the
// configured sources. A location is a local path, a zip archive or
// s3://bucket/key; plain paths resolve inside Bucket when it is set.
type Request struct {
	OFMX    string `json:"ofmx,omitempty"`
	Shapes  string `json:"shapes,omitempty"`
	ARINC   string `json:"arinc,omitempty"`
	OpenAIR string `json:"openair,omitempty"`
	Cycle   string `json:"cycle,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
	Migrate bool   `json:"migrate,omitempty"`
}

func (r Request) withDefaults(cfg source.Config) Request {
	if r.OFMX == "" && r.Shapes == "" && r.ARINC == "" && r.OpenAIR == "" {
		r.OFMX, r.Shapes, r.ARINC, r.OpenAIR = cfg.OFMX, cfg.Shapes, cfg.ARINC, cfg.OpenAIR
	}
	if r.Cycle == "" {
		r.Cycle = cfg.Cycle
	}
	return r
}

func (r Request) empty() bool {
	return r.OFMX == "" && r.ARINC == "" && r.OpenAIR == "" && r.Shapes == ""
}

// SourceError is a parse error that stopped one source.
type SourceError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Section string `json:"section,omitempty"`
	Error   string `json:"error"`
}

// RunSummary reports the outcome of a run.
type RunSummary struct {
	ID        string    `json:"id"`
	DryRun    bool      `json:"dry_run"`
	Sources   []string  `json:"sources"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`

	// Parsed is the number of raw records per kind.
	Parsed map[aero.Kind]int `json:"parsed"`
	// Entities is the number of reconciled rows per kind.
	Entities map[aero.Kind]int `json:"entities"`
	// Written is the number of rows upserted per committed kind.
	Written map[aero.Kind]int `json:"written,omitempty"`
	// Rejected counts dropped records per kind and error class.
	Rejected map[aero.Kind]map[string]int `json:"rejected"`

	Shapes            shapes.Stats `json:"shapes"`
	Duplicates        int          `json:"duplicates"`
	Unresolved        int          `json:"unresolved"`
	DroppedGeometries int          `json:"dropped_geometries"`
	// ParseErrors lists the sources whose parser stopped early. Records
	// emitted before the error are kept.
	ParseErrors []SourceError `json:"parse_errors,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Error       string        `json:"error,omitempty"`

	elapsed time.Duration
}

// Elapsed returns the wall time of the run.
func (s *RunSummary) Elapsed() time.Duration { return s.elapsed }

// TotalRejected returns the number of rejected records of every kind.
func (s *RunSummary) TotalRejected() int {
	n := 0
	for _, classes := range s.Rejected {
		for _, c := range classes {
			n += c
		}
	}
	return n
}
