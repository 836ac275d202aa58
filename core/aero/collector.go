package aero

import "sync"

// Emitter receives records from a parser as they are produced.
type Emitter interface {
	// Emit accepts a parsed record. A non-nil error aborts the parser.
	Emit(Record) error
	// Reject reports a record dropped because of err.
	Reject(kind Kind, err error)
}

// Rejection is a record that was dropped during parsing.
type Rejection struct {
	Kind Kind
	Err  error
}

// Collector is an Emitter that keeps records in memory, in emit order.
// It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	records  []Record
	rejected []Rejection
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit stores r and stamps its stream position.
func (c *Collector) Emit(r Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r.Base().Seq = len(c.records)
	c.records = append(c.records, r)
	return nil
}

// Reject records a dropped record.
func (c *Collector) Reject(kind Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected = append(c.rejected, Rejection{Kind: kind, Err: err})
}

// Records returns the collected records in emit order.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Rejections returns every rejection reported so far.
func (c *Collector) Rejections() []Rejection {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Rejection, len(c.rejected))
	copy(out, c.rejected)
	return out
}

// Counts returns the number of collected records per kind.
func (c *Collector) Counts() map[Kind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[Kind]int, len(Kinds))
	for _, r := range c.records {
		counts[r.Kind()]++
	}
	return counts
}

// Airspaces returns the collected airspace records.
func (c *Collector) Airspaces() []*Airspace {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Airspace
	for _, r := range c.records {
		if a, ok := r.(*Airspace); ok {
			out = append(out, a)
		}
	}
	return out
}
