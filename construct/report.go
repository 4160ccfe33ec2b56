package construct

import (
	"fmt"
	"time"
)

// RowError is a row-level conversion failure. Row is zero-based over the
// whole input.
type RowError struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Err    error  `json:"-"`
}

// Error implements error.
func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d column %q: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Unwrap returns the underlying error.
func (e *RowError) Unwrap() error { return e.Err }

// RecordedError is the report form of a RowError.
type RecordedError struct {
	Row    int    `json:"row"`
	Column string `json:"column,omitempty"`
	Error  string `json:"error"`
}

// ViolationKind names a structural violation.
type ViolationKind string

// Structural violation kinds.
const (
	ViolationDomain         ViolationKind = "domain"
	ViolationRange          ViolationKind = "range"
	ViolationCardinalityMin ViolationKind = "cardinality_min"
	ViolationCardinalityMax ViolationKind = "cardinality_max"
	ViolationCardinalityEq  ViolationKind = "cardinality_exact"
)

// Violation is one sampled structural violation.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	Row       int           `json:"row"`
	Subject   string        `json:"subject"`
	Predicate string        `json:"predicate"`
	Object    string        `json:"object,omitempty"`
	Expected  string        `json:"expected"`
	Actual    string        `json:"actual,omitempty"`
}

// CardinalityViolations counts cardinality violations by constraint.
type CardinalityViolations struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Exact int `json:"exact"`
}

// Total returns the sum of all counters.
func (c CardinalityViolations) Total() int { return c.Min + c.Max + c.Exact }

// ProcessingReport summarizes one construction run. It is mutated only by
// the run that owns it and is final once Run returns.
type ProcessingReport struct {
	TotalRows             int                   `json:"total_rows"`
	SuccessfulRows        int                   `json:"successful_rows"`
	FailedRows            int                   `json:"failed_rows"`
	Warnings              []string              `json:"warnings"`
	Errors                []RecordedError       `json:"errors"`
	DomainViolations      int                   `json:"domain_violations"`
	RangeViolations       int                   `json:"range_violations"`
	InferredTypes         int                   `json:"inferred_types"`
	InverseLinksAdded     int                   `json:"inverse_links_added"`
	TransitiveLinksAdded  int                   `json:"transitive_links_added"`
	SymmetricLinksAdded   int                   `json:"symmetric_links_added"`
	CardinalityViolations CardinalityViolations `json:"cardinality_violations"`

	Mode             Mode          `json:"mode"`
	State            State         `json:"state"`
	TriplesEmitted   int           `json:"triples_emitted"`
	DuplicatesMerged int           `json:"duplicates_merged"`
	ViolationSamples []Violation   `json:"violation_samples,omitempty"`
	AbortCause       string        `json:"abort_cause,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration_ns"`
}

// Aborted reports whether the run stopped before completing.
func (r *ProcessingReport) Aborted() bool { return r.State == StateAborted }

// reportBuilder owns the mutable report of a run and applies the bounds.
type reportBuilder struct {
	report      ProcessingReport
	maxRecorded int
	maxSamples  int
	sampled     map[ViolationKind]int
	warned      map[string]bool
}

func newReportBuilder(mode Mode, cfg Config) *reportBuilder {
	return &reportBuilder{
		report: ProcessingReport{
			Mode:      mode,
			State:     StateIdle,
			Warnings:  []string{},
			Errors:    []RecordedError{},
			StartedAt: time.Now(),
		},
		maxRecorded: cfg.MaxRecordedErrors,
		maxSamples:  cfg.ViolationSampleSize,
		sampled:     make(map[ViolationKind]int),
		warned:      make(map[string]bool),
	}
}

func (b *reportBuilder) recordError(e *RowError) {
	if len(b.report.Errors) >= b.maxRecorded {
		return
	}
	b.report.Errors = append(b.report.Errors, RecordedError{Row: e.Row, Column: e.Column, Error: e.Err.Error()})
}

// warnOnce records a warning the first time key is seen.
func (b *reportBuilder) warnOnce(key, msg string) {
	if b.warned[key] || len(b.report.Warnings) >= b.maxRecorded {
		return
	}
	b.warned[key] = true
	b.report.Warnings = append(b.report.Warnings, msg)
}

func (b *reportBuilder) violation(v Violation) {
	switch v.Kind {
	case ViolationDomain:
		b.report.DomainViolations++
	case ViolationRange:
		b.report.RangeViolations++
	case ViolationCardinalityMin:
		b.report.CardinalityViolations.Min++
	case ViolationCardinalityMax:
		b.report.CardinalityViolations.Max++
	case ViolationCardinalityEq:
		b.report.CardinalityViolations.Exact++
	}
	if b.sampled[v.Kind] < b.maxSamples {
		b.sampled[v.Kind]++
		b.report.ViolationSamples = append(b.report.ViolationSamples, v)
	}
}

func (b *reportBuilder) finish(state State, cause error) *ProcessingReport {
	b.report.State = state
	if cause != nil {
		b.report.AbortCause = cause.Error()
	}
	b.report.Duration = time.Since(b.report.StartedAt)
	out := b.report
	return &out
}
