package alignment

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
)

// ReportSchemaVersion is bumped whenever the JSON shape of Report changes.
const ReportSchemaVersion = "1.0"

// Confidence bands used by Statistics.
const (
	HighConfidence   = 0.80
	MediumConfidence = 0.50
)

// Report is the record of one alignment run. It is never modified after
// ReportBuilder.Build returns it.
type Report struct {
	SchemaVersion   string                 `json:"schema_version"`
	RunID           string                 `json:"run_id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Dataset         string                 `json:"dataset"`
	TargetClass     string                 `json:"target_class"`
	Statistics      Statistics             `json:"statistics"`
	MatchDetails    []MatchDetail          `json:"match_details"`
	UnmappedColumns []UnmappedColumn       `json:"unmapped_columns"`
	Relationships   []RelationshipDecision `json:"relationships,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
}

// Statistics aggregates the run.
type Statistics struct {
	TotalColumns            int           `json:"total_columns"`
	MappedColumns           int           `json:"mapped_columns"`
	UnmappedColumns         int           `json:"unmapped_columns"`
	AverageConfidence       float64       `json:"average_confidence"`
	MatchersFiredAvg        float64       `json:"matchers_fired_avg"`
	HighConfidenceMatches   int           `json:"high_confidence_matches"`
	MediumConfidenceMatches int           `json:"medium_confidence_matches"`
	LowConfidenceMatches    int           `json:"low_confidence_matches"`
	MatchersFailed          int           `json:"matchers_failed"`
	MatchersTimedOut        int           `json:"matchers_timeout"`
	RelationshipsAccepted   int           `json:"relationships_accepted"`
	RelationshipsRejected   int           `json:"relationships_rejected"`
	Duration                time.Duration `json:"duration"`
}

// MatchDetail is the decision for one mapped column.
type MatchDetail struct {
	ColumnName      string                     `json:"column_name"`
	MatchedProperty string                     `json:"matched_property"`
	MatcherName     string                     `json:"matcher_name"`
	ConfidenceScore float64                    `json:"confidence_score"`
	MatchType       matcher.MatchKind          `json:"match_type"`
	MatchedVia      string                     `json:"matched_via"`
	Justification   string                     `json:"justification,omitempty"`
	Evidence        []matcher.EvidenceItem     `json:"evidence"`
	EvidenceGroups  []matcher.EvidenceGroup    `json:"evidence_groups,omitempty"`
	Reasoning       string                     `json:"reasoning,omitempty"`
	Performance     matcher.PerformanceMetrics `json:"performance"`
}

// UnmappedColumn records a column that got no acceptable match, with the
// best rejected candidate when there was one.
type UnmappedColumn struct {
	ColumnName     string  `json:"column_name"`
	Reason         string  `json:"reason"`
	InferredType   string  `json:"inferred_type,omitempty"`
	BestCandidate  string  `json:"best_candidate,omitempty"`
	BestMatcher    string  `json:"best_matcher,omitempty"`
	BestConfidence float64 `json:"best_confidence,omitempty"`
}

// RelationshipDecision records one attempt to turn a column into a link to
// another record set.
type RelationshipDecision struct {
	Column           string       `json:"column"`
	ReferencedEntity string       `json:"referenced_entity"`
	TargetDataset    string       `json:"target_dataset,omitempty"`
	TargetColumn     string       `json:"target_column,omitempty"`
	Predicate        string       `json:"predicate,omitempty"`
	TargetClass      string       `json:"target_class,omitempty"`
	Overlap          ValueOverlap `json:"overlap"`
	Accepted         bool         `json:"accepted"`
	Reason           string       `json:"reason"`
}

// ReportBuilder accumulates decisions. It is safe for concurrent use.
// Build returns an independent snapshot, so a builder can keep growing
// after a report was taken without affecting it.
type ReportBuilder struct {
	mu            sync.Mutex
	dataset       string
	targetClass   string
	started       time.Time
	details       []MatchDetail
	unmapped      []UnmappedColumn
	relationships []RelationshipDecision
	warnings      []string
	fired         []int
	failed        int
	timedOut      int
}

// NewReportBuilder starts a report for dataset aligned to targetClass.
func NewReportBuilder(dataset, targetClass string) *ReportBuilder {
	return &ReportBuilder{dataset: dataset, targetClass: targetClass, started: time.Now()}
}

// AddMatch records a mapped column.
func (b *ReportBuilder) AddMatch(d MatchDetail) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.details = append(b.details, d)
	b.count(d.Performance)
}

// AddUnmapped records an unmapped column and the matcher metrics of its run.
func (b *ReportBuilder) AddUnmapped(u UnmappedColumn, perf matcher.PerformanceMetrics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unmapped = append(b.unmapped, u)
	b.count(perf)
}

// AddRelationship records a relationship decision.
func (b *ReportBuilder) AddRelationship(d RelationshipDecision) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relationships = append(b.relationships, d)
}

// Warn adds a run-level warning.
func (b *ReportBuilder) Warn(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warnings = append(b.warnings, msg)
}

func (b *ReportBuilder) count(perf matcher.PerformanceMetrics) {
	b.fired = append(b.fired, perf.MatchersSucceeded)
	b.failed += perf.MatchersFailed
	b.timedOut += perf.MatchersTimedOut
}

// Build computes the statistics and returns the finished report.
func (b *ReportBuilder) Build() *Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := &Report{
		SchemaVersion:   ReportSchemaVersion,
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Dataset:         b.dataset,
		TargetClass:     b.targetClass,
		MatchDetails:    slices.Clone(b.details),
		UnmappedColumns: slices.Clone(b.unmapped),
		Relationships:   slices.Clone(b.relationships),
		Warnings:        slices.Clone(b.warnings),
	}
	if r.MatchDetails == nil {
		r.MatchDetails = []MatchDetail{}
	}
	if r.UnmappedColumns == nil {
		r.UnmappedColumns = []UnmappedColumn{}
	}

	s := &r.Statistics
	s.MappedColumns = len(r.MatchDetails)
	s.UnmappedColumns = len(r.UnmappedColumns)
	s.TotalColumns = s.MappedColumns + s.UnmappedColumns
	s.MatchersFailed = b.failed
	s.MatchersTimedOut = b.timedOut
	s.Duration = time.Since(b.started)

	var sum float64
	for _, d := range r.MatchDetails {
		sum += d.ConfidenceScore
		switch {
		case d.ConfidenceScore >= HighConfidence:
			s.HighConfidenceMatches++
		case d.ConfidenceScore >= MediumConfidence:
			s.MediumConfidenceMatches++
		default:
			s.LowConfidenceMatches++
		}
	}
	if s.MappedColumns > 0 {
		s.AverageConfidence = round3(sum / float64(s.MappedColumns))
	}
	if len(b.fired) > 0 {
		total := 0
		for _, n := range b.fired {
			total += n
		}
		s.MatchersFiredAvg = round3(float64(total) / float64(len(b.fired)))
	}
	for _, d := range r.Relationships {
		if d.Accepted {
			s.RelationshipsAccepted++
		} else {
			s.RelationshipsRejected++
		}
	}
	return r
}

// Detail returns the match detail for column.
func (r *Report) Detail(column string) (MatchDetail, bool) {
	for _, d := range r.MatchDetails {
		if d.ColumnName == column {
			return d, true
		}
	}
	return MatchDetail{}, false
}

// Unmapped returns the unmapped entry for column.
func (r *Report) Unmapped(column string) (UnmappedColumn, bool) {
	for _, u := range r.UnmappedColumns {
		if u.ColumnName == column {
			return u, true
		}
	}
	return UnmappedColumn{}, false
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
