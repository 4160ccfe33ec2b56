package alignment

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/mapping"
	"github.com/Rxcthefirst/RdfMapper-sub000/matcher"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/vocabulary"
)

// Config tunes the generator.
type Config struct {
	// MinConfidence is the lowest winning confidence accepted as a mapping.
	MinConfidence float64 `json:"min_confidence" mapstructure:"min_confidence"`
	// OverlapThreshold is the minimum share of distinct foreign key values
	// that must exist in the referenced primary key.
	OverlapThreshold float64 `json:"overlap_threshold" mapstructure:"overlap_threshold"`
	// MaxConcurrentColumns bounds how many columns are matched at once.
	MaxConcurrentColumns int `json:"max_concurrent_columns" mapstructure:"max_concurrent_columns"`
	// BaseIRI is written into generated mappings.
	BaseIRI string `json:"base_iri" mapstructure:"base_iri"`
	// Namespaces are added to generated mappings and used to expand a
	// compact target class.
	Namespaces map[string]string `json:"namespaces,omitempty" mapstructure:"namespaces"`
	// SuggestTransforms adds a coercion transform matching each literal
	// datatype.
	SuggestTransforms bool `json:"suggest_transforms" mapstructure:"suggest_transforms"`
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{
		MinConfidence:        0.60,
		OverlapThreshold:     0.30,
		MaxConcurrentColumns: 4,
		BaseIRI:              "http://example.org/data/",
		SuggestTransforms:    true,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("min_confidence must be in [0, 1]")
	case c.OverlapThreshold < 0 || c.OverlapThreshold > 1:
		return fmt.Errorf("overlap_threshold must be in [0, 1]")
	case c.MaxConcurrentColumns <= 0:
		return fmt.Errorf("max_concurrent_columns must be positive")
	case c.BaseIRI == "":
		return fmt.Errorf("base_iri is required")
	}
	return nil
}

// ColumnMatcher scores one column. *matcher.Pipeline implements it.
type ColumnMatcher interface {
	MatchAll(ctx context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, mctx matcher.Context, opts matcher.MatchOptions) (*matcher.Outcome, error)
	DefaultOptions() matcher.MatchOptions
}

// Input is one dataset to align.
type Input struct {
	Dataset dataset.RecordSet
	// TargetClass is a full or compact class IRI.
	TargetClass string
	// Related record sets are searched when a column looks like a foreign key.
	Related []dataset.RecordSet
}

// Result is a generated mapping and the report explaining it.
type Result struct {
	Mapping *mapping.Definition
	Report  *Report
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records column decisions and run durations. nil disables them.
func WithMetrics(m *metric.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// Generator turns column profiles into a mapping definition for one target
// class. It is safe for concurrent use.
type Generator struct {
	reasoner *ontology.Reasoner
	pipeline ColumnMatcher
	cfg      Config
	ns       vocabulary.Namespaces
	logger   *slog.Logger
	metrics  *metric.Metrics
}

// NewGenerator creates a generator.
func NewGenerator(reasoner *ontology.Reasoner, pipeline ColumnMatcher, cfg Config, opts ...Option) (*Generator, error) {
	if reasoner == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Generator", "NewGenerator", "reasoner required")
	}
	if pipeline == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Generator", "NewGenerator", "pipeline required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrConfigValidation, err), "Generator", "NewGenerator", "validate config")
	}
	g := &Generator{
		reasoner: reasoner,
		pipeline: pipeline,
		cfg:      cfg,
		ns:       vocabulary.DefaultNamespaces().Merge(cfg.Namespaces),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "alignment-generator")
	return g, nil
}

// Generate aligns every column of in.Dataset to the properties applicable
// to in.TargetClass and returns the resulting mapping with its report.
//
// Columns are matched concurrently but reported in dataset order. Columns
// whose best match is below MinConfidence are reported as unmapped. Columns
// that look like foreign keys become relationships when a related record
// set shares enough values with them; otherwise they stay literal mappings.
func (g *Generator) Generate(ctx context.Context, in Input) (res *Result, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		g.metrics.ObserveRun("align", status, time.Since(start))
	}()

	class, err := g.targetClass(in.TargetClass)
	if err != nil {
		return nil, err
	}
	if len(in.Dataset.Columns) == 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: dataset %q has no columns", errors.ErrInvalidData, in.Dataset.Name),
			"Generator", "Generate", "check dataset")
	}

	rb := NewReportBuilder(in.Dataset.Name, class)
	key, err := subjectKey(in.Dataset, rb)
	if err != nil {
		return nil, err
	}

	candidates := g.reasoner.CandidateProperties(class)
	g.logger.Info("Alignment started",
		"dataset", in.Dataset.Name,
		"target_class", class,
		"columns", len(in.Dataset.Columns),
		"candidates", len(candidates),
		"related", len(in.Related))

	outcomes, err := g.matchColumns(ctx, in.Dataset.Columns, candidates, class)
	if err != nil {
		return nil, err
	}

	slug := entitySlug(class)
	def := &mapping.Definition{
		Version:    mapping.CurrentVersion,
		BaseIRI:    g.cfg.BaseIRI,
		Namespaces: maps.Clone(g.cfg.Namespaces),
		Entities: []mapping.Entity{{
			Name:        slug,
			Class:       class,
			IRITemplate: slug + "/{" + key + "}",
		}},
		Columns: make(map[string]mapping.PropertyMapping),
		Options: mapping.DefaultOptions(),
	}
	links := &resolver{
		ont:        g.reasoner.Ontology(),
		candidates: candidates,
		related:    in.Related,
		threshold:  g.cfg.OverlapThreshold,
	}

	for i, col := range in.Dataset.Columns {
		out := outcomes[i]
		if reason, ok := g.rejects(out); !ok {
			rb.AddUnmapped(unmapped(col, out, reason), out.Metrics)
			g.metrics.RecordColumn("unmapped")
			g.logger.Debug("Column unmapped", "column", col.Name, "reason", reason)
			continue
		}
		winner := out.Winner

		if col.Name != key && shouldResolve(col, winner) {
			decision, l := links.resolve(in.Dataset, col, winner)
			rb.AddRelationship(decision)
			if l != nil {
				def.Relationships = append(def.Relationships, mapping.Relationship{
					Name:        col.Name,
					Predicate:   l.predicate,
					Class:       l.class,
					IRITemplate: l.template,
				})
				rb.AddMatch(matchDetail(out, winner))
				g.metrics.RecordColumn("relationship")
				g.logger.Debug("Relationship accepted", "column", col.Name, "target", decision.TargetDataset,
					"overlap", decision.Overlap.MatchRate)
				continue
			}
			g.logger.Debug("Relationship rejected", "column", col.Name, "reason", decision.Reason)
			if winner.Property.IsObject() {
				if alt := g.literalAlternative(out); alt != nil {
					winner = alt
				} else {
					rb.Warn(fmt.Sprintf("column %q maps to object property %s as a literal; its values will not match the declared range",
						col.Name, winner.Property.IRI))
				}
			}
		}

		rb.AddMatch(matchDetail(out, winner))
		def.Columns[col.Name] = g.propertyMapping(col, winner.Property, col.Name == key)
		g.metrics.RecordColumn("mapped")
	}

	if err := def.Validate(); err != nil {
		return nil, errors.WrapFatal(err, "Generator", "Generate", "validate generated mapping")
	}

	report := rb.Build()
	g.logger.Info("Alignment finished",
		"dataset", in.Dataset.Name,
		"run_id", report.RunID,
		"mapped", report.Statistics.MappedColumns,
		"unmapped", report.Statistics.UnmappedColumns,
		"relationships", report.Statistics.RelationshipsAccepted,
		"average_confidence", report.Statistics.AverageConfidence,
		"duration", time.Since(start))

	return &Result{Mapping: def, Report: report}, nil
}

func (g *Generator) targetClass(raw string) (string, error) {
	iri, err := g.ns.Expand(raw)
	if err != nil {
		return "", errors.WrapInvalid(fmt.Errorf("%w: %q: %v", errors.ErrUnknownClass, raw, err), "Generator", "Generate", "expand target class")
	}
	if _, ok := g.reasoner.Ontology().Class(iri); !ok {
		return "", errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrUnknownClass, iri), "Generator", "Generate", "resolve target class")
	}
	return iri, nil
}

// matchColumns runs the pipeline for every column. outcomes[i] belongs to
// columns[i] whatever the completion order.
func (g *Generator) matchColumns(ctx context.Context, columns []dataset.ColumnProfile, candidates []ontology.CandidateProperty, class string) ([]*matcher.Outcome, error) {
	outcomes := make([]*matcher.Outcome, len(columns))
	mctx := matcher.Context{Columns: columns, TargetClass: class}
	opts := g.pipeline.DefaultOptions()

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.MaxConcurrentColumns)
	for i, col := range columns {
		eg.Go(func() error {
			out, err := g.pipeline.MatchAll(ectx, col, candidates, mctx, opts)
			if err != nil {
				return fmt.Errorf("column %q: %w", col.Name, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "Generator", "Generate", "match columns")
	}
	return outcomes, nil
}

// rejects returns the reason a column stays unmapped, ok=true when its
// winner is acceptable.
func (g *Generator) rejects(out *matcher.Outcome) (string, bool) {
	switch {
	case out.Winner == nil && out.Metrics.MatchersRun > 0 && out.Metrics.MatchersFailed+out.Metrics.MatchersTimedOut == out.Metrics.MatchersRun:
		return "every matcher failed or timed out", false
	case out.Winner == nil:
		return "no matcher produced a match", false
	case out.Winner.Confidence < g.cfg.MinConfidence:
		return fmt.Sprintf("best confidence %.2f below minimum %.2f", out.Winner.Confidence, g.cfg.MinConfidence), false
	}
	return "", true
}

func (g *Generator) propertyMapping(col dataset.ColumnProfile, p *ontology.Property, key bool) mapping.PropertyMapping {
	pm := mapping.PropertyMapping{
		Predicate: p.IRI,
		Datatype:  literalDatatype(p, col),
		Required:  key,
	}
	if col.IsMultiValued {
		pm.MultiValued = true
		pm.Delimiter = col.Delimiter
	}
	if g.cfg.SuggestTransforms {
		pm.Transform = coercion(pm.Datatype)
	}
	return pm
}

// literalDatatype prefers the declared datatype range and falls back to
// the column's inferred type.
func literalDatatype(p *ontology.Property, col dataset.ColumnProfile) string {
	if !p.IsObject() && vocabulary.IsDatatypeIRI(p.Range) && p.Range != vocabulary.RdfsLiteral && p.Range != vocabulary.RdfLangStr {
		return p.Range
	}
	if col.InferredType == vocabulary.FamilyUnknown {
		return ""
	}
	return vocabulary.CanonicalDatatype(col.InferredType)
}

func coercion(datatype string) string {
	switch vocabulary.FamilyOf(datatype) {
	case vocabulary.FamilyInteger:
		return "to_integer"
	case vocabulary.FamilyDecimal:
		return "to_decimal"
	case vocabulary.FamilyBoolean:
		return "to_boolean"
	case vocabulary.FamilyDate:
		return "to_date"
	case vocabulary.FamilyDateTime:
		return "to_datetime"
	default:
		return ""
	}
}

// subjectKey picks the column used in the subject IRI template: the primary
// key candidate, else the most unique column with a warning.
func subjectKey(rs dataset.RecordSet, rb *ReportBuilder) (string, error) {
	if pk, ok := rs.PrimaryKeyCandidate(); ok {
		return pk.Name, nil
	}
	var best dataset.ColumnProfile
	for _, c := range rs.Columns {
		if c.UniquenessRatio > best.UniquenessRatio {
			best = c
		}
	}
	if best.Name == "" {
		return "", errors.WrapInvalid(fmt.Errorf("%w: dataset %q has no non-empty column", errors.ErrInvalidData, rs.Name),
			"Generator", "Generate", "select subject key")
	}
	rb.Warn(fmt.Sprintf("no fully unique column; subject IRIs use %q (uniqueness %.2f)", best.Name, best.UniquenessRatio))
	return best.Name, nil
}

// literalAlternative returns the strongest non-object candidate that still
// clears MinConfidence, for columns whose relationship was rejected.
func (g *Generator) literalAlternative(out *matcher.Outcome) *matcher.MatchResult {
	for i := range out.Evidence {
		r := &out.Evidence[i]
		if !r.Property.IsObject() && r.Confidence >= g.cfg.MinConfidence {
			return r
		}
	}
	return nil
}

func matchDetail(out *matcher.Outcome, w *matcher.MatchResult) MatchDetail {
	evidence := make([]matcher.EvidenceItem, len(out.Evidence))
	for i, r := range out.Evidence {
		evidence[i] = r.Evidence()
	}
	return MatchDetail{
		ColumnName:      out.Column,
		MatchedProperty: w.Property.IRI,
		MatcherName:     w.Matcher,
		ConfidenceScore: w.Confidence,
		MatchType:       w.Kind,
		MatchedVia:      w.MatchedVia,
		Justification:   w.Justification,
		Evidence:        evidence,
		EvidenceGroups:  out.Groups,
		Reasoning:       out.Reasoning,
		Performance:     out.Metrics,
	}
}

func unmapped(col dataset.ColumnProfile, out *matcher.Outcome, reason string) UnmappedColumn {
	u := UnmappedColumn{ColumnName: col.Name, Reason: reason, InferredType: col.InferredType.String()}
	best := out.Winner
	if best == nil && len(out.Evidence) > 0 {
		best = &out.Evidence[0]
	}
	if best != nil && best.Property != nil {
		u.BestCandidate = best.Property.IRI
		u.BestMatcher = best.Matcher
		u.BestConfidence = best.Confidence
	}
	return u
}
