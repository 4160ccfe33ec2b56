package matcher

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/pkg/worker"
)

// PipelineConfig tunes MatchAll.
type PipelineConfig struct {
	// Parallel runs matchers concurrently. MatchOptions may override it.
	Parallel bool `json:"parallel" mapstructure:"parallel"`
	// MaxWorkers bounds concurrent matchers per call.
	MaxWorkers int `json:"max_workers" mapstructure:"max_workers"`
	// TopK bounds the evidence list.
	TopK int `json:"top_k" mapstructure:"top_k"`
	// MatcherTimeout bounds each matcher call.
	MatcherTimeout time.Duration `json:"matcher_timeout" mapstructure:"matcher_timeout"`
	// DatatypeBoost is added to the winner when the datatype matcher
	// agrees with it.
	DatatypeBoost float64 `json:"datatype_boost" mapstructure:"datatype_boost"`
	// DatatypeSoloCap caps a datatype-only decision.
	DatatypeSoloCap float64 `json:"datatype_solo_cap" mapstructure:"datatype_solo_cap"`
}

// DefaultPipelineConfig returns the defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Parallel:        true,
		MaxWorkers:      8,
		TopK:            5,
		MatcherTimeout:  5 * time.Second,
		DatatypeBoost:   0.05,
		DatatypeSoloCap: 0.55,
	}
}

// Validate checks the configuration.
func (c PipelineConfig) Validate() error {
	switch {
	case c.MaxWorkers <= 0:
		return fmt.Errorf("max_workers must be positive")
	case c.TopK <= 0:
		return fmt.Errorf("top_k must be positive")
	case c.MatcherTimeout <= 0:
		return fmt.Errorf("matcher_timeout must be positive")
	case c.DatatypeBoost < 0 || c.DatatypeBoost > 0.5:
		return fmt.Errorf("datatype_boost must be in [0, 0.5]")
	case c.DatatypeSoloCap < 0 || c.DatatypeSoloCap > KindDatatype.Bounds().Max:
		return fmt.Errorf("datatype_solo_cap must be in [0, %.2f]", KindDatatype.Bounds().Max)
	}
	return nil
}

// MatchOptions are per-call settings.
type MatchOptions struct {
	Parallel bool
	TopK     int
}

// Outcome is the decision for one column.
type Outcome struct {
	Column    string
	Winner    *MatchResult
	Evidence  []MatchResult
	Groups    []EvidenceGroup
	Reasoning string
	Metrics   PerformanceMetrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records matcher outcomes in m.
func WithMetrics(m *metric.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// MatcherPoolMetricsPrefix names the worker pool metrics of a pipeline.
const MatcherPoolMetricsPrefix = "rdfmap_matcher_pool"

// WithMetricsRegistry registers worker pool metrics on registry once; every
// MatchAll call reports queue depth, submissions and processing time to them.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(p *Pipeline) {
		p.registry = registry
	}
}

// Pipeline runs registered matchers against a column and merges their
// results into a deterministic decision. Register all matchers before the
// first MatchAll; MatchAll itself is safe for concurrent use.
type Pipeline struct {
	cfg      PipelineConfig
	matchers []Matcher
	logger   *slog.Logger
	metrics  *metric.Metrics
	latency  *latencyTracker
	registry *metric.MetricsRegistry
	pool     *worker.Metrics
}

// NewPipeline creates an empty pipeline.
func NewPipeline(cfg PipelineConfig, opts ...Option) *Pipeline {
	defaults := DefaultPipelineConfig()
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaults.MaxWorkers
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.MatcherTimeout <= 0 {
		cfg.MatcherTimeout = defaults.MatcherTimeout
	}
	p := &Pipeline{
		cfg:     cfg,
		logger:  slog.Default(),
		latency: newLatencyTracker(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "matcher-pipeline")
	if p.registry != nil {
		m, err := worker.NewMetrics(p.registry, MatcherPoolMetricsPrefix)
		if err != nil {
			p.logger.Warn("Matcher pool metrics disabled", "error", err)
		}
		p.pool = m
	}
	return p
}

// Register appends matchers. Registration order is the final tie-break.
func (p *Pipeline) Register(matchers ...Matcher) *Pipeline {
	p.matchers = append(p.matchers, matchers...)
	return p
}

// Matchers returns the registered matcher names in registration order.
func (p *Pipeline) Matchers() []string {
	names := make([]string, len(p.matchers))
	for i, m := range p.matchers {
		names[i] = m.Name()
	}
	return names
}

// DefaultOptions returns the configured per-call options.
func (p *Pipeline) DefaultOptions() MatchOptions {
	return MatchOptions{Parallel: p.cfg.Parallel, TopK: p.cfg.TopK}
}

// Latency returns cumulative per-matcher latency statistics.
func (p *Pipeline) Latency() map[string]LatencyStats {
	return p.latency.snapshot()
}

type task struct {
	index   int
	matcher Matcher
	result  atomic.Pointer[MatchResult]
}

// MatchAll runs every enabled matcher against column. Matcher errors,
// panics and timeouts are recorded in the outcome's metrics and never
// returned; the only error is cancellation of ctx.
func (p *Pipeline) MatchAll(ctx context.Context, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, mctx Context, opts MatchOptions) (*Outcome, error) {
	start := time.Now()
	if opts.TopK <= 0 {
		opts.TopK = p.cfg.TopK
	}

	var tasks []*task
	for _, m := range p.matchers {
		if m.Enabled() {
			tasks = append(tasks, &task{index: len(tasks), matcher: m})
		}
	}

	results := make([]worker.Result[*task], len(tasks))
	handled := make([]bool, len(tasks))
	if len(tasks) > 0 {
		if err := p.dispatch(ctx, tasks, column, candidates, mctx, opts, results, handled); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "Pipeline", "MatchAll", "match column "+column.Name)
	}

	perf := PerformanceMetrics{MatchersRun: len(tasks)}
	hist := newLatencyHistogram()
	var evidence []MatchResult

	for i, t := range tasks {
		name := t.matcher.Name()
		if !handled[i] {
			perf.MatchersFailed++
			perf.Failures = append(perf.Failures, Failure{Matcher: name, Outcome: "error", Error: "not run"})
			continue
		}
		res := results[i]
		recordLatency(hist, res.Duration)
		p.latency.record(name, res.Duration)

		label, failure := p.classify(t, res, column.Name)
		switch label {
		case "match":
			perf.MatchersSucceeded++
			r := *t.result.Load()
			r.Priority = t.matcher.Priority()
			r.order = t.index
			evidence = append(evidence, r)
		case "no_match":
			perf.MatchersNoMatch++
		case "below_threshold":
			perf.BelowThreshold++
		case "timeout":
			perf.MatchersTimedOut++
			perf.Failures = append(perf.Failures, *failure)
		default:
			perf.MatchersFailed++
			perf.Failures = append(perf.Failures, *failure)
		}
		p.metrics.RecordMatcher(name, label, res.Duration)
	}

	out := p.decide(column.Name, evidence, opts.TopK)
	perf.Duration = time.Since(start)
	if hist.TotalCount() > 0 {
		perf.P50 = quantile(hist, 50)
		perf.P95 = quantile(hist, 95)
		perf.Max = time.Duration(hist.Max()) * time.Microsecond
	}
	out.Metrics = perf

	if len(perf.Failures) > 0 {
		p.logger.Warn("Matchers failed for column",
			"column", column.Name,
			"failed", perf.MatchersFailed,
			"timed_out", perf.MatchersTimedOut)
	}
	p.logger.Debug("Column matched",
		"column", column.Name,
		"matched", out.Winner != nil,
		"evidence", len(out.Evidence),
		"duration", perf.Duration)
	return out, nil
}

func (p *Pipeline) dispatch(ctx context.Context, tasks []*task, column dataset.ColumnProfile, candidates []ontology.CandidateProperty, mctx Context, opts MatchOptions, results []worker.Result[*task], handled []bool) error {
	workers := 1
	if opts.Parallel {
		workers = min(len(tasks), p.cfg.MaxWorkers)
	}

	processor := func(taskCtx context.Context, t *task) error {
		r, err := t.matcher.Match(taskCtx, column, candidates, mctx)
		if err != nil {
			return err
		}
		t.result.Store(r)
		return nil
	}
	// Each handler call writes only its own slot; Stop orders the writes
	// before the reads in MatchAll.
	onResult := func(res worker.Result[*task]) {
		results[res.Work.index] = res
		handled[res.Work.index] = true
	}

	pool := worker.NewPool(workers, len(tasks), processor,
		worker.WithTaskTimeout[*task](p.cfg.MatcherTimeout),
		worker.WithResultHandler(onResult),
		worker.WithMetrics[*task](p.pool))
	if err := pool.Start(ctx); err != nil {
		return errors.Wrap(err, "Pipeline", "MatchAll", "start matcher pool")
	}
	for _, t := range tasks {
		if err := pool.Submit(t); err != nil {
			_ = pool.Stop(time.Second)
			return errors.Wrap(err, "Pipeline", "MatchAll", "submit matcher "+t.matcher.Name())
		}
	}

	waves := (len(tasks) + workers - 1) / workers
	stopTimeout := p.cfg.MatcherTimeout*time.Duration(waves) + time.Second
	if err := pool.Stop(stopTimeout); err != nil {
		return errors.Wrap(err, "Pipeline", "MatchAll", "drain matcher pool")
	}
	if stats := pool.Stats(); stats.Panicked > 0 || stats.TimedOut > 0 {
		p.logger.Debug("Matcher pool drained with abandoned tasks",
			"column", column.Name,
			"processed", stats.Processed,
			"timed_out", stats.TimedOut,
			"panicked", stats.Panicked)
	}
	return nil
}

// classify turns a pool result into an outcome label, and a Failure for
// anything that did not complete normally.
func (p *Pipeline) classify(t *task, res worker.Result[*task], column string) (string, *Failure) {
	name := t.matcher.Name()
	fail := func(outcome string, sentinel error, cause error) (string, *Failure) {
		err := fmt.Errorf("%w: %s on column %q: %v", sentinel, name, column, cause)
		return outcome, &Failure{Matcher: name, Outcome: outcome, Error: err.Error()}
	}

	switch res.Outcome {
	case worker.OutcomeTimedOut:
		return fail("timeout", errors.ErrMatcherTimeout, res.Err)
	case worker.OutcomePanicked:
		return fail("panic", errors.ErrMatcherPanic, res.Err)
	case worker.OutcomeFailed:
		if stderrors.Is(res.Err, context.DeadlineExceeded) {
			return fail("timeout", errors.ErrMatcherTimeout, res.Err)
		}
		return fail("error", errors.ErrMatcherFailed, res.Err)
	}

	r := t.result.Load()
	switch {
	case r == nil:
		return "no_match", nil
	case r.Property == nil:
		return fail("error", errors.ErrMatcherFailed, fmt.Errorf("result without property"))
	case !r.Kind.Bounds().Contains(r.Confidence):
		b := r.Kind.Bounds()
		return fail("error", errors.ErrMatcherFailed,
			fmt.Errorf("confidence %.3f outside [%.2f, %.2f] for %s", r.Confidence, b.Min, b.Max, r.Kind))
	case r.Confidence < t.matcher.Threshold():
		return "below_threshold", nil
	default:
		return "match", nil
	}
}

// decide picks the winner. Primary-tier evidence outranks fallback-tier
// evidence, which outranks a datatype-only signal. Within the ranked set the
// order is confidence, then priority, then registration order.
func (p *Pipeline) decide(column string, evidence []MatchResult, topK int) *Outcome {
	var primary, fallback, boosters []MatchResult
	for _, r := range evidence {
		switch {
		case r.Kind == KindDatatype:
			boosters = append(boosters, r)
		case r.Priority >= TierFallback:
			fallback = append(fallback, r)
		default:
			primary = append(primary, r)
		}
	}
	sortResults(primary)
	sortResults(fallback)
	sortResults(boosters)

	out := &Outcome{Column: column}
	var ranked []MatchResult
	switch {
	case len(primary) > 0:
		ranked = primary
	case len(fallback) > 0:
		ranked = fallback
	case len(boosters) > 0:
		ranked = make([]MatchResult, len(boosters))
		copy(ranked, boosters)
		for i := range ranked {
			if ranked[i].Confidence > p.cfg.DatatypeSoloCap {
				ranked[i].Confidence = p.cfg.DatatypeSoloCap
			}
		}
		sortResults(ranked)
		boosters = nil
	default:
		out.Groups = GroupEvidence(nil)
		out.Reasoning = Summarize(column, nil, out.Groups)
		return out
	}

	winner := ranked[0]
	for _, b := range boosters {
		if b.Property.IRI == winner.Property.IRI && p.cfg.DatatypeBoost > 0 {
			boosted := winner.Kind.Bounds().Clamp(winner.Confidence + p.cfg.DatatypeBoost)
			if boosted > winner.Confidence {
				winner.Justification += fmt.Sprintf("; datatype agreement +%.2f", boosted-winner.Confidence)
				winner.Confidence = boosted
			}
			break
		}
	}

	rest := append(append([]MatchResult(nil), ranked[1:]...), boosters...)
	sortResults(rest)
	list := append([]MatchResult{winner}, rest...)
	if len(list) > topK {
		list = list[:topK]
	}

	items := make([]EvidenceItem, len(list))
	for i, r := range list {
		items[i] = r.Evidence()
	}
	out.Winner = &list[0]
	out.Evidence = list
	out.Groups = GroupEvidence(items)
	out.Reasoning = Summarize(column, out.Winner, out.Groups)
	return out
}

func sortResults(rs []MatchResult) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.order < b.order
	})
}
