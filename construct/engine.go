package construct

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Rxcthefirst/RdfMapper-sub000/dataset"
	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/mapping"
	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
	"github.com/Rxcthefirst/RdfMapper-sub000/output"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records run metrics. nil disables them.
func WithMetrics(m *metric.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine converts rows into triples for one resolved mapping. It holds no
// per-run state, so one Engine can serve several sequential or concurrent
// runs.
type Engine struct {
	mapping  *mapping.Resolved
	reasoner *ontology.Reasoner
	cfg      Config
	conv     *converter
	logger   *slog.Logger
	metrics  *metric.Metrics
}

// NewEngine creates an engine. Invalid configuration is fatal.
func NewEngine(m *mapping.Resolved, reasoner *ontology.Reasoner, cfg Config, opts ...Option) (*Engine, error) {
	if m == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Engine", "NewEngine", "mapping required")
	}
	if reasoner == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Engine", "NewEngine", "reasoner required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapFatal(err, "Engine", "NewEngine", "validate config")
	}
	e := &Engine{
		mapping:  m,
		reasoner: reasoner,
		cfg:      cfg,
		conv:     newConverter(m, reasoner, cfg),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "construct-engine")
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// run is the state of one Run call.
type run struct {
	*Engine
	sm     stateMachine
	rb     *reportBuilder
	val    *validator
	graph  *graph
	policy mapping.ErrorPolicy
	batch  int
}

// Run pulls chunks from source until io.EOF and writes triples to sink.
//
// The sink is opened once and closed exactly once whatever happens, with
// commit set only when the run reaches StateDone. In aggregated mode nothing
// reaches the sink before the source is exhausted. In streaming mode each
// chunk is written as soon as it is converted, so an aborted run may leave
// partial output unless the sink discards it on rollback.
//
// Row conversion errors follow the mapping's error policy. With fail-fast
// the first one aborts the run. Structural violations never abort. The
// returned report is non-nil even when err is not.
func (e *Engine) Run(ctx context.Context, source dataset.ChunkSource, sink output.Sink) (report *ProcessingReport, err error) {
	r := e.newRun()
	start := time.Now()

	e.logger.Info("Construction run started",
		"mode", e.cfg.Mode,
		"entities", len(e.mapping.Entities),
		"columns", len(e.mapping.Columns),
		"relationships", len(e.mapping.Relationships),
		"on_error", r.policy)

	opened := false
	defer func() {
		commit := err == nil && r.sm.state == StateDone
		if opened {
			if closeErr := sink.Close(commit); closeErr != nil {
				e.logger.Error("Failed to close sink", "error", closeErr, "commit", commit)
				if err == nil {
					err = errors.Wrap(closeErr, "Engine", "Run", "close sink")
				}
			}
		}
		if err != nil && !r.sm.state.Terminal() {
			r.sm.state = StateAborted
		}
		status := "done"
		if r.sm.state == StateAborted {
			status = "aborted"
			r.graph.reset()
		}
		report = r.rb.finish(r.sm.state, err)
		e.metrics.ObserveRun("construct", status, time.Since(start))
		e.logger.Info("Construction run finished",
			"state", r.sm.state,
			"total_rows", report.TotalRows,
			"failed_rows", report.FailedRows,
			"triples", report.TriplesEmitted,
			"domain_violations", report.DomainViolations,
			"range_violations", report.RangeViolations,
			"duration", report.Duration)
	}()

	if err := sink.Open(ctx); err != nil {
		return nil, e.abort(r, errors.Wrap(err, "Engine", "Run", "open sink"))
	}
	opened = true

	for {
		chunk, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, e.abort(r, errors.Wrap(err, "Engine", "Run", "read chunk"))
		}
		if err := r.sm.transition(StateReceiving); err != nil {
			return nil, e.abort(r, err)
		}
		if err := r.processChunk(ctx, chunk, sink); err != nil {
			return nil, e.abort(r, err)
		}
	}

	if err := r.sm.transition(StateFlushing); err != nil {
		return nil, e.abort(r, err)
	}
	if err := r.flush(ctx, sink); err != nil {
		return nil, e.abort(r, err)
	}
	if err := r.sm.transition(StateDone); err != nil {
		return nil, e.abort(r, err)
	}
	return nil, nil
}

func (e *Engine) newRun() *run {
	policy := e.mapping.Options.OnError
	if policy == "" {
		policy = mapping.PolicyReport
	}
	batch := e.mapping.Options.ChunkSize
	if batch <= 0 {
		batch = mapping.DefaultOptions().ChunkSize
	}
	rb := newReportBuilder(e.cfg.Mode, e.cfg)
	return &run{
		Engine: e,
		rb:     rb,
		val:    &validator{reasoner: e.reasoner, report: rb, metrics: e.metrics},
		graph:  newGraph(e.mapping.Options.AggregateDuplicates),
		policy: policy,
		batch:  batch,
	}
}

// abort moves the run to StateAborted and returns the error wrapped with
// errors.ErrRunAborted.
func (e *Engine) abort(r *run, cause error) error {
	if !r.sm.state.Terminal() {
		if err := r.sm.transition(StateAborted); err != nil {
			e.logger.Error("Invalid abort transition", "error", err)
		}
	}
	e.logger.Warn("Construction run aborted", "error", cause)
	if errors.IsFatal(cause) {
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrRunAborted, cause), "Engine", "Run", "construct")
	}
	return errors.Wrap(fmt.Errorf("%w: %w", errors.ErrRunAborted, cause), "Engine", "Run", "construct")
}

func (r *run) processChunk(ctx context.Context, chunk dataset.Chunk, sink output.Sink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var pending []emitted
	for i, row := range chunk.Rows {
		index := chunk.Offset + i
		r.rb.report.TotalRows++

		out, rowErr := r.conv.convert(index, row)
		if rowErr != nil {
			if err := r.rowFailed(rowErr); err != nil {
				return err
			}
			continue
		}
		r.accept(out)
		if r.cfg.Mode == ModeStreaming {
			pending = append(pending, out.triples...)
			continue
		}
		r.graph.add(out)
	}

	r.logger.Debug("Chunk converted",
		"offset", chunk.Offset,
		"rows", len(chunk.Rows),
		"pending_triples", len(pending),
		"graph_triples", r.graph.size)

	if len(pending) == 0 {
		return nil
	}
	if err := sink.Write(ctx, plain(pending)); err != nil {
		return errors.Wrap(err, "Engine", "processChunk", "write chunk")
	}
	r.wrote(len(pending))
	return nil
}

// rowFailed applies the error policy. A non-nil return aborts the run.
func (r *run) rowFailed(rowErr *RowError) error {
	r.rb.report.FailedRows++
	r.metrics.RecordRow("failed")
	switch r.policy {
	case mapping.PolicySkip:
		return nil
	case mapping.PolicyFailFast:
		r.rb.recordError(rowErr)
		return errors.WrapFatal(rowErr, "Engine", "processChunk", "convert row")
	default:
		r.rb.recordError(rowErr)
		r.logger.Warn("Row conversion failed", "row", rowErr.Row, "column", rowErr.Column, "error", rowErr.Err)
		return nil
	}
}

// accept counts a converted row and runs the per-row checks.
func (r *run) accept(out *rowOutput) {
	rep := &r.rb.report
	rep.SuccessfulRows++
	r.metrics.RecordRow("succeeded")

	for _, t := range out.triples {
		switch t.origin {
		case originInferredType:
			rep.InferredTypes++
			r.metrics.RecordMaterialized("supertype")
		case originInverse:
			rep.InverseLinksAdded++
			r.metrics.RecordMaterialized("inverse")
		case originSymmetric:
			rep.SymmetricLinksAdded++
			r.metrics.RecordMaterialized("symmetric")
		case originTransitive:
			rep.TransitiveLinksAdded++
			r.metrics.RecordMaterialized("transitive")
		}
	}

	r.val.checkRow(out)
	if r.cfg.Mode == ModeStreaming {
		for subject, preds := range out.mapped {
			r.val.checkCardinality(out.row, subject, out.counts(subject), preds)
		}
	}
}

// flush writes the aggregated graph in batches. Cardinality is checked per
// subject over everything the run produced for it.
func (r *run) flush(ctx context.Context, sink output.Sink) error {
	if r.cfg.Mode != ModeAggregated {
		return nil
	}
	r.rb.report.DuplicatesMerged = r.graph.duplicates

	var batch []emitted
	write := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.Write(ctx, plain(batch)); err != nil {
			return errors.Wrap(err, "Engine", "flush", "write batch")
		}
		r.wrote(len(batch))
		batch = batch[:0]
		return nil
	}

	err := r.graph.each(func(subject string, e *subjectEntry) error {
		r.val.checkCardinality(e.firstRow, subject, e.counts(), e.mapped)
		batch = append(batch, e.triples...)
		if len(batch) >= r.batch {
			return write()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := write(); err != nil {
		return err
	}
	r.graph.reset()
	return nil
}

func (r *run) wrote(n int) {
	r.rb.report.TriplesEmitted += n
	r.metrics.AddTriples(string(r.cfg.Mode), n)
}
