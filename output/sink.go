package output

import (
	"context"
	"sync"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/rdf"
)

// Sink receives the triples of one construction run. Open is called once
// before the first Write. Close is called exactly once on every exit path;
// commit is false when the run aborted.
type Sink interface {
	Open(ctx context.Context) error
	Write(ctx context.Context, triples []rdf.Triple) error
	Close(commit bool) error
}

// MemorySink keeps triples in memory. Triples written by an aborted run are
// kept as written, so callers can inspect partial streaming output.
type MemorySink struct {
	mu        sync.Mutex
	triples   []rdf.Triple
	opened    bool
	closed    bool
	committed bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Open marks the sink as open.
func (m *MemorySink) Open(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opened {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "MemorySink", "Open", "open sink")
	}
	m.opened = true
	return nil
}

// Write appends triples.
func (m *MemorySink) Write(ctx context.Context, triples []rdf.Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opened {
		return errors.WrapFatal(errors.ErrNotStarted, "MemorySink", "Write", "write triples")
	}
	if m.closed {
		return errors.WrapFatal(errors.ErrSinkClosed, "MemorySink", "Write", "write triples")
	}
	m.triples = append(m.triples, triples...)
	return nil
}

// Close records the outcome. A second Close is an error.
func (m *MemorySink) Close(commit bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.WrapFatal(errors.ErrSinkClosed, "MemorySink", "Close", "close sink")
	}
	m.closed = true
	m.committed = commit
	return nil
}

// Triples returns a copy of everything written.
func (m *MemorySink) Triples() []rdf.Triple {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rdf.Triple(nil), m.triples...)
}

// Len returns the number of triples written.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triples)
}

// Closed reports whether Close was called and with which outcome.
func (m *MemorySink) Closed() (closed, committed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed, m.committed
}
