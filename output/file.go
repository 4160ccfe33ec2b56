package output

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
	"github.com/Rxcthefirst/RdfMapper-sub000/rdf"
)

// FileConfig holds configuration for FileSink.
type FileConfig struct {
	// Path of the output file.
	Path string `json:"path" mapstructure:"path"`
	// Graph, when set, names the graph of every statement (N-Quads output).
	Graph string `json:"graph,omitempty" mapstructure:"graph"`
	// Atomic writes to a temporary file renamed over Path on commit. An
	// aborted run then leaves no output at all.
	Atomic bool `json:"atomic" mapstructure:"atomic"`
	// BufferSize is the write buffer size in bytes.
	BufferSize int `json:"buffer_size" mapstructure:"buffer_size"`
}

// Validate checks the configuration for errors
func (c FileConfig) Validate() error {
	if c.Path == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "FileConfig", "Validate", "path is required")
	}
	if c.BufferSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "FileConfig", "Validate",
			"buffer_size cannot be negative")
	}
	return nil
}

// DefaultFileConfig returns default configuration for a file sink
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		Atomic:     true,
		BufferSize: 64 * 1024,
	}
}

// FileSink writes N-Triples, or N-Quads when a graph is configured.
type FileSink struct {
	cfg    FileConfig
	logger *slog.Logger

	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	writer *nquads.Writer
	closed bool

	triplesWritten int64
	errors         int64
}

// NewFileSink creates a file sink. A nil logger means slog.Default().
func NewFileSink(cfg FileConfig, logger *slog.Logger) (*FileSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{cfg: cfg, logger: logger.With("component", "file-sink")}, nil
}

// Open creates the output directory and file.
func (f *FileSink) Open(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file != nil || f.closed {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "FileSink", "Open", "check open state")
	}

	dir := filepath.Dir(f.cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapFatal(err, "FileSink", "Open", "create output directory")
	}

	var (
		file *os.File
		err  error
	)
	if f.cfg.Atomic {
		file, err = os.CreateTemp(dir, "."+filepath.Base(f.cfg.Path)+".*.tmp")
	} else {
		file, err = os.OpenFile(f.cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	}
	if err != nil {
		return errors.WrapFatal(err, "FileSink", "Open", "open output file")
	}

	size := f.cfg.BufferSize
	if size <= 0 {
		size = 4096
	}
	f.file = file
	f.buf = bufio.NewWriterSize(file, size)
	f.writer = nquads.NewWriter(f.buf)

	f.logger.Debug("File sink opened",
		"path", f.cfg.Path,
		"temp_file", file.Name(),
		"atomic", f.cfg.Atomic)
	return nil
}

// Write serializes triples through the buffered writer.
func (f *FileSink) Write(ctx context.Context, triples []rdf.Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errors.WrapFatal(errors.ErrSinkClosed, "FileSink", "Write", "write triples")
	}
	if f.writer == nil {
		return errors.WrapFatal(errors.ErrNotStarted, "FileSink", "Write", "write triples")
	}

	var label quad.Value
	if f.cfg.Graph != "" {
		label = quad.IRI(f.cfg.Graph)
	}
	for _, t := range triples {
		q := t.Quad()
		q.Label = label
		if err := f.writer.WriteQuad(q); err != nil {
			atomic.AddInt64(&f.errors, 1)
			return errors.WrapTransient(err, "FileSink", "Write", fmt.Sprintf("write %s", t))
		}
		atomic.AddInt64(&f.triplesWritten, 1)
	}
	return nil
}

// Close flushes and closes the file. With Atomic set, commit renames the
// temporary file into place and a rollback removes it. Without Atomic,
// whatever was written stays on disk either way.
func (f *FileSink) Close(commit bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return errors.WrapFatal(errors.ErrSinkClosed, "FileSink", "Close", "close sink")
	}
	f.closed = true
	if f.file == nil {
		return nil
	}

	var firstErr error
	if err := f.writer.Close(); err != nil {
		firstErr = errors.WrapTransient(err, "FileSink", "Close", "close writer")
	}
	if err := f.buf.Flush(); err != nil && firstErr == nil {
		firstErr = errors.WrapTransient(err, "FileSink", "Close", "flush buffer")
	}
	tmp := f.file.Name()
	if err := f.file.Close(); err != nil && firstErr == nil {
		firstErr = errors.WrapTransient(err, "FileSink", "Close", "close file")
	}
	f.file, f.buf, f.writer = nil, nil, nil

	if !f.cfg.Atomic {
		f.logger.Info("File sink closed",
			"path", f.cfg.Path,
			"committed", commit,
			"triples_written", atomic.LoadInt64(&f.triplesWritten))
		return firstErr
	}

	if commit && firstErr == nil {
		if err := os.Rename(tmp, f.cfg.Path); err != nil {
			firstErr = errors.WrapFatal(err, "FileSink", "Close", "rename output file")
		}
	}
	if !commit || firstErr != nil {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			f.logger.Warn("Failed to remove temporary output", "error", err, "path", tmp)
		}
	}

	f.logger.Info("File sink closed",
		"path", f.cfg.Path,
		"committed", commit && firstErr == nil,
		"triples_written", atomic.LoadInt64(&f.triplesWritten))
	return firstErr
}

// TriplesWritten returns the number of triples serialized so far.
func (f *FileSink) TriplesWritten() int64 {
	return atomic.LoadInt64(&f.triplesWritten)
}

// Errors returns the number of failed writes.
func (f *FileSink) Errors() int64 {
	return atomic.LoadInt64(&f.errors)
}
