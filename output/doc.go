// Package output provides the triple sinks written to by the construction
// engine.
//
// A Sink is a scoped resource: the engine opens it once at the start of a
// run and closes it exactly once on every exit path, passing commit=false
// when the run aborted.
//
// MemorySink keeps triples in memory and is mostly useful in tests and for
// small graphs. FileSink serializes through the cayley N-Quads writer
// (N-Triples when no graph is configured) behind a buffered writer. With
// FileConfig.Atomic set, output goes to a temporary file that is renamed
// into place on commit and removed on abort, so a failed aggregated run
// never leaves a partial file. Streaming runs that want their partial
// output kept on abort should leave Atomic unset.
//
// Quick start:
//
//	sink, err := output.NewFileSink(output.DefaultFileConfig("out/loans.nt"), logger)
//	if err != nil {
//		return err
//	}
//	report, err := engine.Run(ctx, source, sink)
package output
