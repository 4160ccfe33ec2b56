// Package errors provides the error classification used by the ontology
// reasoner, the matcher pipeline and the construction engine.
//
// Errors fall into three classes:
//
//   - Transient: remote embedding services timing out or rate limiting (retry)
//   - Invalid: a row that cannot be converted, a value that cannot be coerced
//   - Fatal: ontology load or configuration validation failures that invalidate a run
//
// Wrapping follows one pattern everywhere:
//
//	return errors.WrapFatal(err, "Reasoner", "Load", "read ontology file")
//	// "Reasoner.Load: read ontology file failed: <cause>"
//
// Classification is preserved through wrapping chains, so callers can test with
// IsFatal/IsInvalid/IsTransient or errors.Is against the sentinel values.
package errors
