// Package dataset holds the tabular inputs of the engine: column profiles
// consumed by the matchers, record sets used for relationship detection, and
// the pull-based row chunk source consumed by the construction engine.
//
// Profiles record the inferred type family, uniqueness and null ratios,
// identifier and foreign key flags, and multi-value delimiters. RecordSet
// pairs rows with their profiles; SliceSource serves rows as Chunks.
//
// Parsing of concrete source formats is left to callers; this package starts
// from already-split string values.
package dataset
