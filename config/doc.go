// Package config holds the engine configuration.
//
// Config gathers one section per component: logging, the reasoner's
// calibration, matcher thresholds, the pipeline, the mapping generator, the
// construction engine, the embedding provider and metrics. DefaultConfig
// carries every calibration value as a default so deployments can tune
// them without code changes.
//
// Load reads a YAML or JSON file through viper over the defaults, then
// applies environment overrides prefixed with RDFMAP_, where dots in the
// key become underscores:
//
//	RDFMAP_PIPELINE_TOP_K=3
//	RDFMAP_CONSTRUCTION_MODE=streaming
//	RDFMAP_GENERATOR_OVERLAP_THRESHOLD=0.4
//
// The result is validated before it is returned; validation failures wrap
// errors.ErrConfigValidation.
//
// NewLogger builds the root slog logger. Components add a "component"
// attribute to the logger they are given.
package config
