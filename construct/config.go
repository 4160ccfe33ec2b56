package construct

import (
	"fmt"

	"github.com/Rxcthefirst/RdfMapper-sub000/errors"
)

// Mode selects how triples reach the sink.
type Mode string

const (
	// ModeAggregated holds the graph in memory grouped by subject and writes
	// it when the source is exhausted. Nothing is written on abort.
	ModeAggregated Mode = "aggregated"
	// ModeStreaming writes each chunk's triples as soon as the chunk is
	// converted. Duplicates are kept and an abort may leave partial output.
	ModeStreaming Mode = "streaming"
)

// Config holds configuration for the construction engine.
type Config struct {
	Mode Mode `json:"mode" mapstructure:"mode"`
	// InferTypes adds an rdf:type triple for every superclass of a
	// subject's class.
	InferTypes bool `json:"infer_types" mapstructure:"infer_types"`
	// Materialize adds single-hop inverse, symmetric and transitive links
	// between resources of the same row.
	Materialize bool `json:"materialize" mapstructure:"materialize"`
	// ViolationSampleSize bounds the violation samples kept per kind.
	ViolationSampleSize int `json:"violation_sample_size" mapstructure:"violation_sample_size"`
	// MaxRecordedErrors bounds the row errors and warnings kept in the
	// report. Counters are not bounded.
	MaxRecordedErrors int `json:"max_recorded_errors" mapstructure:"max_recorded_errors"`
}

// DefaultConfig returns default configuration for the construction engine
func DefaultConfig() Config {
	return Config{
		Mode:                ModeAggregated,
		InferTypes:          true,
		Materialize:         true,
		ViolationSampleSize: 10,
		MaxRecordedErrors:   1000,
	}
}

// Validate checks the configuration for errors
func (c Config) Validate() error {
	switch c.Mode {
	case ModeAggregated, ModeStreaming:
	default:
		return errors.WrapInvalid(fmt.Errorf("%w: mode %q", errors.ErrInvalidConfig, c.Mode),
			"Config", "Validate", "mode must be one of: aggregated, streaming")
	}
	if c.ViolationSampleSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"violation_sample_size cannot be negative")
	}
	if c.MaxRecordedErrors < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_recorded_errors cannot be negative")
	}
	return nil
}
