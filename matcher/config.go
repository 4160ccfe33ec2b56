package matcher

import (
	"fmt"
	"log/slog"

	"github.com/Rxcthefirst/RdfMapper-sub000/metric"
	"github.com/Rxcthefirst/RdfMapper-sub000/ontology"
)

// Config enables and tunes the standard matchers.
type Config struct {
	ExactPrefLabel    Settings     `json:"exact_pref_label" mapstructure:"exact_pref_label"`
	ExactRdfsLabel    Settings     `json:"exact_rdfs_label" mapstructure:"exact_rdfs_label"`
	ExactAltLabel     Settings     `json:"exact_alt_label" mapstructure:"exact_alt_label"`
	ExactHiddenLabel  Settings     `json:"exact_hidden_label" mapstructure:"exact_hidden_label"`
	ExactLocalName    Settings     `json:"exact_local_name" mapstructure:"exact_local_name"`
	Semantic          Settings     `json:"semantic" mapstructure:"semantic"`
	OWLCharacteristic Settings     `json:"owl_characteristic" mapstructure:"owl_characteristic"`
	Hierarchy         Settings     `json:"hierarchy" mapstructure:"hierarchy"`
	Structural        Settings     `json:"structural" mapstructure:"structural"`
	GraphReasoning    Settings     `json:"graph_reasoning" mapstructure:"graph_reasoning"`
	Inherited         Settings     `json:"inherited" mapstructure:"inherited"`
	Datatype          Settings     `json:"datatype" mapstructure:"datatype"`
	Partial           Settings     `json:"partial" mapstructure:"partial"`
	Fuzzy             Settings     `json:"fuzzy" mapstructure:"fuzzy"`
	GraphWeights      GraphWeights `json:"graph_weights" mapstructure:"graph_weights"`
}

// DefaultConfig enables every matcher with its default threshold.
func DefaultConfig() Config {
	on := func(threshold float64) Settings { return Settings{Enabled: true, Threshold: threshold} }
	return Config{
		ExactPrefLabel:    on(0.90),
		ExactRdfsLabel:    on(0.90),
		ExactAltLabel:     on(0.90),
		ExactHiddenLabel:  on(0.90),
		ExactLocalName:    on(0.90),
		Semantic:          on(0.60),
		OWLCharacteristic: on(0.50),
		Hierarchy:         on(0.60),
		Structural:        on(0.60),
		GraphReasoning:    on(0.50),
		Inherited:         on(0.55),
		Datatype:          on(0.40),
		Partial:           on(0.55),
		Fuzzy:             on(0.65),
		GraphWeights:      DefaultGraphWeights(),
	}
}

// Validate checks thresholds and weights.
func (c Config) Validate() error {
	all := map[string]Settings{
		"exact_pref_label": c.ExactPrefLabel, "exact_rdfs_label": c.ExactRdfsLabel,
		"exact_alt_label": c.ExactAltLabel, "exact_hidden_label": c.ExactHiddenLabel,
		"exact_local_name": c.ExactLocalName, "semantic": c.Semantic,
		"owl_characteristic": c.OWLCharacteristic, "hierarchy": c.Hierarchy,
		"structural": c.Structural, "graph_reasoning": c.GraphReasoning,
		"inherited": c.Inherited, "datatype": c.Datatype,
		"partial": c.Partial, "fuzzy": c.Fuzzy,
	}
	for name, s := range all {
		if s.Threshold < 0 || s.Threshold > 1 {
			return fmt.Errorf("%s threshold %.2f outside [0, 1]", name, s.Threshold)
		}
	}
	w := c.GraphWeights
	if w.Label < 0 || w.Type < 0 || w.Structure < 0 || w.Context < 0 || w.Label+w.Type+w.Structure+w.Context == 0 {
		return fmt.Errorf("graph weights must be non-negative with a positive sum")
	}
	return nil
}

// NewDefaultPipeline builds a pipeline with the standard matchers in their
// canonical registration order. A nil scorer leaves the semantic matcher
// out.
func NewDefaultPipeline(reasoner *ontology.Reasoner, scorer SimilarityScorer, cfg Config, pcfg PipelineConfig, logger *slog.Logger, metrics *metric.Metrics, opts ...Option) *Pipeline {
	p := NewPipeline(pcfg, append([]Option{WithLogger(logger), WithMetrics(metrics)}, opts...)...)
	p.Register(
		NewExactLabelMatcher(SourcePrefLabel, cfg.ExactPrefLabel),
		NewExactLabelMatcher(SourceRdfsLabel, cfg.ExactRdfsLabel),
		NewExactLabelMatcher(SourceAltLabel, cfg.ExactAltLabel),
		NewExactLabelMatcher(SourceHiddenLabel, cfg.ExactHiddenLabel),
		NewExactLabelMatcher(SourceLocalName, cfg.ExactLocalName),
	)
	if scorer != nil {
		p.Register(NewSemanticMatcher(scorer, cfg.Semantic))
	}
	p.Register(
		NewOWLCharacteristicMatcher(reasoner, cfg.OWLCharacteristic),
		NewHierarchyMatcher(reasoner, cfg.Hierarchy),
		NewStructuralMatcher(reasoner, cfg.Structural),
		NewGraphReasoningMatcher(reasoner, cfg.GraphWeights, cfg.GraphReasoning),
		NewInheritedPropertyMatcher(cfg.Inherited),
		NewDatatypeMatcher(reasoner, cfg.Datatype),
		NewPartialStringMatcher(cfg.Partial),
		NewFuzzyStringMatcher(cfg.Fuzzy),
	)
	return p
}
