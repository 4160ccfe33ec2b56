package ontology

// CompatibilityScores are the confidences ValidateTypeCompatibility returns
// for each kind of range/column pairing.
type CompatibilityScores struct {
	Exact            float64 `json:"exact" mapstructure:"exact"`
	IntegerToDecimal float64 `json:"integer_to_decimal" mapstructure:"integer_to_decimal"`
	DecimalToInteger float64 `json:"decimal_to_integer" mapstructure:"decimal_to_integer"`
	Temporal         float64 `json:"temporal" mapstructure:"temporal"`
	StringRange      float64 `json:"string_range" mapstructure:"string_range"`
	Unknown          float64 `json:"unknown" mapstructure:"unknown"`
	ObjectURI        float64 `json:"object_uri" mapstructure:"object_uri"`
	ObjectKey        float64 `json:"object_key" mapstructure:"object_key"`
}

// Config holds the reasoner's calibration parameters.
type Config struct {
	// UniquenessThreshold is the ratio an inverse-functional column must reach.
	UniquenessThreshold float64 `json:"uniqueness_threshold" mapstructure:"uniqueness_threshold"`
	// UniquenessBonus is added when the threshold is met.
	UniquenessBonus float64 `json:"uniqueness_bonus" mapstructure:"uniqueness_bonus"`
	// ViolationPenaltyScale multiplies the shortfall below the threshold.
	ViolationPenaltyScale float64 `json:"violation_penalty_scale" mapstructure:"violation_penalty_scale"`
	// FunctionalViolationPenalty applies to multi-valued columns matched to
	// functional properties.
	FunctionalViolationPenalty float64 `json:"functional_violation_penalty" mapstructure:"functional_violation_penalty"`
	// IncludeGlobalProperties makes properties without a domain candidates
	// for every class.
	IncludeGlobalProperties bool `json:"include_global_properties" mapstructure:"include_global_properties"`

	Compatibility CompatibilityScores `json:"compatibility" mapstructure:"compatibility"`
}

// DefaultConfig returns the default calibration.
func DefaultConfig() Config {
	return Config{
		UniquenessThreshold:        0.90,
		UniquenessBonus:            0.05,
		ViolationPenaltyScale:      1.0,
		FunctionalViolationPenalty: 0.10,
		IncludeGlobalProperties:    true,
		Compatibility: CompatibilityScores{
			Exact:            1.0,
			IntegerToDecimal: 0.8,
			DecimalToInteger: 0.6,
			Temporal:         0.7,
			StringRange:      0.5,
			Unknown:          0.5,
			ObjectURI:        0.9,
			ObjectKey:        0.6,
		},
	}
}
