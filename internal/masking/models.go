package masking

import "time"

// Level is the risk-derived masking tier. Higher tiers reveal strictly less
// raw data than lower ones for the same field type.
type Level string

const (
	LevelNone     Level = "none"
	LevelLight    Level = "light"
	LevelModerate Level = "moderate"
	LevelHeavy    Level = "heavy"
	LevelFull     Level = "full"
)

// Strategy names one entry of the fixed masking vocabulary.
type Strategy string

const (
	StrategyNone         Strategy = "none"
	StrategyHash         Strategy = "hash"
	StrategyPartial      Strategy = "partial"
	StrategyRedact       Strategy = "redact"
	StrategySynthetic    Strategy = "synthetic"
	StrategyDomainOnly   Strategy = "domain_only"
	StrategyLastFour     Strategy = "last_four"
	StrategyInitials     Strategy = "initials"
	StrategyPseudonym    Strategy = "pseudonym"
	StrategyCityOnly     Strategy = "city_only"
	StrategyRegionOnly   Strategy = "region_only"
	StrategyYearOnly     Strategy = "year_only"
	StrategyAgeRange     Strategy = "age_range"
	StrategySubnet       Strategy = "subnet"
	StrategyCategoryOnly Strategy = "category_only"
	StrategyRange        Strategy = "range"
)

// FieldDetail records how one field was treated.
type FieldDetail struct {
	Strategy          Strategy `json:"strategy"`
	FieldType         string   `json:"field_type,omitempty"`
	OriginalPreserved bool     `json:"original_preserved"`
}

// Applied summarizes a masking pass over one record.
type Applied struct {
	Level           Level                  `json:"level"`
	RiskScore       float64                `json:"risk_score"`
	FieldsProcessed int                    `json:"fields_processed"`
	Details         map[string]FieldDetail `json:"details"`
}

// Result is a masked record plus what was done to it.
type Result struct {
	Data    map[string]any `json:"data"`
	Applied Applied        `json:"masking_applied"`
}

// LogEntry is one row of the bounded masking log.
type LogEntry struct {
	Timestamp    time.Time              `json:"timestamp"`
	RequesterID  string                 `json:"requester_id"`
	Purpose      string                 `json:"purpose"`
	RiskScore    float64                `json:"risk_score"`
	MaskingLevel Level                  `json:"masking_level"`
	FieldsMasked []string               `json:"fields_masked"`
	Strategies   map[string]FieldDetail `json:"strategies_used"`
}

// Stats aggregates the bounded masking log.
type Stats struct {
	TotalOperations  int           `json:"total_operations"`
	ByLevel          map[Level]int `json:"by_level,omitempty"`
	RecentOperations []LogEntry    `json:"recent_operations,omitempty"`
}
