package models

// QueryType is the classified intent of an incoming user query.
type QueryType string

const (
	QueryTypeGreeting    QueryType = "greeting"
	QueryTypeSystemQuery QueryType = "system_query"
	QueryTypeTaxQuery    QueryType = "tax_query"
	QueryTypeIrrelevant  QueryType = "irrelevant"
)

// QueryAnalysisResult is the outcome of intent classification for one query.
// Details carries the matched pattern or keywords for observability.
type QueryAnalysisResult struct {
	QueryType  QueryType      `json:"query_type"`
	Confidence float64        `json:"confidence"`
	Details    map[string]any `json:"details,omitempty"`
}

// ValidationResult is the outcome of the response quality gate.
// IsValid is true iff no error reason was recorded.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}
