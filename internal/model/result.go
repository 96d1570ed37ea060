package model

// VerificationResult is the outcome of a verification run.
// It is returned to callers and is not stored as-is.
type VerificationResult struct {
	Status               Status                `json:"status"`
	Confidence           float64               `json:"confidence"`
	Sources              []string              `json:"sources"`
	VerificationSteps    []string              `json:"verification_steps"`
	Contradictions       []string              `json:"contradictions,omitempty"`
	Notes                string                `json:"notes,omitempty"`
	VerifiedCalculations []VerifiedCalculation `json:"verified_calculations,omitempty"`
}

// VerifiedCalculation is a checked arithmetic claim, ready for annotation
type VerifiedCalculation struct {
	Original   string  `json:"original"`
	Verified   string  `json:"verified"`
	IsCorrect  bool    `json:"is_correct"`
	Confidence float64 `json:"confidence"`
}

// CalculationResult is the raw output of evaluating one detected expression
type CalculationResult struct {
	Original       string  `json:"original"`
	ExpressionText string  `json:"expression_text"`
	Result         float64 `json:"result"`
	IsCorrect      bool    `json:"is_correct"`
	ClaimedResult  float64 `json:"claimed_result"`
	Confidence     float64 `json:"confidence"`
	Context        string  `json:"context,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// ToolSuggestion is a ranked recommendation to run a verification tool
type ToolSuggestion struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Priority   int     `json:"priority,omitempty"`
}

// ToolResult is what a verification tool reports about a claim
type ToolResult struct {
	IsValid              Validity              `json:"is_valid"`
	Source               string                `json:"source,omitempty"`
	Details              string                `json:"details,omitempty"`
	VerifiedCalculations []VerifiedCalculation `json:"verified_calculations,omitempty"`
}

// Usable reports whether the result carries any signal worth aggregating
func (r *ToolResult) Usable() bool {
	if r == nil {
		return false
	}
	return r.IsValid != ValidityUnknown ||
		len(r.VerifiedCalculations) > 0 ||
		r.Source != "" ||
		r.Details != ""
}

// VerificationRequirements describes how much checking a claim deserves
type VerificationRequirements struct {
	RequiresMultipleVerifications bool     `json:"requires_multiple_verifications"`
	RecommendedVerificationsCount int      `json:"recommended_verifications_count"`
	Reasons                       []string `json:"reasons"`
}

// PreliminaryResult is the output of the lightweight calculation pass
type PreliminaryResult struct {
	VerifiedCalculations   []VerifiedCalculation `json:"verified_calculations,omitempty"`
	InitialVerification    bool                  `json:"initial_verification"`
	VerificationInProgress bool                  `json:"verification_in_progress"`
	PreverifiedThought     string                `json:"preverified_thought"`
}
