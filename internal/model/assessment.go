package model

// Assessment scores the wording of a claim before any tool checks it
type Assessment struct {
	Confidence float64  `json:"confidence"` // Intrinsic confidence, 0-1
	Relevance  float64  `json:"relevance"`  // Share of content-bearing words, 0-1
	Quality    float64  `json:"quality"`    // Sourcing and length, 0-1
	Points     int      `json:"points"`     // Raw score, 0-100
	Level      string   `json:"level"`      // high, medium, low
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalSpecificity SignalType = "specificity" // Numbers, dates, proper nouns
	SignalHedging     SignalType = "hedging"     // Qualifiers that weaken the claim
	SignalSourcing    SignalType = "sourcing"    // Cited references
	SignalLength      SignalType = "length"      // Claim size
	SignalOpinion     SignalType = "opinion"     // Subjective wording
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
