package model

import "time"

// ClaimReport is the complete outcome of checking one claim
type ClaimReport struct {
	Claim       string                 `json:"claim"`
	SessionID   string                 `json:"session_id"`
	ThoughtID   string                 `json:"thought_id"`
	CheckedAt   time.Time              `json:"checked_at"`
	Assessment  *Assessment            `json:"assessment,omitempty"`
	Preliminary PreliminaryResult      `json:"preliminary"`
	Result      VerificationResult     `json:"result"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
