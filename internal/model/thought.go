package model

// Thought is a reasoning step whose content is checked as a claim.
// Metadata is a side channel the verification service stamps with provenance.
type Thought struct {
	ID         string                 `json:"id,omitempty"`
	Content    string                 `json:"content"`
	Confidence float64                `json:"confidence,omitempty"` // Intrinsic confidence supplied by the caller
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Metadata keys written by the verification service
const (
	MetaVerifiedAt         = "verifiedAt"
	MetaVerificationSource = "verificationSource"
	MetaSessionID          = "verificationSession"
	MetaToolsUsed          = "verificationToolCount"
	MetaStages             = "verificationStages"
	MetaStatus             = "verificationStatus"
	MetaConfidence         = "verificationConfidence"
)

// SetMeta stores a metadata value, allocating the map if needed
func (t *Thought) SetMeta(key string, value interface{}) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]interface{})
	}
	t.Metadata[key] = value
}
