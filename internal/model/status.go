package model

import (
	"encoding/json"
	"fmt"
)

// Status is the outcome of verifying a claim
type Status string

const (
	StatusUnverified           Status = "unverified"
	StatusPartiallyVerified    Status = "partially_verified"
	StatusVerified             Status = "verified"
	StatusContradicted         Status = "contradicted"
	StatusInconclusive         Status = "inconclusive"
	StatusAbsenceOfInformation Status = "absence_of_information"
	StatusUncertain            Status = "uncertain"
	StatusContradictory        Status = "contradictory"
)

// AllStatuses lists every status in declaration order
var AllStatuses = []Status{
	StatusUnverified,
	StatusPartiallyVerified,
	StatusVerified,
	StatusContradicted,
	StatusInconclusive,
	StatusAbsenceOfInformation,
	StatusUncertain,
	StatusContradictory,
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts a string into a Status
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status: %q", s)
	}
	return status, nil
}

// Validity is the verdict a single tool reports for a claim.
// The zero value is ValidityUnknown.
type Validity int

const (
	ValidityUnknown Validity = iota // null or missing
	ValidityValid                   // true
	ValidityInvalid                 // false
	ValidityPartial                 // "partial"
	ValidityAbsent                  // "absence_of_information"
)

func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	case ValidityPartial:
		return "partial"
	case ValidityAbsent:
		return "absence_of_information"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the verdict in its loose wire form:
// true, false, "partial", "absence_of_information" or null
func (v Validity) MarshalJSON() ([]byte, error) {
	switch v {
	case ValidityValid:
		return []byte("true"), nil
	case ValidityInvalid:
		return []byte("false"), nil
	case ValidityPartial:
		return []byte(`"partial"`), nil
	case ValidityAbsent:
		return []byte(`"absence_of_information"`), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the loose wire form produced by tools
func (v *Validity) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode validity: %w", err)
	}

	switch val := raw.(type) {
	case nil:
		*v = ValidityUnknown
	case bool:
		if val {
			*v = ValidityValid
		} else {
			*v = ValidityInvalid
		}
	case string:
		switch val {
		case "partial":
			*v = ValidityPartial
		case "absence_of_information":
			*v = ValidityAbsent
		case "true", "valid":
			*v = ValidityValid
		case "false", "invalid":
			*v = ValidityInvalid
		default:
			*v = ValidityUnknown
		}
	default:
		return fmt.Errorf("unsupported validity value: %s", string(data))
	}
	return nil
}
