package verify

import (
	"fmt"
	"math"

	"github.com/ppiankov/veritas/internal/model"
)

const (
	contradictoryConfidence = 0.4
	defaultToolConfidence   = 0.5
	weakSignalFactor        = 0.5
)

// ToolOutcome is one tool's answer for a claim
type ToolOutcome struct {
	Name       string            `json:"name"`
	Confidence float64           `json:"confidence"`
	Result     *model.ToolResult `json:"result"`
}

type aggregation struct {
	status         model.Status
	confidence     float64
	contradictions []string
	notes          []string
}

// aggregate resolves tool outcomes into one status, in precedence order:
// all absent, verified, partial, contradictory, uncertain, unverified.
// Floors keep confidence consistent with the status.
func (s *Service) aggregate(outcomes []ToolOutcome, calcs []model.VerifiedCalculation, intrinsic float64, content string) aggregation {
	var valid, invalid, partial, unknown, absent []ToolOutcome
	for _, o := range outcomes {
		switch o.Result.IsValid {
		case model.ValidityValid:
			valid = append(valid, o)
		case model.ValidityInvalid:
			invalid = append(invalid, o)
		case model.ValidityPartial:
			partial = append(partial, o)
		case model.ValidityAbsent:
			absent = append(absent, o)
		default:
			unknown = append(unknown, o)
		}
	}

	agg := aggregation{contradictions: DetectContradictions(outcomes)}

	switch {
	case len(outcomes) > 0 && len(absent) == len(outcomes):
		agg.status = model.StatusAbsenceOfInformation
		agg.confidence = meanConfidence(absent) * weakSignalFactor
		agg.notes = append(agg.notes, "No tool found information about this claim")

	case len(valid) > 0 && len(invalid) == 0:
		agg.status = model.StatusVerified
		agg.confidence = s.corroborated(valid)
		agg.notes = append(agg.notes, fmt.Sprintf("%d tool(s) confirmed the claim", len(valid)))

	case len(partial) > 0:
		agg.status = model.StatusPartiallyVerified
		agg.confidence = s.corroborated(append(partial, valid...))
		agg.notes = append(agg.notes, fmt.Sprintf("%d tool(s) partially confirmed the claim", len(partial)))

	case len(valid) > 0 && len(invalid) > 0:
		agg.status = model.StatusContradictory
		agg.confidence = contradictoryConfidence
		agg.notes = append(agg.notes, "Tools disagree about this claim")

	case len(unknown) > 0:
		agg.status = model.StatusUncertain
		agg.confidence = meanConfidence(unknown) * weakSignalFactor
		agg.notes = append(agg.notes, "Tools returned information without a verdict")

	default:
		agg.status = model.StatusUnverified
		agg.confidence = math.Min(meanConfidence(outcomes)*weakSignalFactor, s.cfg.RequiredThreshold)
	}

	if agg.status == model.StatusUnverified {
		if wrong := incorrectCalculations(calcs); len(wrong) > 0 {
			agg.status = model.StatusContradicted
			agg.confidence = meanCalcConfidence(wrong)
			agg.notes = append(agg.notes, fmt.Sprintf("%d calculation(s) are incorrect", len(wrong)))
		}
	}

	if agg.status == model.StatusUnverified {
		markers := s.classifier.HasMathOrLogicMarkers(content)
		if (intrinsic >= s.cfg.PromoteWithMarkers && markers) || intrinsic >= s.cfg.PromoteIntrinsicAlone {
			agg.status = model.StatusPartiallyVerified
			agg.confidence = (intrinsic + agg.confidence) / 2
			agg.notes = append(agg.notes, fmt.Sprintf("Promoted on intrinsic confidence %.2f", intrinsic))
		}
	}

	agg.confidence = s.applyFloor(agg.status, agg.confidence)
	return agg
}

// corroborated averages the participating tools and adds a bonus per extra tool
func (s *Service) corroborated(outcomes []ToolOutcome) float64 {
	bonus := s.cfg.CorroborationBonus * float64(len(outcomes)-1)
	return math.Min(meanConfidence(outcomes)+bonus, s.cfg.ConfidenceCap)
}

// applyFloor enforces the minimum confidence mandated by a status
func (s *Service) applyFloor(status model.Status, confidence float64) float64 {
	switch status {
	case model.StatusVerified:
		confidence = math.Max(confidence, s.cfg.VerifiedFloor)
	case model.StatusPartiallyVerified:
		confidence = math.Max(confidence, s.cfg.PartialFloor)
	}
	return math.Max(0, math.Min(confidence, 1))
}

// DetectContradictions flags every pair of tools where one reports the claim
// valid and the other invalid
func DetectContradictions(outcomes []ToolOutcome) []string {
	var out []string
	for i := 0; i < len(outcomes); i++ {
		for j := i + 1; j < len(outcomes); j++ {
			a, b := outcomes[i], outcomes[j]
			if a.Result == nil || b.Result == nil {
				continue
			}
			switch {
			case a.Result.IsValid == model.ValidityValid && b.Result.IsValid == model.ValidityInvalid:
				out = append(out, fmt.Sprintf("%s reports the claim as valid but %s reports it as invalid", a.Name, b.Name))
			case a.Result.IsValid == model.ValidityInvalid && b.Result.IsValid == model.ValidityValid:
				out = append(out, fmt.Sprintf("%s reports the claim as valid but %s reports it as invalid", b.Name, a.Name))
			}
		}
	}
	return out
}

func meanConfidence(outcomes []ToolOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range outcomes {
		sum += o.Confidence
	}
	return sum / float64(len(outcomes))
}

func incorrectCalculations(calcs []model.VerifiedCalculation) []model.VerifiedCalculation {
	var wrong []model.VerifiedCalculation
	for _, c := range calcs {
		// failed evaluations carry no correction and are not evidence either way
		if !c.IsCorrect && c.Verified != "" {
			wrong = append(wrong, c)
		}
	}
	return wrong
}

func meanCalcConfidence(calcs []model.VerifiedCalculation) float64 {
	sum := 0.0
	for _, c := range calcs {
		sum += c.Confidence
	}
	return sum / float64(len(calcs))
}
