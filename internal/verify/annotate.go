package verify

import (
	"sort"
	"strings"

	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/model"
)

const (
	markerVerified = " [verified]"
	markerPending  = " [pending]"
)

type insertion struct {
	at     int
	marker string
}

// AnnotateThoughtWithVerifications appends a marker after each calculation in
// content: [verified], [pending] or [incorrect: <correction>]. Calculations
// without a verification are pending. Function definitions such as f(x)=...
// are left untouched.
func AnnotateThoughtWithVerifications(content string, verifications []model.VerifiedCalculation) string {
	spans := classify.FindCalculations(content)

	byOriginal := make(map[string][]model.VerifiedCalculation)
	for _, v := range verifications {
		key := normalizeCalc(v.Original)
		byOriginal[key] = append(byOriginal[key], v)
	}

	var inserts []insertion
	covered := make(map[string]bool)
	for _, span := range spans {
		if span.FunctionNotation {
			continue
		}
		key := normalizeCalc(span.Text)
		covered[key] = true
		inserts = append(inserts, insertion{at: span.End, marker: marker(byOriginal[key])})
	}

	// verifications reported by tools for text the span finder did not pick up
	for _, v := range verifications {
		key := normalizeCalc(v.Original)
		if v.Original == "" || covered[key] {
			continue
		}
		idx := strings.Index(content, v.Original)
		if idx < 0 || insideFunction(idx, idx+len(v.Original), spans) {
			continue
		}
		covered[key] = true
		inserts = append(inserts, insertion{at: idx + len(v.Original), marker: marker(byOriginal[key])})
	}

	// insert back to front so earlier offsets stay valid
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at > inserts[j].at })

	out := content
	for _, ins := range inserts {
		out = out[:ins.at] + ins.marker + out[ins.at:]
	}
	return out
}

// marker summarizes every verification of one calculation; any incorrect step wins
func marker(vs []model.VerifiedCalculation) string {
	if len(vs) == 0 {
		return markerPending
	}

	allCorrect := true
	for _, v := range vs {
		if v.IsCorrect {
			continue
		}
		allCorrect = false
		if v.Verified != "" {
			return " [incorrect: " + v.Verified + "]"
		}
	}
	if allCorrect {
		return markerVerified
	}
	return markerPending
}

func insideFunction(start, end int, spans []classify.Span) bool {
	for _, s := range spans {
		if s.FunctionNotation && start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

func normalizeCalc(s string) string {
	return strings.Join(strings.Fields(s), "")
}
