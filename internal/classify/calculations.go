package classify

import (
	"regexp"
	"strings"
)

const (
	// number accepts thousands separators ("1,500") and decimal commas ("2,5")
	number   = `(?:\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?)`
	operand  = `\(?\s*-?` + number + `\s*\)?`
	operator = `(?:\*\*|[-+*/^×÷])`
	expr     = operand + `(?:\s*` + operator + `\s*` + operand + `)*`
)

var (
	// equalityPattern matches arithmetic equalities, chained ones included:
	// "2 + 2 = 4", "2^10 = 1024", "3*4 = 12 = 6*2"
	equalityPattern = regexp.MustCompile(expr + `(?:\s*=\s*` + expr + `)+`)

	// operatorPattern requires a real binary operation, so "2020 = 2020" is not a calculation
	operatorPattern = regexp.MustCompile(`\d\s*\)?\s*` + operator + `\s*\(?\s*-?\d`)

	// functionPattern matches the head of a function definition: "f(x) ="
	functionPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\s*\([^()=]*\)\s*=`)
)

// Span is a calculation-like substring of a claim
type Span struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // byte offset
	End   int    `json:"end"`   // byte offset, exclusive
	// FunctionNotation marks spans inside a function definition like f(x)=...
	// They are reported so callers can skip them.
	FunctionNotation bool `json:"function_notation,omitempty"`
}

// FindCalculations returns calculation-like substrings of content in order of appearance
func FindCalculations(content string) []Span {
	functions := functionPattern.FindAllStringIndex(content, -1)

	var spans []Span
	for _, loc := range equalityPattern.FindAllStringIndex(content, -1) {
		start, end := trimSpan(content, loc[0], loc[1])
		text := content[start:end]
		if splitsNumber(content, start, end) || !operatorPattern.MatchString(text) {
			continue
		}

		spans = append(spans, Span{
			Text:             text,
			Start:            start,
			End:              end,
			FunctionNotation: followsFunctionHead(content, start, end, functions),
		})
	}
	return spans
}

// ContainsCalculation reports whether content has at least one checkable calculation
func ContainsCalculation(content string) bool {
	for _, s := range FindCalculations(content) {
		if !s.FunctionNotation {
			return true
		}
	}
	return false
}

// SplitChain breaks a chained equality into its sides: "a = b = c" -> [a b c]
func SplitChain(text string) []string {
	parts := strings.Split(text, "=")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitsNumber reports whether the match [start, end) begins or ends inside a
// longer number, as in "1,000 + 1 = 1,500" read from the middle
func splitsNumber(content string, start, end int) bool {
	if start > 0 {
		prev := content[start-1]
		if isDigit(prev) || ((prev == ',' || prev == '.') && start > 1 && isDigit(content[start-2])) {
			return true
		}
	}
	if end < len(content) {
		next := content[end]
		if isDigit(next) || ((next == ',' || next == '.') && end+1 < len(content) && isDigit(content[end+1])) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func trimSpan(content string, start, end int) (int, int) {
	for start < end && isSpace(content[start]) {
		start++
	}
	for end > start && isSpace(content[end-1]) {
		end--
	}
	return start, end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// followsFunctionHead reports whether a span overlaps a function head or is
// the right-hand side directly after one
func followsFunctionHead(content string, start, end int, heads [][]int) bool {
	for _, h := range heads {
		if start < h[1] && h[0] < end {
			return true
		}
		if h[1] <= start && strings.TrimSpace(content[h[1]:start]) == "" {
			return true
		}
	}
	return false
}
