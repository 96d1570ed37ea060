package calc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an arithmetic expression, mapping × and ÷ to * and /
func tokenize(expression string) ([]token, error) {
	var tokens []token
	runes := []rune(expression)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			continue
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i+1 < len(runes) && (unicode.IsDigit(runes[i+1]) || isNumberSeparator(runes, i+1)) {
				i++
			}
			number, err := normalizeNumber(string(runes[start : i+1]))
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokNumber, text: number})
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			tokens = append(tokens, token{kind: tokOp, text: "^"})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '^':
			tokens = append(tokens, token{kind: tokOp, text: string(r)})
		case r == '×':
			tokens = append(tokens, token{kind: tokOp, text: "*"})
		case r == '÷':
			tokens = append(tokens, token{kind: tokOp, text: "/"})
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
		default:
			return nil, fmt.Errorf("unexpected character %q", r)
		}
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return tokens, nil
}

var groupedNumber = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

// isNumberSeparator reports whether runes[i] is a '.' or ',' inside a number
func isNumberSeparator(runes []rune, i int) bool {
	if runes[i] != '.' && runes[i] != ',' {
		return false
	}
	return i+1 < len(runes) && unicode.IsDigit(runes[i+1])
}

// normalizeNumber drops thousands separators ("1,500" -> "1500") and reads a
// lone comma as a decimal comma ("2,5" -> "2.5")
func normalizeNumber(number string) (string, error) {
	if !strings.Contains(number, ",") {
		return number, nil
	}
	if groupedNumber.MatchString(number) {
		return strings.ReplaceAll(number, ",", ""), nil
	}
	if strings.Count(number, ",") == 1 && !strings.Contains(number, ".") {
		return strings.Replace(number, ",", ".", 1), nil
	}
	return "", fmt.Errorf("ambiguous number %q", number)
}

// translator rewrites an arithmetic expression into Go source: numbers become
// float literals and exponentiation becomes math.Pow
type translator struct {
	tokens []token
	pos    int
}

// toGo translates expression into a Go expression of type float64
func toGo(expression string) (string, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return "", err
	}

	t := &translator{tokens: tokens}
	src, err := t.sum()
	if err != nil {
		return "", err
	}
	if t.pos != len(t.tokens) {
		return "", fmt.Errorf("unexpected %q at position %d", t.tokens[t.pos].text, t.pos)
	}
	return src, nil
}

func (t *translator) peek() *token {
	if t.pos >= len(t.tokens) {
		return nil
	}
	return &t.tokens[t.pos]
}

func (t *translator) peekOp(ops ...string) (string, bool) {
	tok := t.peek()
	if tok == nil || tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			return op, true
		}
	}
	return "", false
}

func (t *translator) sum() (string, error) {
	left, err := t.product()
	if err != nil {
		return "", err
	}
	for {
		op, ok := t.peekOp("+", "-")
		if !ok {
			return left, nil
		}
		t.pos++
		right, err := t.product()
		if err != nil {
			return "", err
		}
		left = left + " " + op + " " + right
	}
}

func (t *translator) product() (string, error) {
	left, err := t.power()
	if err != nil {
		return "", err
	}
	for {
		op, ok := t.peekOp("*", "/")
		if !ok {
			return left, nil
		}
		t.pos++
		right, err := t.power()
		if err != nil {
			return "", err
		}
		left = left + " " + op + " " + right
	}
}

// power is right associative: 2^3^2 == 2^(3^2)
func (t *translator) power() (string, error) {
	base, err := t.unary()
	if err != nil {
		return "", err
	}
	if _, ok := t.peekOp("^"); !ok {
		return base, nil
	}
	t.pos++
	exponent, err := t.power()
	if err != nil {
		return "", err
	}
	return "math.Pow(" + base + ", " + exponent + ")", nil
}

func (t *translator) unary() (string, error) {
	if op, ok := t.peekOp("-", "+"); ok {
		t.pos++
		operand, err := t.unary()
		if err != nil {
			return "", err
		}
		if op == "-" {
			return "-(" + operand + ")", nil
		}
		return operand, nil
	}
	return t.primary()
}

func (t *translator) primary() (string, error) {
	tok := t.peek()
	if tok == nil {
		return "", fmt.Errorf("unexpected end of expression")
	}

	switch tok.kind {
	case tokNumber:
		t.pos++
		return floatLiteral(tok.text)
	case tokLParen:
		t.pos++
		inner, err := t.sum()
		if err != nil {
			return "", err
		}
		if next := t.peek(); next == nil || next.kind != tokRParen {
			return "", fmt.Errorf("missing closing parenthesis")
		}
		t.pos++
		return "(" + inner + ")", nil
	default:
		return "", fmt.Errorf("unexpected %q", tok.text)
	}
}

func floatLiteral(number string) (string, error) {
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return "", fmt.Errorf("parse number %q: %w", number, err)
	}
	lit := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(lit, ".eE") {
		lit += ".0"
	}
	return "float64(" + lit + ")", nil
}
