// Package classify detects what kind of claim a piece of text makes.
// Detection is table driven: every category is a list of regular expressions
// and a claim belongs to each category with at least one matching pattern.
package classify

import (
	"fmt"
	"regexp"
)

// Category is a kind of claim
type Category string

const (
	CategoryFactual     Category = "factual"
	CategoryCalculation Category = "calculation"
	CategoryOpinion     Category = "opinion"
	CategoryStatistic   Category = "statistic"
	CategoryReference   Category = "reference"
)

// categoryOrder fixes the order Classify reports categories in
var categoryOrder = []Category{
	CategoryFactual,
	CategoryCalculation,
	CategoryOpinion,
	CategoryStatistic,
	CategoryReference,
}

// Rule maps a regular expression to a category
type Rule struct {
	Category Category `yaml:"category"`
	Pattern  string   `yaml:"pattern"`
}

// DefaultRules is the built-in detector table
var DefaultRules = []Rule{
	// factual
	{CategoryFactual, `(?i)\b(is|are|was|were|has|had)\b`},
	{CategoryFactual, `(?i)\b(founded|invented|discovered|born|died|located|established|capital|originated|largest|smallest|tallest|longest)\b`},
	{CategoryFactual, `\b(1[0-9]{3}|20[0-9]{2})\b`},

	// calculation
	{CategoryCalculation, `\d\s*(\*\*|[-+*/^×÷])\s*\(?\s*\d`},
	{CategoryCalculation, `\d\s*=\s*-?\d`},
	{CategoryCalculation, `(?i)\b(calculate[sd]?|sum of|product of|equals|squared|cubed|square root)\b`},

	// opinion
	{CategoryOpinion, `(?i)\b(i think|i believe|i feel|in my (opinion|view)|personally)\b`},
	{CategoryOpinion, `(?i)\b(probably|arguably|perhaps|seems?|should|best|worst|better|worse|beautiful|ugly)\b`},

	// statistic
	{CategoryStatistic, `\d+(\.\d+)?\s*(%|percent\b)`},
	{CategoryStatistic, `(?i)\b(average|median|mean|majority|minority|rate|ratio|per capita|survey|statistics?)\b`},
	{CategoryStatistic, `(?i)\b\d+(\.\d+)?\s*(thousand|million|billion|trillion)\b`},

	// external reference
	{CategoryReference, `(?i)https?://\S+`},
	{CategoryReference, `(?i)\b(according to|cited|source:|study|studies|report(ed)?|journal|published|doi:)`},
	{CategoryReference, `\[\d+\]|\bet al\.`},
}

// DefaultMarkers detect mathematical or logical reasoning
var DefaultMarkers = []string{
	`\d\s*(\*\*|[-+*/^×÷=<>≤≥])\s*\d`,
	`(?i)\b(therefore|thus|hence|implies|iff|if and only if|it follows|proof|theorem|lemma|corollary|qed|contradiction)\b`,
	`[∴∀∃⇒→∧∨¬]`,
}

type compiledRule struct {
	category Category
	pattern  *regexp.Regexp
}

// Classifier applies a rule table to claim text
type Classifier struct {
	rules   []compiledRule
	markers []*regexp.Regexp
}

// New compiles rules and math/logic markers into a Classifier
func New(rules []Rule, markers []string) (*Classifier, error) {
	c := &Classifier{}

	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile %s rule %q: %w", r.Category, r.Pattern, err)
		}
		c.rules = append(c.rules, compiledRule{category: r.Category, pattern: re})
	}

	for _, m := range markers {
		re, err := regexp.Compile(m)
		if err != nil {
			return nil, fmt.Errorf("compile marker %q: %w", m, err)
		}
		c.markers = append(c.markers, re)
	}

	return c, nil
}

// Default returns a Classifier for the built-in tables
func Default() *Classifier {
	c, err := New(DefaultRules, DefaultMarkers)
	if err != nil {
		panic(err)
	}
	return c
}

// Categories is the set of categories a claim belongs to, in canonical order
type Categories []Category

// Has reports whether c is in the set
func (cs Categories) Has(c Category) bool {
	for _, got := range cs {
		if got == c {
			return true
		}
	}
	return false
}

// Strings returns the category names
func (cs Categories) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// Classify tests content against every category independently
func (c *Classifier) Classify(content string) Categories {
	hit := make(map[Category]bool)
	for _, r := range c.rules {
		if hit[r.category] {
			continue
		}
		if r.pattern.MatchString(content) {
			hit[r.category] = true
		}
	}

	out := Categories{}
	for _, cat := range categoryOrder {
		if hit[cat] {
			out = append(out, cat)
		}
	}
	// custom categories outside the canonical set
	for _, r := range c.rules {
		if hit[r.category] && !out.Has(r.category) {
			out = append(out, r.category)
		}
	}
	return out
}

// HasMathOrLogicMarkers reports whether content reads like mathematical or logical reasoning
func (c *Classifier) HasMathOrLogicMarkers(content string) bool {
	for _, m := range c.markers {
		if m.MatchString(content) {
			return true
		}
	}
	return false
}
