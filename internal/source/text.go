package source

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExtractText returns the visible text of an HTML document, whitespace collapsed
func ExtractText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(buf.String(), " ")), nil
}

// Sentences splits text into sentences of a plausible claim length
func Sentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var out []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		if len(s) >= 20 && len(s) <= 500 {
			out = append(out, s)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
			flush()
		}
	}
	flush()
	return out
}
