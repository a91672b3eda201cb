// Package classify decides what kind of snippet a piece of captured text is:
// a color, source code (with a language guess), or plain text.
//
// Classification is total — input that matches nothing falls through to a
// text draft. The package holds no state beyond its fixed heuristic tables.
package classify

import (
	"regexp"
	"strings"

	"go.klb.dev/shard/internal/colorlib"
)

// Kind is the snippet variant tag.
type Kind string

const (
	KindColor Kind = "color"
	KindCode  Kind = "code"
	KindText  Kind = "text"
)

// ParseKind validates a kind string from user input or storage.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(s)) {
	case KindColor:
		return KindColor, true
	case KindCode:
		return KindCode, true
	case KindText:
		return KindText, true
	}
	return "", false
}

// Draft is a classified snippet payload, not yet persisted.
// Color is set for KindColor; Text for KindCode and KindText; Language only
// for KindCode, and may be empty when no language cleared the confidence bar.
type Draft struct {
	Kind     Kind
	Color    colorlib.RGBA
	Text     string
	Language string
}

// Classify decides the draft kind for raw captured text. Decision order:
// the whole trimmed input parsing as exactly one color wins, then the
// code-likelihood score, then plain text.
func Classify(text string) Draft {
	trimmed := strings.TrimSpace(text)

	if c, err := colorlib.Parse(trimmed); err == nil {
		return Draft{Kind: KindColor, Color: c}
	}

	if looksLikeCode(trimmed) {
		return Draft{Kind: KindCode, Text: text, Language: DetectLanguage(trimmed)}
	}

	return Draft{Kind: KindText, Text: text}
}

// codeIndicator is one weighted signal in the code-likelihood score.
type codeIndicator struct {
	re     *regexp.Regexp
	weight int
}

var codeIndicators = []codeIndicator{
	// Delimiter blocks
	{regexp.MustCompile(`\{[\s\S]*\}`), 5},
	{regexp.MustCompile(`\[[\s\S]*\]`), 3},
	{regexp.MustCompile(`\([\s\S]*\)`), 2},
	// Statement line endings
	{regexp.MustCompile(`(?m);\s*$`), 4},
	{regexp.MustCompile(`(?m):\s*$`), 3},
	// Keyword families
	{regexp.MustCompile(`\b(fn|func|function|def|class|struct|enum|impl|trait|interface|type)\b`), 5},
	{regexp.MustCompile(`\b(if|else|for|while|loop|match|switch|case)\b`), 3},
	{regexp.MustCompile(`\b(return|break|continue|yield)\b`), 3},
	{regexp.MustCompile(`\b(import|from|use|require|include)\b`), 4},
	{regexp.MustCompile(`\b(const|let|var|mut)\b`), 3},
	{regexp.MustCompile(`\b(pub|private|public|protected|static)\b`), 3},
	// Operators
	{regexp.MustCompile(`=>`), 3},
	{regexp.MustCompile(`->`), 3},
	{regexp.MustCompile(`::`), 3},
	{regexp.MustCompile(`==|!=|<=|>=`), 2},
	// Comments
	{regexp.MustCompile(`(?m)//.*$`), 3},
	{regexp.MustCompile(`/\*[\s\S]*\*/`), 3},
	{regexp.MustCompile(`(?m)#.*$`), 2},
}

const (
	codeScoreThreshold = 8
	codeMinLength      = 10
)

// looksLikeCode scores weighted code indicators plus indentation and symbol
// density. Deliberately conservative: short ambiguous snippets score under
// the threshold and fall through to text.
func looksLikeCode(trimmed string) bool {
	if len(trimmed) < codeMinLength {
		return false
	}

	score := 0
	for _, ind := range codeIndicators {
		if ind.re.MatchString(trimmed) {
			score += ind.weight
		}
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > 1 {
		indented := 0
		for _, l := range lines {
			if strings.HasPrefix(l, "  ") || strings.HasPrefix(l, "\t") {
				indented++
			}
		}
		if indented > len(lines)/3 {
			score += 5
		}
	}

	special := 0
	for _, r := range trimmed {
		if strings.ContainsRune("{}[]();:=<>+-*/&|!@#$%^", r) {
			special++
		}
	}
	if float64(special)/float64(len(trimmed)) > 0.05 {
		score += 3
	}

	return score >= codeScoreThreshold
}
