package classify

import "regexp"

// language is one entry in the fixed supported-language table. Score is the
// number of distinct patterns matching; ties between languages break by
// table order, earlier wins.
type language struct {
	name     string
	patterns []*regexp.Regexp
}

var languages = []language{
	{"rust", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*(fn\s+\w+|impl\s+|struct\s+|enum\s+|trait\s+|mod\s+|use\s+|pub\s+fn|#\[derive)`),
		regexp.MustCompile(`\blet\s+mut\b`),
		regexp.MustCompile(`\w+!\s*\(`),
	}},
	{"python", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*(def\s+\w+|class\s+\w+\s*[:(]|import\s+\w|from\s+\w+\s+import)`),
		regexp.MustCompile(`(?m)^\s*if\s+__name__`),
		regexp.MustCompile(`(?m)^\s*@\w+\s*$`),
	}},
	{"javascript", []*regexp.Regexp{
		regexp.MustCompile(`\b(function\s+\w+|const\s+\w+\s*=|let\s+\w+\s*=|var\s+\w+\s*=)`),
		regexp.MustCompile(`=>\s*\{|\brequire\(`),
		regexp.MustCompile(`\bexport\s+(default\s+)?|\bimport\s+.*\bfrom\b`),
		regexp.MustCompile(`\bconsole\.\w+\(`),
	}},
	{"typescript", []*regexp.Regexp{
		regexp.MustCompile(`:\s*(string|number|boolean|any|void|never)\b`),
		regexp.MustCompile(`\binterface\s+\w+|\btype\s+\w+\s*=`),
	}},
	{"json", []*regexp.Regexp{
		regexp.MustCompile(`(?s)^\s*\{.*\}\s*$|^\s*\[.*\]\s*$`),
		regexp.MustCompile(`"[^"]+"\s*:`),
	}},
	{"html", []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*<!DOCTYPE|<html|<div|<span|<p\s|<a\s|<script|<style`),
		regexp.MustCompile(`(?i)</\w+>`),
	}},
	{"css", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*(@media|@keyframes)\b`),
		regexp.MustCompile(`(?m)^\s*[.#]?[\w-]+\s*\{`),
		regexp.MustCompile(`(?m)^\s*[a-z-]+\s*:\s*[^;{]+;`),
	}},
	{"sql", []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b`),
		regexp.MustCompile(`(?i)\b(FROM|WHERE|JOIN|GROUP\s+BY|ORDER\s+BY)\b`),
	}},
	{"shell", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^#!/bin/(ba|z)?sh`),
		regexp.MustCompile(`(?m)^\s*\$\s+\w`),
		regexp.MustCompile(`(?m)^\s*(echo|cd|ls|mkdir|grep|sed|awk|curl|export)\s`),
	}},
	{"go", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*(package\s+\w+|func\s+\w+|func\s+\(|import\s+\()`),
		regexp.MustCompile(`\btype\s+\w+\s+(struct|interface)\b`),
		regexp.MustCompile(`:=`),
	}},
}

// DetectLanguage guesses the language of code-like text. It returns the
// highest-scoring supported language, or "" when nothing matches at all.
// TypeScript evidence absorbs JavaScript's score: every TS marker appears in
// files that also look like JS, so raw scores alone would misrank them.
func DetectLanguage(code string) string {
	scores := make(map[string]int, len(languages))
	for _, lang := range languages {
		for _, re := range lang.patterns {
			if re.MatchString(code) {
				scores[lang.name]++
			}
		}
	}

	if scores["typescript"] > 0 && scores["javascript"] > 0 {
		scores["typescript"] += scores["javascript"]
		scores["javascript"] = 0
	}

	best, bestScore := "", 0
	for _, lang := range languages {
		if s := scores[lang.name]; s > bestScore {
			best, bestScore = lang.name, s
		}
	}
	return best
}

// Extension maps a detected language to a conventional file extension,
// defaulting to "txt". Used for naming hints when snippets leave the store.
func Extension(language string) string {
	switch language {
	case "rust":
		return "rs"
	case "python":
		return "py"
	case "javascript":
		return "js"
	case "typescript":
		return "ts"
	case "json", "html", "css", "sql", "go":
		return language
	case "shell":
		return "sh"
	}
	return "txt"
}
