package classify

import (
	"testing"

	"go.klb.dev/shard/internal/colorlib"
)

func TestClassifyColor(t *testing.T) {
	for _, in := range []string{
		"#FF5733",
		"  #abc  ",
		"rgba(0, 0, 0, 0.5)",
		"hsl(120, 100%, 50%)",
		"oklch(62.8% 0.2577 29.23)",
	} {
		d := Classify(in)
		if d.Kind != KindColor {
			t.Fatalf("Classify(%q).Kind = %s, want color", in, d.Kind)
		}
	}

	d := Classify("#FF5733")
	if d.Color != (colorlib.RGBA{R: 255, G: 87, B: 51, A: 255}) {
		t.Fatalf("Classify(#FF5733).Color = %v", d.Color)
	}
}

// A color embedded in prose is not a color snippet: the whole trimmed input
// must parse as exactly one color.
func TestClassifyEmbeddedColorIsText(t *testing.T) {
	d := Classify("#FF5733 is a nice shade of orange")
	if d.Kind != KindText {
		t.Fatalf("Kind = %s, want text", d.Kind)
	}
}

func TestClassifyCode(t *testing.T) {
	cases := []struct {
		text string
		lang string
	}{
		{"fn main() {\n    println!(\"hello\");\n}", "rust"},
		{"def greet(name):\n    return f\"hi {name}\"\n\nif __name__ == \"__main__\":\n    greet(\"world\")", "python"},
		{"function add(a, b) {\n  return a + b;\n}\nconsole.log(add(1, 2));", "javascript"},
		{"interface User {\n  name: string;\n  age: number;\n}\nconst admin = makeUser();", "typescript"},
		{"package main\n\nfunc main() {\n\tx := compute()\n\treturn x\n}", "go"},
	}
	for _, c := range cases {
		d := Classify(c.text)
		if d.Kind != KindCode {
			t.Fatalf("Classify(%q).Kind = %s, want code", c.text, d.Kind)
		}
		if d.Language != c.lang {
			t.Fatalf("Classify(%q).Language = %q, want %q", c.text, d.Language, c.lang)
		}
		if d.Text != c.text {
			t.Fatalf("code draft must keep original text")
		}
	}
}

func TestClassifyText(t *testing.T) {
	for _, in := range []string{
		"Hello, world",
		"Pick up milk on the way home",
		"x := 1", // under the code length floor
		"",
	} {
		d := Classify(in)
		if d.Kind != KindText {
			t.Fatalf("Classify(%q).Kind = %s, want text", in, d.Kind)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"SELECT id, name FROM users WHERE active = 1;", "sql"},
		{"#!/bin/bash\necho hello\ncd /tmp", "shell"},
		{"{\n  \"name\": \"demo\",\n  \"version\": 2\n}", "json"},
		{"<div class=\"box\">\n  <span>hi</span>\n</div>", "html"},
		{".box {\n  color: red;\n  margin: 0;\n}", "css"},
		{"completely ordinary prose", ""},
	}
	for _, c := range cases {
		if got := DetectLanguage(c.code); got != c.want {
			t.Fatalf("DetectLanguage(%q) = %q, want %q", c.code, got, c.want)
		}
	}
}

// TypeScript markers appear in text that also matches JavaScript patterns;
// the TS score must absorb the JS score rather than lose the tie.
func TestDetectLanguageTypeScriptOverJavaScript(t *testing.T) {
	code := "const n: number = 1;\nexport type Pair = { a: number; b: number };"
	if got := DetectLanguage(code); got != "typescript" {
		t.Fatalf("DetectLanguage = %q, want typescript", got)
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("Color"); !ok || k != KindColor {
		t.Fatalf("ParseKind(Color) = %s, %v", k, ok)
	}
	if _, ok := ParseKind("blob"); ok {
		t.Fatal("ParseKind(blob) accepted")
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"rust":       "rs",
		"python":     "py",
		"typescript": "ts",
		"shell":      "sh",
		"go":         "go",
		"":           "txt",
		"cobol":      "txt",
	}
	for lang, want := range cases {
		if got := Extension(lang); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", lang, got, want)
		}
	}
}
