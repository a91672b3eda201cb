// Package colorlib parses and formats color text in the four formats shard
// understands: hex, rgb/rgba, hsl/hsla and oklch.
//
// Every accepted input normalizes to a single canonical RGBA value with four
// 8-bit channels. Formatting back out is a pure function of that value; the
// oklch form is lossy for out-of-gamut inputs (they are clipped on parse, see
// conv.go) but never for values that came from an RGBA in the first place.
package colorlib

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RGBA is the canonical color value: four fully resolved 8-bit channels.
type RGBA struct {
	R, G, B, A uint8
}

// ErrMalformed is wrapped by Parse for any input that matches no grammar.
var ErrMalformed = errors.New("malformed color")

// Format selects an output representation for FormatAs.
type Format string

const (
	FormatHex   Format = "hex"
	FormatRGB   Format = "rgb"
	FormatHSL   Format = "hsl"
	FormatOKLCH Format = "oklch"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatHex:
		return FormatHex, nil
	case FormatRGB:
		return FormatRGB, nil
	case FormatHSL:
		return FormatHSL, nil
	case FormatOKLCH:
		return FormatOKLCH, nil
	}
	return "", fmt.Errorf("unknown color format %q", s)
}

var (
	hexRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbRe = regexp.MustCompile(`(?i)^rgba?\s*\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)
	hslRe = regexp.MustCompile(`(?i)^hsla?\s*\(\s*(-?[0-9]*\.?[0-9]+)\s*,\s*([0-9]*\.?[0-9]+)%\s*,\s*([0-9]*\.?[0-9]+)%\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)
	oklchRe = regexp.MustCompile(`(?i)^oklch\s*\(\s*([0-9]*\.?[0-9]+)%\s+([0-9]*\.?[0-9]+)\s+(-?[0-9]*\.?[0-9]+)\s*(?:/\s*([0-9]*\.?[0-9]+)\s*)?\)$`)

	// scanRe finds candidate color substrings for ExtractAll. Near-matches
	// that fail Parse are skipped, so it can be loose about argument bodies.
	scanRe = regexp.MustCompile(`(?i)#[0-9a-f]{3,8}\b|rgba?\s*\([^)]*\)|hsla?\s*\([^)]*\)|oklch\s*\([^)]*\)`)
)

// Parse normalizes a color string to its canonical RGBA value.
// Accepted grammars: #RGB / #RRGGBB / #RRGGBBAA, rgb()/rgba() with channels
// 0–255, hsl()/hsla() with hue wrapping modulo 360, and oklch(l% c h [/ a]).
// Alpha may be an integer 0–255 or a fraction 0.0–1.0; the presence of a
// decimal point decides which.
func Parse(s string) (RGBA, error) {
	s = strings.TrimSpace(s)

	if m := hexRe.FindStringSubmatch(s); m != nil {
		return parseHex(m[1])
	}
	if m := rgbRe.FindStringSubmatch(s); m != nil {
		return parseRGB(m)
	}
	if m := hslRe.FindStringSubmatch(s); m != nil {
		return parseHSL(m)
	}
	if m := oklchRe.FindStringSubmatch(s); m != nil {
		return parseOKLCH(m)
	}
	return RGBA{}, fmt.Errorf("%w: %q", ErrMalformed, s)
}

func parseHex(digits string) (RGBA, error) {
	nib := func(i int) uint8 {
		v, _ := strconv.ParseUint(digits[i:i+1], 16, 8)
		return uint8(v)
	}
	pair := func(i int) uint8 {
		v, _ := strconv.ParseUint(digits[i:i+2], 16, 8)
		return uint8(v)
	}
	switch len(digits) {
	case 3:
		// #RGB: each nibble d expands to dd
		return RGBA{nib(0)*16 + nib(0), nib(1)*16 + nib(1), nib(2)*16 + nib(2), 255}, nil
	case 6:
		return RGBA{pair(0), pair(2), pair(4), 255}, nil
	case 8:
		return RGBA{pair(0), pair(2), pair(4), pair(6)}, nil
	}
	return RGBA{}, fmt.Errorf("%w: #%s", ErrMalformed, digits)
}

func parseRGB(m []string) (RGBA, error) {
	ch := func(s string) (uint8, error) {
		v, err := strconv.Atoi(s)
		if err != nil || v > 255 {
			return 0, fmt.Errorf("%w: channel %q out of range", ErrMalformed, s)
		}
		return uint8(v), nil
	}
	r, err := ch(m[1])
	if err != nil {
		return RGBA{}, err
	}
	g, err := ch(m[2])
	if err != nil {
		return RGBA{}, err
	}
	b, err := ch(m[3])
	if err != nil {
		return RGBA{}, err
	}
	a, err := parseAlpha(m[4])
	if err != nil {
		return RGBA{}, err
	}
	return RGBA{r, g, b, a}, nil
}

func parseHSL(m []string) (RGBA, error) {
	h, _ := strconv.ParseFloat(m[1], 64)
	s, _ := strconv.ParseFloat(m[2], 64)
	l, _ := strconv.ParseFloat(m[3], 64)
	if s > 100 || l > 100 {
		return RGBA{}, fmt.Errorf("%w: hsl percentage out of range", ErrMalformed)
	}
	// Hue wraps rather than rejecting out-of-range values.
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	a, err := parseAlpha(m[4])
	if err != nil {
		return RGBA{}, err
	}
	r, g, b := hslToRGB(h, s/100, l/100)
	return RGBA{r, g, b, a}, nil
}

func parseOKLCH(m []string) (RGBA, error) {
	l, _ := strconv.ParseFloat(m[1], 64)
	c, _ := strconv.ParseFloat(m[2], 64)
	h, _ := strconv.ParseFloat(m[3], 64)
	if l > 100 {
		return RGBA{}, fmt.Errorf("%w: oklch lightness out of range", ErrMalformed)
	}
	a, err := parseAlpha(m[4])
	if err != nil {
		return RGBA{}, err
	}
	r, g, b := oklchToRGB(l/100, c, h)
	return RGBA{r, g, b, a}, nil
}

// parseAlpha resolves an optional alpha token. An empty token means opaque.
// A token with a decimal point is a fraction 0.0–1.0 rounded to the nearest
// 1/255; otherwise it is an integer 0–255.
func parseAlpha(tok string) (uint8, error) {
	if tok == "" {
		return 255, nil
	}
	if strings.Contains(tok, ".") {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil || f > 1 {
			return 0, fmt.Errorf("%w: alpha %q out of range", ErrMalformed, tok)
		}
		return uint8(math.Round(f * 255)), nil
	}
	v, err := strconv.Atoi(tok)
	if err != nil || v > 255 {
		return 0, fmt.Errorf("%w: alpha %q out of range", ErrMalformed, tok)
	}
	return uint8(v), nil
}

// FormatAs renders c in the requested format. The output reparses to exactly c.
func FormatAs(c RGBA, f Format) string {
	switch f {
	case FormatRGB:
		return c.RGBString()
	case FormatHSL:
		return c.HSLString()
	case FormatOKLCH:
		return c.OKLCHString()
	default:
		return c.Hex()
	}
}

// Hex renders #RRGGBB, or #RRGGBBAA when not fully opaque.
func (c RGBA) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// RGBString renders rgb(r, g, b), or rgba(r, g, b, a) with fractional alpha.
func (c RGBA) RGBString() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, alphaString(c.A))
}

// HSLString renders hsl(h, s%, l%) or hsla(h, s%, l%, a). Components carry
// enough decimal places that the string reparses to the same RGBA.
func (c RGBA) HSLString() string {
	h, s, l := rgbToHSL(c.R, c.G, c.B)
	if c.A == 255 {
		return fmt.Sprintf("hsl(%s, %s%%, %s%%)", num(h), num(s*100), num(l*100))
	}
	return fmt.Sprintf("hsla(%s, %s%%, %s%%, %s)", num(h), num(s*100), num(l*100), alphaString(c.A))
}

// OKLCHString renders oklch(l% c h) or oklch(l% c h / a). OKLCH components
// need more precision than the other formats: adjacent RGBA8 values can sit
// closer than 1e-4 apart in l/c/h, so four decimal places would occasionally
// reparse to a neighbouring channel value.
func (c RGBA) OKLCHString() string {
	l, ch, h := rgbToOKLCH(c.R, c.G, c.B)
	if c.A == 255 {
		return fmt.Sprintf("oklch(%s%% %s %s)", num6(l*100), num6(ch), num6(h))
	}
	return fmt.Sprintf("oklch(%s%% %s %s / %s)", num6(l*100), num6(ch), num6(h), alphaString(c.A))
}

// num formats a component rounded to four decimal places with trailing
// zeros trimmed. Four places keeps the round trip exact for hue, saturation,
// lightness and alpha.
func num(v float64) string {
	v = math.Round(v*10000) / 10000
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// num6 is num at six decimal places, for OKLCH components.
func num6(v float64) string {
	v = math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func alphaString(a uint8) string {
	return num(float64(a) / 255)
}

// ExtractAll scans text left to right and yields every substring that parses
// as a color, in first-occurrence order, non-overlapping. Malformed
// near-matches are skipped. The sequence is lazy and single-use.
func ExtractAll(text string) iter.Seq[RGBA] {
	return func(yield func(RGBA) bool) {
		for {
			loc := scanRe.FindStringIndex(text)
			if loc == nil {
				return
			}
			if c, err := Parse(text[loc[0]:loc[1]]); err == nil {
				if !yield(c) {
					return
				}
			}
			text = text[loc[1]:]
		}
	}
}
