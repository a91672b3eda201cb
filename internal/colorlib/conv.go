package colorlib

import "math"

// hslToRGB converts hue in degrees and s/l fractions to 8-bit channels.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	if s == 0 {
		v := channel(l)
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	h /= 360

	r := hueToRGB(p, q, h+1.0/3)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3)
	return channel(r), channel(g), channel(b)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

// rgbToHSL converts 8-bit channels to hue in degrees and s/l fractions.
func rgbToHSL(r8, g8, b8 uint8) (h, s, l float64) {
	r := float64(r8) / 255
	g := float64(g8) / 255
	b := float64(b8) / 255

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s, l
}

// oklchToRGB converts lightness fraction, chroma and hue degrees to 8-bit
// channels. Out-of-gamut colors are clipped deterministically: chroma is
// reduced toward zero by binary search at constant lightness and hue until
// the color fits sRGB, then residual float error is clamped per channel.
func oklchToRGB(l, c, h float64) (uint8, uint8, uint8) {
	r, g, b := oklchToLinear(l, c, h)
	if !inGamut(r, g, b) {
		lo, hi := 0.0, 1.0
		for range 32 {
			mid := (lo + hi) / 2
			if r, g, b = oklchToLinear(l, c*mid, h); inGamut(r, g, b) {
				lo = mid
			} else {
				hi = mid
			}
		}
		r, g, b = oklchToLinear(l, c*lo, h)
	}
	return channel(gamma(clamp01(r))), channel(gamma(clamp01(g))), channel(gamma(clamp01(b)))
}

const gamutEps = 1e-4

func inGamut(r, g, b float64) bool {
	ok := func(v float64) bool { return v >= -gamutEps && v <= 1+gamutEps }
	return ok(r) && ok(g) && ok(b)
}

// oklchToLinear returns linear-light sRGB components, possibly out of [0,1].
func oklchToLinear(l, c, h float64) (float64, float64, float64) {
	hr := h * math.Pi / 180
	a := c * math.Cos(hr)
	b := c * math.Sin(hr)

	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l3 := l_ * l_ * l_
	m3 := m_ * m_ * m_
	s3 := s_ * s_ * s_

	return 4.0767416621*l3 - 3.3077115913*m3 + 0.2309699292*s3,
		-1.2684380046*l3 + 2.6097574011*m3 - 0.3413193965*s3,
		-0.0041960863*l3 - 0.7034186147*m3 + 1.7076147010*s3
}

// rgbToOKLCH converts 8-bit channels to lightness fraction, chroma and hue
// degrees in [0, 360).
func rgbToOKLCH(r8, g8, b8 uint8) (l, c, h float64) {
	r := linear(float64(r8) / 255)
	g := linear(float64(g8) / 255)
	b := linear(float64(b8) / 255)

	lm := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	mm := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	sm := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	l = 0.2104542553*lm + 0.7936177850*mm - 0.0040720468*sm
	a := 1.9779984951*lm - 2.4285922050*mm + 0.4505937099*sm
	bb := 0.0259040371*lm + 0.7827717662*mm - 0.8086757660*sm

	c = math.Hypot(a, bb)
	h = math.Atan2(bb, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return l, c, h
}

func linear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func gamma(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
