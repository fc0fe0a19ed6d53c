package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Colour names used by Analyze, hue buckets first.
var hueNames = []string{"red", "orange", "yellow", "green", "cyan", "blue", "purple", "magenta"}

// Analysis summarizes the colour content of an image.
type Analysis struct {
	Width, Height int
	// Share maps a colour name to the fraction of sampled pixels it covers.
	Share      map[string]float64
	Brightness float64 // mean value, 0..1
	Saturation float64 // mean saturation, 0..1
}

// Ranked returns colour names by descending share, ties broken by name.
func (a Analysis) Ranked() []string {
	names := make([]string, 0, len(a.Share))
	for n := range a.Share {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if a.Share[names[i]] != a.Share[names[j]] {
			return a.Share[names[i]] > a.Share[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Orientation describes the aspect ratio.
func (a Analysis) Orientation() string {
	switch {
	case a.Width > a.Height*5/4:
		return "landscape"
	case a.Height > a.Width*5/4:
		return "portrait"
	default:
		return "square"
	}
}

// Analyze buckets the pixels of a 64px thumbnail of img by colour name.
func Analyze(img image.Image) Analysis {
	b := img.Bounds()
	a := Analysis{Width: b.Dx(), Height: b.Dy(), Share: map[string]float64{}}
	thumb := Thumbnail(img, 64)
	tb := thumb.Bounds()
	total := float64(tb.Dx() * tb.Dy())
	if total == 0 {
		return a
	}
	var sumV, sumS float64
	for y := tb.Min.Y; y < tb.Max.Y; y++ {
		for x := tb.Min.X; x < tb.Max.X; x++ {
			h, s, v := rgbToHSV(thumb.RGBAAt(x, y))
			sumV += v
			sumS += s
			a.Share[colorName(h, s, v)]++
		}
	}
	for k := range a.Share {
		a.Share[k] /= total
	}
	a.Brightness = sumV / total
	a.Saturation = sumS / total
	return a
}

func colorName(h, s, v float64) string {
	switch {
	case v < 0.2:
		return "black"
	case s < 0.18 && v > 0.85:
		return "white"
	case s < 0.18:
		return "gray"
	}
	// Red wraps around 0; shift so buckets start at -22.5°.
	idx := int(math.Mod(h*360+22.5, 360) / 45)
	return hueNames[idx]
}

func rgbToHSV(c color.RGBA) (h, s, v float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	v = mx
	d := mx - mn
	if mx > 0 {
		s = d / mx
	}
	if d == 0 {
		return 0, s, v
	}
	switch mx {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) color.RGBA {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 0xff}
}
