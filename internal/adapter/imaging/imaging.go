// Package imaging holds the image helpers shared by the image adapters:
// decoding, resampling, colour analysis, text overlay and artifact naming.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

// Open decodes a PNG, JPEG, GIF, BMP or WebP file.
func Open(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, format, nil
}

// Resize scales img to w×h.
func Resize(img image.Image, w, h int, scaler draw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Thumbnail scales img so its longer side is at most limit pixels.
func Thumbnail(img image.Image, limit int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if w > limit || h > limit {
		if w >= h {
			h = limit * h / w
			w = limit
		} else {
			w = limit * w / h
			h = limit
		}
	}
	return Resize(img, max(w, 1), max(h, 1), draw.ApproxBiLinear)
}

// Seed derives a stable seed from text.
func Seed(text string) uint64 {
	return xxhash.Sum64String(strings.ToLower(strings.TrimSpace(text)))
}

// SeedColor picks a saturated colour from seed, offset by shift bits.
func SeedColor(seed uint64, shift uint) color.RGBA {
	v := seed >> shift
	h := float64(v%360) / 360
	return hsvToRGB(h, 0.55+float64(v>>9%40)/100, 0.75+float64(v>>17%25)/100)
}

// Gradient paints a diagonal two-colour gradient derived from seed.
func Gradient(seed uint64, w, h int) *image.RGBA {
	a, b := SeedColor(seed, 0), SeedColor(seed, 23)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	span := float64(w + h - 2)
	if span <= 0 {
		span = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x+y) / span
			img.SetRGBA(x, y, color.RGBA{
				R: lerp(a.R, b.R, t),
				G: lerp(a.G, b.G, t),
				B: lerp(a.B, b.B, t),
				A: 0xff,
			})
		}
	}
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// Label draws text onto img with the fixed 7×13 face, wrapping at the image
// width and starting at the top-left margin.
func Label(img draw.Image, text string, c color.Color) {
	face := basicfont.Face7x13
	const margin = 8
	cols := (img.Bounds().Dx() - 2*margin) / 7
	if cols < 1 {
		return
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	y := margin + face.Ascent
	for _, line := range wrap(text, cols) {
		if y > img.Bounds().Dy()-margin {
			break
		}
		d.Dot = fixed.P(margin, y)
		d.DrawString(line)
		y += face.Height
	}
}

func wrap(text string, cols int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		for len(word) > cols {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			lines = append(lines, word[:cols])
			word = word[cols:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(word) > cols {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Snippet turns the first words of a prompt into a filename fragment.
func Snippet(prompt string, words, maxLen int, fallback string) string {
	fields := strings.Fields(prompt)
	if len(fields) > words {
		fields = fields[:words]
	}
	s := strings.Join(fields, "_")
	if s == "" {
		s = fallback
	}
	s = unsafeChars.ReplaceAllString(s, "_")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.Trim(s, "_")
	if s == "" {
		return fallback
	}
	return s
}

// Timestamp formats t the way artifact names embed it.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// SavePNG writes img to dir/name, creating dir as needed.
func SavePNG(dir, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
