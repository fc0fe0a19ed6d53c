package imaging

import (
	"image"
	"image/color/palette"
	"image/gif"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Pan is a pixel offset applied across a Ken Burns sequence.
type Pan struct{ X, Y int }

// KenBurns produces n frames that slowly zoom into img from 1.0 to zoomEnd
// while panning by pan, each frame the size of img.
func KenBurns(img image.Image, n int, zoomEnd float64, pan Pan) []*image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	frames := make([]*image.RGBA, 0, n)
	for t := 0; t < n; t++ {
		a := float64(t) / math.Max(1, float64(n-1))
		zoom := (1-a)*1.0 + a*zoomEnd
		cw, ch := int(float64(w)/zoom), int(float64(h)/zoom)
		cx := w/2 + int(float64(pan.X)*(a-0.5)*2)
		cy := h/2 + int(float64(pan.Y)*(a-0.5)*2)
		left := clamp(cx-cw/2, 0, w-cw)
		top := clamp(cy-ch/2, 0, h-ch)
		crop := image.Rect(left, top, left+cw, top+ch).Add(b.Min)

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
		frames = append(frames, dst)
	}
	return frames
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// SaveGIF encodes frames as a looping animated GIF at fps.
func SaveGIF(dir, name string, frames []*image.RGBA, fps int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	delay := 100 / max(fps, 1)
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, f.Bounds(), f, f.Bounds().Min)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := gif.EncodeAll(out, anim); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}
