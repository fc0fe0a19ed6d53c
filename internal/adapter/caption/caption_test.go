package caption

import (
	"image"
	"image/color"
	"testing"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/imaging"
)

func TestCaption(t *testing.T) {
	pb := newPhrasebook()
	tests := []struct {
		name string
		an   imaging.Analysis
		want string
	}{
		{
			name: "dark vivid landscape with accent",
			an: imaging.Analysis{
				Width: 200, Height: 100, Brightness: 0.2, Saturation: 0.8,
				Share: map[string]float64{"blue": 0.7, "green": 0.25, "red": 0.05},
			},
			want: "a dark, vivid, landscape image dominated by blue with touches of green",
		},
		{
			name: "plain square",
			an: imaging.Analysis{
				Width: 10, Height: 10, Brightness: 0.5, Saturation: 0.4,
				Share: map[string]float64{"orange": 1},
			},
			want: "a square image dominated by orange",
		},
		{
			name: "empty",
			an:   imaging.Analysis{Share: map[string]float64{}},
			want: "an empty image",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pb.caption(tt.an); got != tt.want {
				t.Errorf("caption = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_CaptionsFile(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			img.SetRGBA(x, y, color.RGBA{250, 250, 250, 255})
		}
	}
	path, err := imaging.SavePNG(t.TempDir(), "white.png", img)
	if err != nil {
		t.Fatal(err)
	}

	a := New(nil)
	if _, err := a.Run(adapter.FilePayload(path)); err == nil {
		t.Error("run before load should fail")
	}
	if err := a.Load(); err != nil {
		t.Fatal(err)
	}
	out, err := a.Run(adapter.FilePayload(path))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "Caption: a bright, muted, landscape image dominated by white"
	if out.Result() != want {
		t.Errorf("result = %q, want %q", out.Result(), want)
	}
}
