package render

import (
	"image"
	"image/color"
	"testing"
)

var marker = Marker{Color: color.RGBA{R: 255, A: 255}, Size: 8, Thickness: 2}

func grayFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		want    color.RGBA
		wantErr bool
	}{
		{"red", color.RGBA{R: 255, A: 255}, false},
		{"green", color.RGBA{G: 255, A: 255}, false},
		{"blue", color.RGBA{B: 255, A: 255}, false},
		{"magenta", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestOverlayMissingCoordinate(t *testing.T) {
	frame := grayFrame(64, 64)
	out := Overlay(frame, "nose", 0, 0, false, marker)

	if out == frame {
		t.Fatal("Overlay returned the input frame instead of a copy")
	}
	for i := range frame.Pix {
		if out.Pix[i] != frame.Pix[i] {
			t.Fatal("missing coordinate still changed pixels")
		}
	}
}

func TestOverlayDrawsMarkerAtCoordinate(t *testing.T) {
	frame := grayFrame(64, 64)
	out := Overlay(frame, "nose", 40.4, 50.6, true, marker)

	// Cross center at the rounded coordinate
	if got := out.RGBAAt(40, 51); got != marker.Color {
		t.Errorf("pixel at cross center = %v, want %v", got, marker.Color)
	}
	// Horizontal arm reaches half the size away from center
	if got := out.RGBAAt(40-marker.Size/2, 50); got != marker.Color {
		t.Errorf("pixel at arm end = %v, want %v", got, marker.Color)
	}
	// Off-cross pixels keep the frame color
	if got := out.RGBAAt(20, 20); got == marker.Color {
		t.Error("pixel far from the marker was painted")
	}
}

func TestOverlayDoesNotMutateInput(t *testing.T) {
	frame := grayFrame(64, 64)
	before := make([]uint8, len(frame.Pix))
	copy(before, frame.Pix)

	Overlay(frame, "nose", 32, 32, true, marker)

	for i := range before {
		if frame.Pix[i] != before[i] {
			t.Fatal("Overlay mutated the input frame")
		}
	}
}

func TestOverlayClipsAtEdges(t *testing.T) {
	frame := grayFrame(16, 16)
	// Marker centered outside the frame must not panic and may touch edge pixels
	out := Overlay(frame, "nose", -2, -2, true, Marker{Color: marker.Color, Size: 10, Thickness: 2})
	if out.Bounds() != frame.Bounds() {
		t.Errorf("output bounds = %v, want %v", out.Bounds(), frame.Bounds())
	}
}

func TestOverlayDrawsLabelText(t *testing.T) {
	frame := grayFrame(128, 64)
	out := Overlay(frame, "nose", 100, 50, true, marker)

	// Some pixel inside the text box carries the marker color
	found := false
	for y := labelTextY; y < labelTextY+16 && !found; y++ {
		for x := labelTextX; x < labelTextX+40 && !found; x++ {
			if out.RGBAAt(x, y) == marker.Color {
				found = true
			}
		}
	}
	if !found {
		t.Error("no label text pixels found")
	}
}
