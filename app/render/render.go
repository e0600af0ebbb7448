// Package render composes the image shown for one frame: the decoded frame,
// an optional cross marker at the active label's coordinate, and the label
// name. It never mutates its inputs.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text position of the label name, independent of the marker.
const (
	labelTextX = 30
	labelTextY = 30
)

// Marker describes how the active coordinate is drawn.
type Marker struct {
	Color     color.RGBA
	Size      int // total length of each cross arm pair, in pixels
	Thickness int // stroke thickness, in pixels
}

// ParseColor maps a marker color name to its RGBA value.
func ParseColor(name string) (color.RGBA, error) {
	switch name {
	case "red":
		return color.RGBA{R: 255, A: 255}, nil
	case "green":
		return color.RGBA{G: 255, A: 255}, nil
	case "blue":
		return color.RGBA{B: 255, A: 255}, nil
	default:
		return color.RGBA{}, fmt.Errorf("color is not red, green or blue: %s", name)
	}
}

// Overlay returns a copy of frame with the marker and label name drawn on it.
// When ok is false the frame is returned as a plain copy: no marker and no
// label text, so a missing annotation shows the frame unannotated.
func Overlay(frame *image.RGBA, label string, x, y float64, ok bool, m Marker) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Src)
	if !ok {
		return out
	}

	cx := int(math.Round(x))
	cy := int(math.Round(y))
	drawCross(out, cx, cy, m)
	drawString(out, labelTextX, labelTextY, label, m.Color)
	return out
}

// drawCross draws a cross-shaped marker centered at (cx, cy).
func drawCross(img *image.RGBA, cx, cy int, m Marker) {
	half := m.Size / 2
	t := m.Thickness
	if t < 1 {
		t = 1
	}

	fillRect(img, cx-half, cy-t/2, cx+half, cy-t/2+t-1, m.Color)
	fillRect(img, cx-t/2, cy-half, cx-t/2+t-1, cy+half, m.Color)
}

// fillRect fills an inclusive pixel rectangle, clipped to the image bounds.
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if image.Pt(x, y).In(img.Bounds()) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

func drawString(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+13),
	}
	d.DrawString(s)
}
