package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.design/x/clipboard"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"

	"labeledit/app"
)

// dragRegion tracks which part of the window a press started in, so that
// subsequent moves keep routing to the same control.
type dragRegion int

const (
	regionNone dragRegion = iota
	regionImage
	regionFrameSlider
	regionLabelSlider
)

// sessionDone is sent to the window when the session goroutine returns.
type sessionDone struct{}

// Run opens the window and runs session against it, blocking until the
// session ends or the window is closed. Must be called from the main
// goroutine; the shiny driver takes over the thread.
func Run(cfg Config, session func(sink app.DisplaySink)) error {
	clipboardOK := clipboard.Init() == nil

	var runErr error
	driver.Main(func(s screen.Screen) {
		totalHeight := cfg.FrameHeight + 2*sliderHeight
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Width:  cfg.FrameWidth,
			Height: totalHeight,
			Title:  cfg.Title,
		})
		if err != nil {
			runErr = fmt.Errorf("failed to create window: %w", err)
			return
		}
		defer w.Release()

		buf, err := s.NewBuffer(image.Point{X: cfg.FrameWidth, Y: totalHeight})
		if err != nil {
			runErr = fmt.Errorf("failed to create buffer: %w", err)
			return
		}
		defer buf.Release()

		win := &Window{
			cfg:         cfg,
			events:      make(chan app.Event, 128),
			done:        make(chan struct{}),
			send:        w.Send,
			clipboardOK: clipboardOK,
		}

		go func() {
			session(win)
			close(win.done)
			w.Send(sessionDone{})
		}()

		region := regionNone
		for {
			switch e := w.NextEvent().(type) {
			case sessionDone:
				return

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					win.emit(app.Event{Kind: app.EventQuit})
					<-win.done
					return
				}

			case paint.Event:
				win.repaint(buf.RGBA())
				w.Upload(image.Point{}, buf, buf.Bounds())
				w.Publish()

			case mouse.Event:
				region = win.handleMouse(e, region)

			case key.Event:
				win.handleKey(e)
			}
		}
	})
	return runErr
}

// requestPaint asks the window loop to repaint from the stored state.
func (w *Window) requestPaint() {
	if w.send != nil {
		w.send(paint.Event{})
	}
}

// handleMouse routes a pointer event by the region its press started in and
// returns the updated region.
func (w *Window) handleMouse(e mouse.Event, region dragRegion) dragRegion {
	x, y := float64(e.X), float64(e.Y)

	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		switch {
		case y < float64(w.cfg.FrameHeight):
			w.emit(app.Event{Kind: app.EventPointerDown, X: x, Y: y})
			return regionImage
		case y < float64(w.cfg.FrameHeight+sliderHeight):
			w.emit(app.Event{Kind: app.EventSetFrame, Index: w.sliderIndex(x, w.cfg.FrameCount)})
			return regionFrameSlider
		default:
			w.emit(app.Event{Kind: app.EventSetLabel, Index: w.sliderIndex(x, len(w.cfg.Labels))})
			return regionLabelSlider
		}

	case e.Direction == mouse.DirNone:
		switch region {
		case regionImage:
			w.emitDrag(app.Event{Kind: app.EventPointerDrag, X: x, Y: y})
		case regionFrameSlider:
			w.emitDrag(app.Event{Kind: app.EventSetFrame, Index: w.sliderIndex(x, w.cfg.FrameCount)})
		case regionLabelSlider:
			w.emitDrag(app.Event{Kind: app.EventSetLabel, Index: w.sliderIndex(x, len(w.cfg.Labels))})
		}
		return region

	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		// Intermediate moves may be dropped under load, so the release
		// position is always delivered as the final event for the region.
		switch region {
		case regionImage:
			w.emit(app.Event{Kind: app.EventPointerDrag, X: x, Y: y})
			w.emit(app.Event{Kind: app.EventPointerUp})
		case regionFrameSlider:
			w.emit(app.Event{Kind: app.EventSetFrame, Index: w.sliderIndex(x, w.cfg.FrameCount)})
		case regionLabelSlider:
			w.emit(app.Event{Kind: app.EventSetLabel, Index: w.sliderIndex(x, len(w.cfg.Labels))})
		}
		return regionNone
	}
	return region
}

// handleKey maps keyboard input to session events.
func (w *Window) handleKey(e key.Event) {
	if e.Direction != key.DirPress {
		return
	}
	switch {
	case e.Rune == 'q' || e.Rune == 'Q' || e.Code == key.CodeEscape:
		w.emit(app.Event{Kind: app.EventQuit})
	case e.Rune == ',' || e.Code == key.CodeLeftArrow:
		w.emit(app.Event{Kind: app.EventAdvanceFrame, Delta: -1})
	case e.Rune == '.' || e.Code == key.CodeRightArrow:
		w.emit(app.Event{Kind: app.EventAdvanceFrame, Delta: 1})
	case e.Rune == 'c' || e.Rune == 'C':
		w.emit(app.Event{Kind: app.EventCopyCell})
	}
}

var (
	stripBackground = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	stripFill       = color.RGBA{R: 160, G: 160, B: 200, A: 255}
	stripText       = color.Black
)

// repaint redraws the whole window: the last composed frame on top, the two
// slider strips below it.
func (w *Window) repaint(dst *image.RGBA) {
	w.mu.Lock()
	frame := w.frame
	framePos := w.framePos
	labelPos := w.labelPos
	w.mu.Unlock()

	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	if frame != nil {
		r := image.Rect(0, 0, w.cfg.FrameWidth, w.cfg.FrameHeight)
		draw.Draw(dst, r, frame, frame.Bounds().Min, draw.Src)
	}

	frameStrip := image.Rect(0, w.cfg.FrameHeight, w.cfg.FrameWidth, w.cfg.FrameHeight+sliderHeight)
	w.drawSlider(dst, frameStrip, framePos, w.cfg.FrameCount,
		fmt.Sprintf("frame %d/%d", framePos, w.cfg.FrameCount-1))

	labelStrip := image.Rect(0, w.cfg.FrameHeight+sliderHeight, w.cfg.FrameWidth, w.cfg.FrameHeight+2*sliderHeight)
	labelName := ""
	if labelPos >= 0 && labelPos < len(w.cfg.Labels) {
		labelName = w.cfg.Labels[labelPos]
	}
	w.drawSlider(dst, labelStrip, labelPos, len(w.cfg.Labels),
		fmt.Sprintf("label %s", labelName))
}

// drawSlider fills one strip: background, the proportion filled up to pos,
// and a caption.
func (w *Window) drawSlider(dst *image.RGBA, strip image.Rectangle, pos, count int, caption string) {
	draw.Draw(dst, strip, image.NewUniform(stripBackground), image.Point{}, draw.Src)
	if count > 1 {
		fillWidth := strip.Dx() * pos / (count - 1)
		filled := image.Rect(strip.Min.X, strip.Min.Y, strip.Min.X+fillWidth, strip.Max.Y)
		draw.Draw(dst, filled, image.NewUniform(stripFill), image.Point{}, draw.Src)
	}
	drawStripText(dst, strip.Min.X+5, strip.Min.Y+4, caption)
}

func drawStripText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(stripText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y+13),
	}
	d.DrawString(s)
}
