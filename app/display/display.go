// Package display is the interactive window for an editing session: it shows
// composed frames, draws the frame and label slider strips, and translates
// pointer and keyboard input into session events.
package display

import (
	"image"
	"math"
	"sync"

	"golang.design/x/clipboard"

	"labeledit/app"
)

// sliderHeight is the height in pixels of each slider strip below the image.
const sliderHeight = 24

// Config describes the window for one session.
type Config struct {
	Title       string
	FrameWidth  int
	FrameHeight int
	FrameCount  int
	Labels      []string
}

// Window implements the session's display sink over a shiny window. Show,
// SetFramePos and SetLabelPos are called from the session goroutine; the
// window event loop repaints from the stored state.
type Window struct {
	cfg    Config
	events chan app.Event
	done   chan struct{}
	send   func(event any)

	clipboardOK bool

	mu       sync.Mutex
	frame    image.Image
	framePos int
	labelPos int
}

// Events returns the channel the session consumes.
func (w *Window) Events() <-chan app.Event { return w.events }

// Show publishes a newly composed image.
func (w *Window) Show(img image.Image) {
	w.mu.Lock()
	w.frame = img
	w.mu.Unlock()
	w.requestPaint()
}

// SetFramePos moves the frame slider indicator.
func (w *Window) SetFramePos(idx int) {
	w.mu.Lock()
	w.framePos = idx
	w.mu.Unlock()
	w.requestPaint()
}

// SetLabelPos moves the label slider indicator.
func (w *Window) SetLabelPos(idx int) {
	w.mu.Lock()
	w.labelPos = idx
	w.mu.Unlock()
	w.requestPaint()
}

// CopyText puts text on the system clipboard. Silently does nothing when the
// clipboard is unavailable.
func (w *Window) CopyText(text string) {
	if !w.clipboardOK {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
}

// emit delivers a discrete event to the session, giving up if the session
// has already ended.
func (w *Window) emit(ev app.Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// emitDrag delivers a continuous pointer event, dropping it when the session
// is still busy with earlier ones. The final position of a drag always
// arrives via the release handling in the event loop.
func (w *Window) emitDrag(ev app.Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	default:
	}
}

// sliderIndex maps an x position inside a slider strip to an index in
// [0, count-1].
func (w *Window) sliderIndex(x float64, count int) int {
	if count <= 1 || w.cfg.FrameWidth <= 1 {
		return 0
	}
	idx := int(math.Round(x / float64(w.cfg.FrameWidth-1) * float64(count-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > count-1 {
		idx = count - 1
	}
	return idx
}
