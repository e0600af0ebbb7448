// Package app hosts the editing session: the state machine that keeps the
// frame cursor, label cursor and pointer state consistent with the
// annotation store while driving a render-on-change loop.
package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"labeledit/app/render"
)

// AnnotationStore is the slice of the store the session needs.
type AnnotationStore interface {
	Coordinate(frame, label int) (x, y float64, ok bool)
	SetCoordinate(frame, label int, x, y float64)
	Labels() []string
	Dirty() bool
}

// FrameSource produces decoded frames by index.
type FrameSource interface {
	Frame(ctx context.Context, idx int) (*image.RGBA, error)
	FrameCount() int
}

// DisplaySink shows composed images and reports input events.
type DisplaySink interface {
	Events() <-chan Event
	Show(img image.Image)
	SetFramePos(idx int)
	SetLabelPos(idx int)
	CopyText(text string)
}

// Session is the editing session over one video / label table pair. It owns
// the three cursors and is the only writer of the annotation store for the
// duration of the run.
type Session struct {
	store  AnnotationStore
	frames FrameSource
	sink   DisplaySink
	marker render.Marker
	logger *slog.Logger

	frameIdx int
	labelIdx int

	pointerDown  bool
	pointerX     float64
	pointerY     float64
	pointerFresh bool // a pointer position arrived since the last tick

	// Last committed write, used to skip redundant store writes when the
	// pointer reports the same position repeatedly.
	lastFrame, lastLabel int
	lastX, lastY         float64
	hasCommit            bool
}

// NewSession wires a session over its collaborators. The cursors start at
// frame 0, label 0, pointer up.
func NewSession(store AnnotationStore, frames FrameSource, sink DisplaySink, marker render.Marker, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		store:  store,
		frames: frames,
		sink:   sink,
		marker: marker,
		logger: logger,
	}
}

// Run consumes events until a quit event arrives, the event channel closes,
// or the context is canceled. All store mutation, decoding and rendering
// happen synchronously inside this loop.
func (s *Session) Run(ctx context.Context) {
	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.sink.Events():
			if !ok {
				return
			}
			if ev.Kind == EventQuit {
				s.logger.Info("session ended", "edits", s.store.Dirty())
				return
			}
			s.dispatch(ctx, ev)
		}
	}
}

func (s *Session) dispatch(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventSetFrame:
		s.SetFrame(ctx, ev.Index)
	case EventSetLabel:
		s.SetLabel(ctx, ev.Index)
	case EventAdvanceFrame:
		s.AdvanceFrame(ctx, ev.Delta)
	case EventPointerDown:
		s.PointerDown(ctx, ev.X, ev.Y)
	case EventPointerDrag:
		s.PointerDrag(ctx, ev.X, ev.Y)
	case EventPointerUp:
		s.PointerUp()
	case EventCopyCell:
		s.CopyCell()
	}
}

// SetFrame moves the frame cursor, clamped to the addressable range, and
// redraws. It never mutates the store.
func (s *Session) SetFrame(ctx context.Context, idx int) {
	s.frameIdx = clamp(idx, 0, s.frames.FrameCount()-1)
	s.Tick(ctx)
}

// SetLabel moves the label cursor, clamped, and redraws. Read-only with
// respect to the store.
func (s *Session) SetLabel(ctx context.Context, idx int) {
	s.labelIdx = clamp(idx, 0, len(s.store.Labels())-1)
	s.sink.SetLabelPos(s.labelIdx)
	s.Tick(ctx)
}

// AdvanceFrame moves the frame cursor by delta, clamping at both ends.
func (s *Session) AdvanceFrame(ctx context.Context, delta int) {
	s.SetFrame(ctx, s.frameIdx+delta)
}

// PointerDown starts an edit: the press position is committed to the store
// immediately and shown.
func (s *Session) PointerDown(ctx context.Context, x, y float64) {
	s.pointerDown = true
	s.pointerX, s.pointerY = x, y
	s.pointerFresh = true
	s.commit(x, y)
	s.Tick(ctx)
}

// PointerDrag commits each reported position while the pointer is down, so
// every intermediate position is persisted, not just the release point.
// Ignored while the pointer is up.
func (s *Session) PointerDrag(ctx context.Context, x, y float64) {
	if !s.pointerDown {
		return
	}
	s.pointerX, s.pointerY = x, y
	s.pointerFresh = true
	s.commit(x, y)
	s.Tick(ctx)
}

// PointerUp ends the drag. No further store mutation.
func (s *Session) PointerUp() {
	s.pointerDown = false
}

// commit writes the active cell unless the exact same position was already
// committed for it, so repeated pointer reports do not repeat writes.
func (s *Session) commit(x, y float64) {
	if s.hasCommit &&
		s.lastFrame == s.frameIdx && s.lastLabel == s.labelIdx &&
		s.lastX == x && s.lastY == y {
		return
	}
	s.store.SetCoordinate(s.frameIdx, s.labelIdx, x, y)
	s.lastFrame, s.lastLabel = s.frameIdx, s.labelIdx
	s.lastX, s.lastY = x, y
	s.hasCommit = true
}

// Tick renders the current state. While a drag is in progress the live
// pointer position is authoritative; otherwise the stored coordinate for the
// cursor pair is shown. A missing cell renders the frame unannotated.
func (s *Session) Tick(ctx context.Context) {
	var x, y float64
	var ok bool
	if s.pointerDown && s.pointerFresh {
		x, y, ok = s.pointerX, s.pointerY, true
		s.pointerFresh = false
	} else {
		x, y, ok = s.store.Coordinate(s.frameIdx, s.labelIdx)
	}
	s.redraw(ctx, x, y, ok)
}

// redraw is the single render path: it resolves the frame, overlays the
// coordinate and publishes the result.
func (s *Session) redraw(ctx context.Context, x, y float64, ok bool) {
	frame, err := s.frames.Frame(ctx, s.frameIdx)
	if err != nil {
		s.logger.Warn("failed to decode frame", "frame", s.frameIdx, "error", err)
		return
	}
	label := s.store.Labels()[s.labelIdx]
	s.sink.Show(render.Overlay(frame, label, x, y, ok, s.marker))
	s.sink.SetFramePos(s.frameIdx)
}

// CopyCell puts the active cell's coordinate on the clipboard as a CSV line
// of label, frame, x, y. No-op when the cell is missing.
func (s *Session) CopyCell() {
	x, y, ok := s.store.Coordinate(s.frameIdx, s.labelIdx)
	if !ok {
		return
	}
	label := s.store.Labels()[s.labelIdx]
	s.sink.CopyText(fmt.Sprintf("%s,%d,%g,%g", label, s.frameIdx, x, y))
}

// FrameIndex returns the current frame cursor.
func (s *Session) FrameIndex() int { return s.frameIdx }

// LabelIndex returns the current label cursor.
func (s *Session) LabelIndex() int { return s.labelIdx }

// PointerIsDown reports the pointer sub-machine state.
func (s *Session) PointerIsDown() bool { return s.pointerDown }

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
