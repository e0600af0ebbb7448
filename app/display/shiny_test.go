package display

import (
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"labeledit/app"
)

func newTestWindow() *Window {
	return &Window{
		cfg: Config{
			FrameWidth:  100,
			FrameHeight: 80,
			FrameCount:  10,
			Labels:      []string{"nose", "ear"},
		},
		events: make(chan app.Event, 16),
		done:   make(chan struct{}),
	}
}

func drain(w *Window) []app.Event {
	var out []app.Event
	for {
		select {
		case ev := <-w.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func press(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress}
}

func move(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Direction: mouse.DirNone}
}

func release(x, y float32) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease}
}

func TestImageDragEmitsDownDragUp(t *testing.T) {
	w := newTestWindow()

	region := w.handleMouse(press(10, 10), regionNone)
	region = w.handleMouse(move(12, 12), region)
	region = w.handleMouse(release(14, 14), region)
	if region != regionNone {
		t.Errorf("region after release = %v, want none", region)
	}

	events := drain(w)
	kinds := []app.EventKind{app.EventPointerDown, app.EventPointerDrag, app.EventPointerDrag, app.EventPointerUp}
	if len(events) != len(kinds) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(kinds))
	}
	for i, kind := range kinds {
		if events[i].Kind != kind {
			t.Errorf("event %d kind = %v, want %v", i, events[i].Kind, kind)
		}
	}
	// The release position is the last committed drag position
	final := events[len(events)-2]
	if final.X != 14 || final.Y != 14 {
		t.Errorf("final drag at (%v,%v), want (14,14)", final.X, final.Y)
	}
}

func TestFrameSliderReleaseDeliversFinalPosition(t *testing.T) {
	w := newTestWindow()

	// Press in the frame strip, drag, then drain so dropped intermediate
	// moves cannot mask a stale final position.
	region := w.handleMouse(press(0, 85), regionNone)
	region = w.handleMouse(move(50, 85), region)
	drain(w)

	w.handleMouse(release(99, 85), region)
	events := drain(w)
	if len(events) != 1 || events[0].Kind != app.EventSetFrame {
		t.Fatalf("got events %v, want one SetFrame", events)
	}
	if events[0].Index != 9 {
		t.Errorf("release frame index = %d, want 9", events[0].Index)
	}
}

func TestLabelSliderReleaseDeliversFinalPosition(t *testing.T) {
	w := newTestWindow()

	region := w.handleMouse(press(0, 110), regionNone)
	drain(w)

	w.handleMouse(release(99, 110), region)
	events := drain(w)
	if len(events) != 1 || events[0].Kind != app.EventSetLabel {
		t.Fatalf("got events %v, want one SetLabel", events)
	}
	if events[0].Index != 1 {
		t.Errorf("release label index = %d, want 1", events[0].Index)
	}
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	w := newTestWindow()
	w.handleMouse(move(10, 10), regionNone)
	if events := drain(w); len(events) != 0 {
		t.Errorf("hover emitted %v, want nothing", events)
	}
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		name  string
		event key.Event
		want  app.Event
	}{
		{"quit q", key.Event{Rune: 'q', Direction: key.DirPress}, app.Event{Kind: app.EventQuit}},
		{"quit escape", key.Event{Rune: -1, Code: key.CodeEscape, Direction: key.DirPress}, app.Event{Kind: app.EventQuit}},
		{"previous comma", key.Event{Rune: ',', Direction: key.DirPress}, app.Event{Kind: app.EventAdvanceFrame, Delta: -1}},
		{"next period", key.Event{Rune: '.', Direction: key.DirPress}, app.Event{Kind: app.EventAdvanceFrame, Delta: 1}},
		{"next arrow", key.Event{Rune: -1, Code: key.CodeRightArrow, Direction: key.DirPress}, app.Event{Kind: app.EventAdvanceFrame, Delta: 1}},
		{"copy", key.Event{Rune: 'c', Direction: key.DirPress}, app.Event{Kind: app.EventCopyCell}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWindow()
			w.handleKey(tt.event)
			events := drain(w)
			if len(events) != 1 || events[0] != tt.want {
				t.Errorf("got %v, want [%v]", events, tt.want)
			}
		})
	}
}

func TestKeyReleaseIsIgnored(t *testing.T) {
	w := newTestWindow()
	w.handleKey(key.Event{Rune: 'q', Direction: key.DirRelease})
	if events := drain(w); len(events) != 0 {
		t.Errorf("key release emitted %v, want nothing", events)
	}
}

func TestSliderIndexBounds(t *testing.T) {
	w := newTestWindow()
	tests := []struct {
		name  string
		x     float64
		count int
		want  int
	}{
		{"left edge", 0, 10, 0},
		{"right edge", 99, 10, 9},
		{"past right edge", 500, 10, 9},
		{"negative", -5, 10, 0},
		{"single entry", 50, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.sliderIndex(tt.x, tt.count); got != tt.want {
				t.Errorf("sliderIndex(%v, %d) = %d, want %d", tt.x, tt.count, got, tt.want)
			}
		})
	}
}
