package app

// EventKind enumerates everything the display sink can report to the editing
// session. All input, discrete and continuous, arrives through this one type
// and is dispatched in a single loop.
type EventKind int

const (
	// EventSetFrame selects a frame by absolute index (slider).
	EventSetFrame EventKind = iota
	// EventSetLabel selects a label by absolute index (slider).
	EventSetLabel
	// EventAdvanceFrame moves the frame cursor by a relative delta (keyboard).
	EventAdvanceFrame
	// EventPointerDown reports a press on the image area.
	EventPointerDown
	// EventPointerDrag reports pointer movement while pressed.
	EventPointerDrag
	// EventPointerUp reports the release.
	EventPointerUp
	// EventCopyCell copies the active cell's coordinate to the clipboard.
	EventCopyCell
	// EventQuit ends the session.
	EventQuit
)

// Event is one input event. Index carries the target for SetFrame/SetLabel,
// Delta the offset for AdvanceFrame, and X/Y the pointer position in image
// coordinates for the pointer events.
type Event struct {
	Kind  EventKind
	Index int
	Delta int
	X, Y  float64
}
