package render

import "sync"

// Point is one captured coordinate in the rendered layer's reference system.
type Point struct {
	X float64
	Y float64
}

// TapStream is the callback side channel for interactive point capture: a
// click on a rendered image surface publishes the coordinate to every
// subscriber, and the most recent point stays readable for stages that poll
// instead of subscribing. The grid builder never sees the stream, only the
// coordinate handed to it.
type TapStream struct {
	mu   sync.Mutex
	subs []func(Point)
	last Point
	seen bool
}

// NewTapStream returns an empty stream with no subscribers.
func NewTapStream() *TapStream {
	return &TapStream{}
}

// Subscribe registers a callback invoked on every tap.
func (t *TapStream) Subscribe(fn func(Point)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// Tap publishes a point to all subscribers in registration order. Callbacks
// run outside the stream's lock, so a subscriber may re-enter the stream.
func (t *TapStream) Tap(x, y float64) {
	t.mu.Lock()
	p := Point{X: x, Y: y}
	t.last = p
	t.seen = true
	subs := append([]func(Point){}, t.subs...)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// Last returns the most recently tapped point, or false when nothing has
// been tapped yet.
func (t *TapStream) Last() (Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.seen
}
