package render

import "testing"

func TestTapStreamSubscribe(t *testing.T) {
	s := NewTapStream()
	var first, second []Point
	s.Subscribe(func(p Point) { first = append(first, p) })
	s.Subscribe(func(p Point) { second = append(second, p) })

	s.Tap(346930, 4278530)
	s.Tap(-118.71, 38.69)

	want := []Point{{X: 346930, Y: 4278530}, {X: -118.71, Y: 38.69}}
	for name, got := range map[string][]Point{"first": first, "second": second} {
		if len(got) != len(want) {
			t.Fatalf("%s subscriber saw %d taps, want %d", name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s subscriber tap %d = %v, want %v", name, i, got[i], want[i])
			}
		}
	}
}

// Callbacks run outside the stream's lock, so a subscriber can register
// further subscribers or read Last without deadlocking. A subscriber added
// mid-dispatch only sees taps published after it.
func TestTapStreamReentrantSubscriber(t *testing.T) {
	s := NewTapStream()
	var late []Point
	var added bool
	s.Subscribe(func(p Point) {
		if got, ok := s.Last(); !ok || got != p {
			t.Errorf("Last() inside callback = %v, ok=%v, want %v", got, ok, p)
		}
		if !added {
			added = true
			s.Subscribe(func(p Point) { late = append(late, p) })
		}
	})

	s.Tap(1, 2)
	s.Tap(3, 4)

	want := []Point{{X: 3, Y: 4}}
	if len(late) != len(want) || late[0] != want[0] {
		t.Errorf("late subscriber saw %v, want %v", late, want)
	}
}

func TestTapStreamLast(t *testing.T) {
	s := NewTapStream()
	if _, ok := s.Last(); ok {
		t.Error("expected no point before the first tap")
	}

	s.Tap(1, 2)
	s.Tap(3, 4)
	p, ok := s.Last()
	if !ok || p != (Point{X: 3, Y: 4}) {
		t.Errorf("got %v, ok=%v, want the latest tap", p, ok)
	}
}
