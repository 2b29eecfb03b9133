package compute

import (
	"errors"
	"strings"
	"testing"
)

func TestSessionEach(t *testing.T) {
	s := NewSession(Opts{Workers: 4})

	n := 100
	results := make([]int, n)
	err := s.Each(n, func(i int) error {
		results[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for i, got := range results {
		if got != i*i {
			t.Errorf("task %d: got %d, want %d", i, got, i*i)
		}
	}
}

func TestSessionEachJoinsErrors(t *testing.T) {
	s := NewSession(Opts{Workers: 2})

	boom := errors.New("boom")
	err := s.Each(10, func(i int) error {
		if i == 3 || i == 7 {
			return boom
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("joined error %v does not wrap the task error", err)
	}
	if got := strings.Count(err.Error(), "boom"); got != 2 {
		t.Errorf("got %d task errors, want 2", got)
	}
}

func TestSessionProgress(t *testing.T) {
	s := NewSession(Opts{Workers: 3})

	// Progress runs under the session's lock, so plain counters are safe.
	var calls, last int
	s.Progress = func(completed, total int) {
		calls++
		last = completed
		if total != 8 {
			t.Errorf("got total %d, want 8", total)
		}
	}
	if err := s.Each(8, func(int) error { return nil }); err != nil {
		t.Fatal(err)
	}

	if calls != 8 {
		t.Errorf("progress called %d times, want 8", calls)
	}
	if last != 8 {
		t.Errorf("final completed count %d, want 8", last)
	}
}

func TestSessionDefaultWorkers(t *testing.T) {
	s := NewSession(Opts{})
	if s.Workers() < 1 {
		t.Errorf("got %d workers, want at least 1", s.Workers())
	}
	if s.ID() == "" {
		t.Error("session id is empty")
	}
}
