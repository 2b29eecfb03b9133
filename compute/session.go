// Package compute provides the shared execution session pipeline stages
// delegate their heavy numeric work to. The session is created once and
// passed explicitly to each stage rather than living in package state, so
// stages stay composable and independently testable. Usage is strictly
// sequential: one stage fans out, blocks until the fan-in completes, and
// only then does the next stage run.
package compute

import (
	"errors"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Opts configures a session.
type Opts struct {
	// Workers is the number of goroutines each fan-out uses. Zero or
	// negative selects one per CPU.
	Workers int
}

// ProgressFunc receives completion counts while a fan-out runs.
type ProgressFunc func(completed, total int)

// Session is the execution context for parallel stages. It carries a short
// run id that stage logs are stamped with.
type Session struct {
	workers  int
	id       string
	Progress ProgressFunc
}

// NewSession creates a session with the given options.
func NewSession(opts Opts) *Session {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	s := &Session{workers: workers, id: uuid.NewString()[:8]}
	logrus.Debugf("session %s: %d workers", s.id, workers)
	return s
}

// ID returns the session's run id.
func (s *Session) ID() string { return s.id }

// Workers returns the configured worker count.
func (s *Session) Workers() int { return s.workers }

// Each runs fn for every index in [0, n), fanned over the session's workers,
// and blocks until all complete. Errors from individual tasks are joined.
func (s *Session) Each(n int, fn func(i int) error) error {
	logrus.Debugf("session %s: fanning %d tasks over %d workers", s.id, n, s.workers)

	tasks := make(chan int)
	go func() {
		defer close(tasks)
		for i := 0; i < n; i++ {
			tasks <- i
		}
	}()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		done int
	)
	wg.Add(s.workers)
	for w := 0; w < s.workers; w++ {
		go func() {
			defer wg.Done()
			for i := range tasks {
				err := fn(i)
				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				}
				done++
				if s.Progress != nil {
					s.Progress(done, n)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	logrus.Debugf("session %s: fan-in complete", s.id)
	return errors.Join(errs...)
}
