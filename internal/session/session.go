// Package session owns the pipeline state: the image registry, the
// shared conversion options and the transient upload-error list. All
// state lives on a single event-loop goroutine; operations are posted
// as tasks, which reproduces the cooperative single-threaded model the
// pipeline relies on instead of locks. Blocking work (byte reads,
// encoding, the batch network call) happens off the loop and re-enters
// it to publish results, so user actions can interleave at those
// suspension points.
package session

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pixelbatch/convert-pipeline/internal/delegate"
	"github.com/pixelbatch/convert-pipeline/internal/registry"
	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// UploadError pairs a rejected or failed file with a human-readable
// reason. The session clears the list automatically after errorTTL.
type UploadError struct {
	FileName string
	Message  string
}

// Snapshot is a read-only copy of one record's visible state.
type Snapshot struct {
	ID       uuid.UUID
	Name     string
	MIME     string
	Size     int64
	Rotation int
	Progress int
	Ready    bool
	Crop     *registry.CropRegion
}

// Session is the explicit owned state object for one user's pipeline.
type Session struct {
	tasks  chan func()
	closed chan struct{}
	once   sync.Once

	reg      *registry.Registry
	opts     convert.Options
	errs     []UploadError
	errClear *time.Timer
	cropping bool

	batch       *delegate.Client
	downloadDir string

	progressCadence time.Duration
	errorTTL        time.Duration

	activeTimers int32 // live progress tickers, for leak checks
}

// Option configures a Session.
type Option func(*Session)

// WithBatchClient wires the remote batch-conversion client.
func WithBatchClient(c *delegate.Client) Option {
	return func(s *Session) { s.batch = c }
}

// WithDownloadDir sets where delivered files land.
func WithDownloadDir(dir string) Option {
	return func(s *Session) { s.downloadDir = dir }
}

// WithProgressCadence overrides the intake progress tick interval.
func WithProgressCadence(d time.Duration) Option {
	return func(s *Session) { s.progressCadence = d }
}

// WithErrorTTL overrides how long upload errors stay visible.
func WithErrorTTL(d time.Duration) Option {
	return func(s *Session) { s.errorTTL = d }
}

// New creates a session and starts its event loop.
func New(opts ...Option) *Session {
	s := &Session{
		tasks:           make(chan func(), 64),
		closed:          make(chan struct{}),
		reg:             registry.New(),
		opts:            convert.DefaultOptions(),
		downloadDir:     "downloads",
		progressCadence: 200 * time.Millisecond,
		errorTTL:        5 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	go s.run()
	return s
}

// Close stops the event loop and every timer it owns.
func (s *Session) Close() {
	s.once.Do(func() {
		s.do(func() {
			if s.errClear != nil {
				s.errClear.Stop()
			}
		})
		close(s.closed)
	})
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
		case <-s.closed:
			return
		}
	}
}

// post enqueues a task without waiting. Used from timers and readers.
func (s *Session) post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.closed:
	}
}

// do enqueues a task and waits for the loop to run it.
func (s *Session) do(fn func()) {
	done := make(chan struct{})
	select {
	case s.tasks <- func() {
		fn()
		close(done)
	}:
		<-done
	case <-s.closed:
	}
}

// recordError appends an upload error and (re)arms the auto-clear
// timer. Must run on the loop.
func (s *Session) recordError(name, msg string) {
	s.errs = append(s.errs, UploadError{FileName: name, Message: msg})
	if s.errClear != nil {
		s.errClear.Stop()
	}
	s.errClear = time.AfterFunc(s.errorTTL, func() {
		s.post(func() { s.errs = nil })
	})
}

// Errors returns the currently visible upload errors.
func (s *Session) Errors() []UploadError {
	var out []UploadError
	s.do(func() {
		out = append(out, s.errs...)
	})
	return out
}

// Options returns the shared conversion options as they stand now.
func (s *Session) Options() convert.Options {
	var out convert.Options
	s.do(func() { out = s.opts })
	return out
}

// SetOptions replaces the shared conversion options. A conversion
// already in flight keeps the options it was started with.
func (s *Session) SetOptions(opts convert.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.do(func() { s.opts = opts })
	return nil
}

// Images lists the registry in insertion order.
func (s *Session) Images() []Snapshot {
	var out []Snapshot
	s.do(func() {
		for _, rec := range s.reg.List() {
			out = append(out, snapshotOf(rec))
		}
	})
	return out
}

// SelectedID returns the selected record's ID, if any.
func (s *Session) SelectedID() (uuid.UUID, bool) {
	var id uuid.UUID
	var ok bool
	s.do(func() {
		if rec := s.reg.Selected(); rec != nil {
			id, ok = rec.ID, true
		}
	})
	return id, ok
}

// Select moves the selection to an existing record.
func (s *Session) Select(id uuid.UUID) {
	s.do(func() { s.reg.Select(id) })
}

// Rotate advances a record's rotation by 90 degrees clockwise.
func (s *Session) Rotate(id uuid.UUID) bool {
	var ok bool
	s.do(func() { ok = s.reg.Rotate(id) })
	return ok
}

// RotateSelected rotates the selected record, if there is one.
func (s *Session) RotateSelected() bool {
	var ok bool
	s.do(func() {
		if rec := s.reg.Selected(); rec != nil {
			ok = s.reg.Rotate(rec.ID)
		}
	})
	return ok
}

// StartCrop and CancelCrop toggle cropping mode. The mode itself has
// no effect on conversion output.
func (s *Session) StartCrop()  { s.do(func() { s.cropping = true }) }
func (s *Session) CancelCrop() { s.do(func() { s.cropping = false }) }

// Cropping reports whether cropping mode is active.
func (s *Session) Cropping() bool {
	var out bool
	s.do(func() { out = s.cropping })
	return out
}

// ApplyCrop commits a crop rectangle on a record and leaves cropping
// mode. The region is tracked on the record; neither converter
// consumes it.
func (s *Session) ApplyCrop(id uuid.UUID, crop registry.CropRegion) bool {
	var ok bool
	s.do(func() {
		ok = s.reg.SetCrop(id, crop)
		s.cropping = false
	})
	return ok
}

// Remove deletes one record. An in-flight preview for the removed
// record completes as a silent no-op; the record is never resurrected.
func (s *Session) Remove(id uuid.UUID) bool {
	var ok bool
	s.do(func() { ok = s.reg.Remove(id) })
	return ok
}

// Clear removes every record and the selection.
func (s *Session) Clear() {
	s.do(func() {
		s.reg.RemoveAll()
		log.Printf("registry cleared")
	})
}

// startProgress runs the cosmetic intake progress ticker for one
// record: a pseudo-random increment on a fixed cadence, capped at 90.
// The value carries no correctness meaning. The returned stop function
// is safe to call from any goroutine and more than once; the ticker
// also stops itself when its record disappears, so no periodic task
// outlives its record.
func (s *Session) startProgress(id uuid.UUID) (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	stop = func() { once.Do(func() { close(done) }) }

	atomic.AddInt32(&s.activeTimers, 1)
	go func() {
		defer atomic.AddInt32(&s.activeTimers, -1)
		ticker := time.NewTicker(s.progressCadence)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-s.closed:
				return
			case <-ticker.C:
				s.post(func() {
					rec := s.reg.Get(id)
					if rec == nil {
						stop()
						return
					}
					if rec.Ready() {
						return
					}
					p := rec.Progress + rand.Intn(15) + 1
					if p > 90 {
						p = 90
					}
					rec.Progress = p
				})
			}
		}
	}()
	return stop
}

// pendingTimers reports live progress tickers. Used by tests to prove
// teardown.
func (s *Session) pendingTimers() int {
	return int(atomic.LoadInt32(&s.activeTimers))
}

func snapshotOf(rec *registry.Record) Snapshot {
	snap := Snapshot{
		ID:       rec.ID,
		Name:     rec.Name,
		MIME:     rec.MIME,
		Size:     rec.Size,
		Rotation: rec.Rotation,
		Progress: rec.Progress,
		Ready:    rec.Ready(),
	}
	if rec.Crop != nil {
		c := *rec.Crop
		snap.Crop = &c
	}
	return snap
}
