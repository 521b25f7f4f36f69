package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultDelay is the debounce window used when none is configured
const DefaultDelay = time.Second

// flushLimit bounds concurrent writes during Flush
const flushLimit = 4

// Persister writes document content to its backing file
type Persister interface {
	Write(ctx context.Context, path, content, encoding string) error
}

// Sink is told which content reached disk for a document
type Sink interface {
	Saved(id, content string)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(id, content string)

func (f SinkFunc) Saved(id, content string) { f(id, content) }

// Options configures the scheduler
type Options struct {
	Delay   time.Duration
	Enabled bool
}

// DefaultOptions returns auto-save on with a one second delay
func DefaultOptions() Options {
	return Options{Delay: DefaultDelay, Enabled: true}
}

type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfter(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

type job struct {
	id       string
	path     string
	content  string
	encoding string
}

type pendingSave struct {
	seq   uint64
	timer timer
	job   job
}

// Scheduler debounces content changes into writes. Each document has at most
// one armed timer; a new trigger replaces it, so only the last content within
// the delay window is written.
type Scheduler struct {
	persister Persister
	sink      Sink
	logger    *slog.Logger
	after     afterFunc

	mu       sync.Mutex
	idle     *sync.Cond // signalled when inflight drops to zero
	opts     Options
	pending  map[string]*pendingSave
	seq      uint64
	closed   bool
	inflight int

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. sink and logger may be nil.
func New(persister Persister, sink Sink, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		persister: persister,
		sink:      sink,
		logger:    logger,
		after:     realAfter,
		opts:      opts,
		pending:   make(map[string]*pendingSave),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Trigger schedules a write of content for document id. It does nothing when
// auto-save is disabled or the document has no path.
func (s *Scheduler) Trigger(id, path, content, encoding string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.opts.Enabled || path == "" || id == "" {
		return
	}

	if prev, ok := s.pending[id]; ok {
		prev.timer.Stop()
	}

	s.seq++
	seq := s.seq
	p := &pendingSave{
		seq: seq,
		job: job{id: id, path: path, content: content, encoding: encoding},
	}
	s.pending[id] = p
	p.timer = s.after(s.opts.Delay, func() { s.fire(id, seq) })
}

// fire runs the save armed with seq, unless a later trigger or a cancel
// superseded it.
func (s *Scheduler) fire(id string, seq uint64) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok || p.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.inflight++
	ctx := s.ctx
	s.mu.Unlock()

	defer s.done()
	_ = s.run(ctx, p.job)
}

func (s *Scheduler) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		s.idle.Broadcast()
	}
}

func (s *Scheduler) run(ctx context.Context, j job) error {
	if err := s.persister.Write(ctx, j.path, j.content, j.encoding); err != nil {
		s.logger.Warn("auto-save failed", "id", j.id, "path", j.path, "error", err)
		return fmt.Errorf("auto-save %s: %w", j.path, err)
	}
	s.logger.Debug("auto-saved", "id", j.id, "path", j.path, "bytes", len(j.content))
	if s.sink != nil {
		s.sink.Saved(j.id, j.content)
	}
	return nil
}

// SetOptions reconfigures the scheduler. A zero Delay keeps the current one.
// A new delay applies to later triggers; armed timers keep their deadline,
// and disabling does not cancel them.
func (s *Scheduler) SetOptions(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Delay > 0 {
		s.opts.Delay = opts.Delay
	}
	s.opts.Enabled = opts.Enabled
}

// Options returns the current configuration
func (s *Scheduler) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Enabled reports whether triggers arm timers
func (s *Scheduler) Enabled() bool { return s.Options().Enabled }

// Delay returns the debounce window applied to new triggers
func (s *Scheduler) Delay() time.Duration { return s.Options().Delay }

// Pending returns the number of armed timers
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Cancel drops the pending save for id, if any
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pending[id]; ok {
		p.timer.Stop()
		delete(s.pending, id)
	}
}

// Flush writes every pending save immediately and waits for them, and for
// any write already in progress, to finish. The first write error is returned.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	jobs := make([]job, 0, len(s.pending))
	for id, p := range s.pending {
		p.timer.Stop()
		jobs = append(jobs, p.job)
		delete(s.pending, id)
	}
	s.mu.Unlock()

	g := new(errgroup.Group)
	g.SetLimit(flushLimit)
	for _, j := range jobs {
		g.Go(func() error {
			return s.run(ctx, j)
		})
	}
	err := g.Wait()

	s.mu.Lock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
	return err
}

// Close stops all timers. Later triggers are ignored and in-flight writes
// see a cancelled context.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
	s.cancel()
}
