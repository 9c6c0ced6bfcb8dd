package objmesh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flywave/go3d/vec3"
	"golang.org/x/sync/errgroup"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	DisplaySize  float64      // used when an Asset leaves DisplaySize at 0
	DefaultColor vec3.T       // color for faces without a resolvable material
	QueueSize    int          // pending loads accepted before Load blocks
	Logger       *slog.Logger // nil means slog.Default()
}

func DefaultLoaderOptions() *LoaderOptions {
	return &LoaderOptions{
		DisplaySize:  1.0,
		DefaultColor: DefaultColor,
		QueueSize:    4,
	}
}

// Loader runs asset conversions one at a time on a single background
// worker and publishes each finished model to its Stage.
type Loader struct {
	stage   *Stage
	options *LoaderOptions
	log     *slog.Logger

	jobs    chan *job
	group   *errgroup.Group
	mu      sync.Mutex
	closed  bool
	sending sync.WaitGroup // Load calls past the closed check
}

type job struct {
	asset   Asset
	slot    *Slot
	pending *Pending
}

// Pending is the not-yet-available outcome of Loader.Load.
type Pending struct {
	done chan struct{}
	res  *Result
	err  error
}

// Done is closed once the load has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the load finishes or ctx ends. A cancelled ctx does not
// stop the conversion itself.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func NewLoader(stage *Stage) *Loader {
	return NewLoaderWithOptions(stage, DefaultLoaderOptions())
}

func NewLoaderWithOptions(stage *Stage, options *LoaderOptions) *Loader {
	if options == nil {
		options = DefaultLoaderOptions()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := options.QueueSize
	if size < 0 {
		size = 0
	}
	l := &Loader{
		stage:   stage,
		options: options,
		log:     logger,
		jobs:    make(chan *job, size),
		group:   &errgroup.Group{},
	}
	l.group.Go(l.run)
	return l
}

func (l *Loader) Stage() *Stage { return l.stage }

// Load queues a for conversion. The returned Pending resolves after the
// model has been published to the Stage or the conversion has failed.
// Load blocks while the queue is full; it never holds the lock while doing so.
func (l *Loader) Load(a Asset) (*Pending, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrLoaderClosed
	}
	if a.DisplaySize == 0 {
		a.DisplaySize = l.options.DisplaySize
	}
	j := &job{asset: a, slot: l.stage.Begin(), pending: &Pending{done: make(chan struct{})}}
	l.sending.Add(1)
	l.mu.Unlock()

	defer l.sending.Done()
	l.jobs <- j
	return j.pending, nil
}

// Close stops accepting loads, finishes the queued ones and waits for the
// worker to exit.
func (l *Loader) Close() error {
	l.mu.Lock()
	first := !l.closed
	l.closed = true
	l.mu.Unlock()
	if first {
		// the worker keeps draining, so blocked senders finish
		l.sending.Wait()
		close(l.jobs)
	}
	return l.group.Wait()
}

func (l *Loader) run() error {
	for j := range l.jobs {
		j.pending.res, j.pending.err = l.convert(j)
		close(j.pending.done)
	}
	return nil
}

func (l *Loader) convert(j *job) (*Result, error) {
	log := l.log.With("asset", j.asset.Name)
	start := time.Now()
	log.Debug("processing asset", "geometry_bytes", len(j.asset.Geometry), "materials", len(j.asset.Materials))

	res, err := process(j.asset, l.options.DefaultColor)
	if err != nil {
		log.Error("asset conversion failed", "step", res.Failed, "err", err)
		return res, err
	}
	for _, w := range res.Document.Warnings {
		log.Debug("geometry warning", "warning", w)
	}
	if err := j.slot.Publish(res.Buffers); err != nil {
		log.Error("publish failed", "err", err)
		return res, err
	}
	log.Info("asset ready",
		"vertices", res.Buffers.VertexCount,
		"triangles", res.Buffers.TriangleCount,
		"materials", res.Library.Len(),
		"elapsed", time.Since(start))
	return res, nil
}
