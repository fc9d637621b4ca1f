package eventz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Pipeline drives sink branches to completion. Each branch drains one
// output stream into one Sink on its own goroutine. A sink failure is fatal
// to its branch only: the branch stops consuming into the sink but keeps
// draining its input, so upstream operators and sibling branches continue
// unaffected. Wait reports the failures of all branches combined.
type Pipeline struct {
	clock   Clock
	logger  *zap.SugaredLogger
	timeout time.Duration

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewPipeline creates an empty pipeline driver.
//
// Example:
//
//	p := eventz.NewPipeline()
//	eventz.RunSink(ctx, p, joined, sink1)
//	eventz.RunSink(ctx, p, rewindowed, sink2)
//	if err := p.Wait(); err != nil {
//		log.Fatal(err)
//	}
func NewPipeline() *Pipeline {
	return &Pipeline{
		clock: RealClock,
	}
}

// WithConsumeTimeout bounds each Consume call to d on the given clock. A
// sink exceeding it fails its branch instead of wedging the upstream.
func (p *Pipeline) WithConsumeTimeout(d time.Duration, clock Clock) *Pipeline {
	if d < 0 {
		d = 0
	}
	p.timeout = d
	if clock != nil {
		p.clock = clock
	}
	return p
}

// WithLogger sets the logger used to report branch failures.
func (p *Pipeline) WithLogger(logger *zap.SugaredLogger) *Pipeline {
	p.logger = logger
	return p
}

// Wait blocks until every branch has drained its input, then returns the
// combined branch errors, or nil if all sinks succeeded.
func (p *Pipeline) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return multierr.Combine(p.errs...)
}

func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	p.errs = append(p.errs, err)
	p.mu.Unlock()
}

// RunSink starts a branch draining in into sink. The branch ends when in is
// closed or the context is canceled; on cancellation any undelivered
// tuples are discarded with no partial-result guarantee.
func RunSink[T any](ctx context.Context, p *Pipeline, in <-chan T, sink Sink[T]) {
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		logger := p.logger
		if logger == nil {
			logger = LoggerFromContext(ctx)
		}

		failed := false
		for {
			select {
			case tuple, ok := <-in:
				if !ok {
					return
				}
				if failed {
					// Branch is dead; keep draining so upstream fan-out
					// and sibling branches are not blocked.
					continue
				}
				if err := consumeWith(p, sink, tuple); err != nil {
					failed = true
					sinkErrors.WithLabelValues(sink.Name()).Inc()
					logger.Errorw("sink branch failed",
						"sink", sink.Name(),
						"error", err,
					)
					p.fail(NewStreamError(tuple, err, sink.Name()))
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// consumeWith invokes the sink, bounded by the pipeline's consume timeout
// if one is configured.
func consumeWith[T any](p *Pipeline, sink Sink[T], tuple T) error {
	if p.timeout <= 0 {
		return sink.Consume(tuple)
	}

	done := make(chan error, 1)
	go func() {
		done <- sink.Consume(tuple)
	}()

	timer := p.clock.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C():
		return fmt.Errorf("sink %s exceeded consume timeout of %s", sink.Name(), p.timeout)
	}
}
