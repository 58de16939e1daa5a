package engine

import (
	"context"
	"time"

	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/simhash"
)

// settle waits for dynamic content after the load notification.
//
// The fixed SettleDelay runs first. If a stability poll is configured the
// DOM is then sampled every Interval until two consecutive samples have the
// same structure and text length, or MaxWait elapses, whichever comes first.
// A sample without text never counts as stable. Exhausting
// MaxWait is not an error: the fetch proceeds with whatever is rendered.
func (e *Engine[T]) settle(ctx context.Context, s Surface, address string) error {
	if err := sleep(ctx, e.opts.SettleDelay); err != nil {
		return categorize(err, models.ErrCodeTimeout, "settle interrupted")
	}

	st := e.opts.Stability
	if st.Interval <= 0 {
		return nil
	}
	maxWait := st.MaxWait
	if maxWait <= 0 {
		maxWait = 10 * st.Interval
	}

	sample := func() (simhash.Signature, error) {
		markup, err := s.HTML(ctx)
		if err != nil {
			return simhash.Signature{}, categorize(err, models.ErrCodeSerialization, "failed to sample document")
		}
		return simhash.DOM(markup), nil
	}

	prev, err := sample()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(st.Interval)
	defer ticker.Stop()
	bound := time.NewTimer(maxWait)
	defer bound.Stop()

	for polls := 1; ; polls++ {
		select {
		case <-ctx.Done():
			return categorize(ctx.Err(), models.ErrCodeTimeout, "settle interrupted")
		case <-bound.C:
			e.log.Debug("stability poll exhausted, using current DOM",
				"url", address,
				"polls", polls,
			)
			return nil
		case <-ticker.C:
		}

		next, err := sample()
		if err != nil {
			return err
		}
		if prev.Settled(next, st.Threshold) {
			e.log.Debug("dom stable", "url", address, "polls", polls, "elements", next.Elements)
			return nil
		}
		prev = next
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
