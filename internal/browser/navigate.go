package browser

import (
	"context"
	"time"

	"github.com/patrickjm/stylesnap/internal/logging"
)

type SettleOptions struct {
	FixedWait       time.Duration
	Selector        string
	SelectorTimeout time.Duration
	AfterWait       time.Duration
}

// Settle gives client-side rendering time to finish after navigation.
// A selector that never appears is logged and ignored; only a cancelled
// ctx is reported.
func Settle(ctx context.Context, page Page, opts SettleOptions, log logging.Logger) error {
	log = logging.OrNop(log)
	if opts.FixedWait > 0 {
		log.Infof("waiting %s for client-side rendering", opts.FixedWait)
		if err := page.WaitFor(ctx, opts.FixedWait); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.Selector != "" {
		if err := page.WaitForSelector(opts.Selector, opts.SelectorTimeout); err != nil {
			log.Warnf("selector %q did not appear within %s, continuing: %v", opts.Selector, opts.SelectorTimeout, err)
		} else {
			log.Infof("selector %q present", opts.Selector)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.AfterWait > 0 {
		log.Infof("waiting %s for components", opts.AfterWait)
		if err := page.WaitFor(ctx, opts.AfterWait); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
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
