/*
Package poller runs scan cycles for every configured site on a cron
schedule, persisting watermarks and handing new entries to delivery.
*/
package poller

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/history"
	"github.com/CRaLFa/nikkei-bot/internal/notify"
	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scanner interface {
	Site() string
	Scan(ctx context.Context, w types.Watermark, patterns []*regexp.Regexp) types.Disclosure
}

type Deliverer interface {
	Deliver(ctx context.Context, d types.Disclosure) notify.Stats
}

// Result is the outcome of one site within a cycle.
type Result struct {
	Site       string
	Previous   types.Watermark
	Disclosure types.Disclosure
	Stats      notify.Stats
}

type Poller struct {
	mu        sync.Mutex
	scanners  []Scanner
	store     history.Store
	patterns  []*regexp.Regexp
	deliverer Deliverer
	logger    *zap.Logger
}

func New(scanners []Scanner, store history.Store, patterns []*regexp.Regexp, deliverer Deliverer, logger *zap.Logger) *Poller {
	return &Poller{
		scanners:  scanners,
		store:     store,
		patterns:  patterns,
		deliverer: deliverer,
		logger:    logger,
	}
}

// RunOnce runs one cycle over every site in order. It returns false without
// doing anything when another cycle is still in progress.
func (p *Poller) RunOnce(ctx context.Context) ([]Result, bool) {
	if !p.mu.TryLock() {
		p.logger.Warn("previous cycle still running, skipping")
		return nil, false
	}
	defer p.mu.Unlock()

	results := make([]Result, 0, len(p.scanners))
	for _, s := range p.scanners {
		if ctx.Err() != nil {
			break
		}
		results = append(results, p.runSite(ctx, s))
	}
	return results, true
}

func (p *Poller) runSite(ctx context.Context, s Scanner) Result {
	logger := p.logger.With(zap.String("site", s.Site()))
	key := history.WatermarkKey(s.Site())

	w := history.LoadWatermark(ctx, p.store, key, logger)
	d := s.Scan(ctx, w, p.patterns)
	res := Result{Site: s.Site(), Previous: w, Disclosure: d}

	if d.LatestEntryTime > 0 {
		if err := p.store.Set(ctx, key, int64(d.LatestEntryTime)); err != nil {
			logger.Error("failed to save watermark",
				zap.Int64("watermark", int64(d.LatestEntryTime)),
				zap.Error(err))
		}
	}

	if len(d.Entries) == 0 {
		logger.Info("No matching entry")
		return res
	}

	logger.Info("new entries found", zap.Int("count", len(d.Entries)))
	if p.deliverer != nil {
		res.Stats = p.deliverer.Deliver(ctx, d)
		logger.Info("delivery finished",
			zap.Int("sent", res.Stats.Sent),
			zap.Int("failures", res.Stats.Failures))
	}
	return res
}

// Start schedules cycles and blocks until ctx is cancelled. Each tick waits
// settle before scanning so the listing has time to update.
func (p *Poller) Start(ctx context.Context, schedule string, settle time.Duration, loc *time.Location) error {
	cl := cronLogger{p.logger.Sugar()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	if _, err := c.AddFunc(schedule, func() { p.tick(ctx, settle) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	p.logger.Info("poller started", zap.String("schedule", schedule), zap.Duration("settle_delay", settle))
	c.Start()
	<-ctx.Done()

	p.logger.Info("stopping poller")
	<-c.Stop().Done()
	return nil
}

func (p *Poller) tick(ctx context.Context, settle time.Duration) {
	if settle > 0 {
		timer := time.NewTimer(settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	p.RunOnce(ctx)
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
