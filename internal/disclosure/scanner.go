/*
Package disclosure scrapes same-day corporate disclosure listings and
selects the entries published since the last scan.
*/
package disclosure

import (
	"context"
	"regexp"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scanner walks a site's listing pages newest-first until it crosses into
// rows it has already seen.
type Scanner struct {
	site     Site
	fetcher  Fetcher
	enricher *Enricher
	location *time.Location
	now      func() time.Time
	maxPages int
	logger   *zap.Logger
}

type ScannerOption func(*Scanner)

// WithClock overrides the time source used to decide what "today" is.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) { s.now = now }
}

func WithLocation(loc *time.Location) ScannerOption {
	return func(s *Scanner) { s.location = loc }
}

// WithMaxPages bounds the number of pages fetched per scan. Zero is unbounded.
func WithMaxPages(n int) ScannerOption {
	return func(s *Scanner) { s.maxPages = n }
}

func WithEnrichConcurrency(n int) ScannerOption {
	return func(s *Scanner) { s.enricher = NewEnricher(s.site, s.fetcher, n, s.logger) }
}

func NewScanner(site Site, fetcher Fetcher, logger *zap.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		site:     site,
		fetcher:  fetcher,
		enricher: NewEnricher(site, fetcher, DefaultEnrichConcurrency, logger),
		location: time.Local,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) Site() string {
	return s.site.Name()
}

// Scan collects entries newer than w whose titles match any of patterns.
// It never fails: fetch errors end pagination and anything unexpected is
// logged and the entries gathered so far are returned.
func (s *Scanner) Scan(ctx context.Context, w types.Watermark, patterns []*regexp.Regexp) (d types.Disclosure) {
	logger := s.logger.With(zap.String("site", s.site.Name()), zap.String("run_id", uuid.NewString()))

	if !w.Valid() {
		logger.Warn("ignoring malformed watermark", zap.Int64("watermark", int64(w)))
		w = 0
	}

	now := s.now().In(s.location)
	today := YMD(now)
	d.Entries = []types.Entry{}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("scan aborted", zap.Any("panic", r), zap.Int("entries", len(d.Entries)))
		}
	}()

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			logger.Error("scan aborted", zap.Error(err), zap.Int("page", page))
			return d
		}
		if s.maxPages > 0 && page > s.maxPages {
			logger.Info("page limit reached", zap.Int("max_pages", s.maxPages))
			return d
		}

		url := s.site.PageURL(page, now)
		body := s.fetcher.Fetch(ctx, url)
		if body == "" {
			return d
		}

		p, err := s.site.ParsePage(body)
		if err != nil {
			logger.Error("scan aborted", zap.Error(err), zap.String("url", url))
			return d
		}
		if len(p.Rows) == 0 {
			return d
		}

		if page == 1 {
			if hm := ParseHM(p.Rows[0].Time); hm >= 0 {
				d.LatestEntryTime = types.NewWatermark(today, hm)
			}
		}

		var matched []types.Row
		for _, row := range p.Rows {
			if IsNew(w, row, today) && eligible(s.site, row) && matchesAny(row.Title, patterns) {
				matched = append(matched, row)
			}
		}
		d.Entries = append(d.Entries, s.enricher.EnrichAll(ctx, matched, now)...)

		logger.Debug("scanned page",
			zap.Int("page", page),
			zap.Int("rows", len(p.Rows)),
			zap.Int("matched", len(matched)))

		if !IsNew(w, p.Rows[len(p.Rows)-1], today) {
			return d
		}
		if !p.HasNext {
			return d
		}
	}
}
