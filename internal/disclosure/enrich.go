package disclosure

import (
	"context"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultEnrichConcurrency = 8

// Enricher turns matched rows into entries, resolving document URLs
// concurrently.
type Enricher struct {
	site        Site
	fetcher     Fetcher
	concurrency int
	logger      *zap.Logger
}

func NewEnricher(site Site, fetcher Fetcher, concurrency int, logger *zap.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultEnrichConcurrency
	}
	return &Enricher{site: site, fetcher: fetcher, concurrency: concurrency, logger: logger}
}

// Enrich resolves a single row. A missing document leaves FileURL empty.
func (e *Enricher) Enrich(ctx context.Context, row types.Row, today time.Time) types.Entry {
	pageURL, fileURL := e.site.DocumentURL(ctx, e.fetcher, row)
	return newEntry(row, today, pageURL, fileURL)
}

func newEntry(row types.Row, today time.Time, pageURL, fileURL string) types.Entry {
	return types.Entry{
		Time:        SlashYMD(today) + " " + row.Time,
		StockCode:   row.StockCode,
		CompanyName: row.CompanyName,
		Title:       row.Title,
		PageURL:     pageURL,
		FileURL:     fileURL,
	}
}

// EnrichAll enriches rows in parallel and returns entries in row order.
// A row whose document lookup panics keeps its detail link and no file.
func (e *Enricher) EnrichAll(ctx context.Context, rows []types.Row, today time.Time) []types.Entry {
	entries := make([]types.Entry, len(rows))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("document lookup panicked", zap.Any("panic", r), zap.String("title", row.Title))
					entries[i] = newEntry(row, today, row.DetailLink, "")
				}
			}()
			entries[i] = e.Enrich(ctx, row, today)
			return nil
		})
	}
	_ = g.Wait()

	return entries
}
