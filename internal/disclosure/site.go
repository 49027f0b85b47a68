package disclosure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"
)

// Page is one parsed listing page.
type Page struct {
	Rows    []types.Row
	HasNext bool
}

// Site adapts the generic scanner to one listing source.
type Site interface {
	Name() string
	// PageURL returns the listing URL for the 1-based page index.
	PageURL(page int, today time.Time) string
	ParsePage(body string) (Page, error)
	// CategoryMarker is the substring a row's category must contain to be
	// eligible. Empty means every row is eligible.
	CategoryMarker() string
	// DocumentURL resolves the public page URL and, when one can be found,
	// the attached document URL for a row.
	DocumentURL(ctx context.Context, fetcher Fetcher, row types.Row) (pageURL, fileURL string)
}

// NewSite returns the adapter registered under name.
func NewSite(name string) (Site, error) {
	switch strings.ToLower(name) {
	case NikkeiSiteName:
		return NewNikkeiSite(), nil
	case TDnetSiteName:
		return NewTDnetSite(), nil
	default:
		return nil, fmt.Errorf("unknown site %q", name)
	}
}

func eligible(site Site, row types.Row) bool {
	marker := site.CategoryMarker()
	return marker == "" || strings.Contains(row.Category, marker)
}
