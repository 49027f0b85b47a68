package disclosure

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/PuerkitoBio/goquery"
)

const (
	NikkeiSiteName = "nikkei"

	nikkeiBaseURL     = "https://www.nikkei.com"
	nikkeiListingPath = "/markets/kigyo/disclose/?SelDateDiff=0&hm=%d"
	nikkeiRowSelector = "#IR1600 > tbody > tr"
	nikkeiNextPage    = "div.searchResolutTop li.nextPageLink > a"
	nikkeiPRMarker    = "PR"
)

var (
	nikkeiCodeRe = regexp.MustCompile(`scode=(\w+)$`)
	nikkeiPDFRe  = regexp.MustCompile(`pdfLocation.+?(/.+\.pdf)`)
)

// NikkeiSite scrapes the same-day corporate disclosure listing on nikkei.com.
type NikkeiSite struct {
	baseURL string
}

func NewNikkeiSite() *NikkeiSite {
	return &NikkeiSite{baseURL: nikkeiBaseURL}
}

func (s *NikkeiSite) Name() string { return NikkeiSiteName }

func (s *NikkeiSite) CategoryMarker() string { return nikkeiPRMarker }

func (s *NikkeiSite) PageURL(page int, _ time.Time) string {
	return s.baseURL + fmt.Sprintf(nikkeiListingPath, page)
}

func (s *NikkeiSite) ParsePage(body string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	var page Page
	doc.Find(nikkeiRowSelector).Each(func(_ int, tr *goquery.Selection) {
		page.Rows = append(page.Rows, s.parseRow(tr))
	})
	page.HasNext = doc.Find(nikkeiNextPage).Length() > 0
	return page, nil
}

func (s *NikkeiSite) parseRow(tr *goquery.Selection) types.Row {
	cells := tr.ChildrenFiltered("td")
	row := types.Row{
		Time:     strings.TrimSpace(cells.Eq(0).Text()),
		Category: strings.TrimSpace(cells.Eq(2).Text()),
	}

	if a := cells.Eq(1).ChildrenFiltered("a").First(); a.Length() > 0 {
		row.CompanyName = strings.TrimSpace(a.Text())
		if m := nikkeiCodeRe.FindStringSubmatch(a.AttrOr("href", "")); m != nil {
			row.StockCode = m[1]
		}
	}

	if a := cells.Eq(3).ChildrenFiltered("a").First(); a.Length() > 0 {
		row.Title = strings.TrimSpace(a.Text())
		row.DetailLink = s.detailLink(a.AttrOr("href", ""))
	}
	return row
}

// detailLink prefers the article URL carried in the "t" query parameter.
func (s *NikkeiSite) detailLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if t := abs.Query().Get("t"); t != "" {
		return t
	}
	return abs.String()
}

func (s *NikkeiSite) DocumentURL(ctx context.Context, fetcher Fetcher, row types.Row) (string, string) {
	pageURL := row.DetailLink
	body := fetcher.Fetch(ctx, pageURL)
	if body == "" {
		return pageURL, ""
	}
	m := nikkeiPDFRe.FindStringSubmatch(body)
	if m == nil {
		return pageURL, ""
	}
	return pageURL, s.baseURL + m[1]
}
