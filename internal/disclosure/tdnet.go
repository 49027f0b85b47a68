package disclosure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"golang.org/x/net/html"
)

const (
	TDnetSiteName = "tdnet"

	tdnetBaseURL    = "https://www.release.tdnet.info/inbs/"
	tdnetListingFmt = "I_list_%03d_%s.html"
	tdnetTableID    = "main-list-table"
	tdnetNextClass  = "pager-R"
)

type cellProcessorFunc func(n *html.Node, class string, row *types.Row)

// TDnetSite scrapes the JPX timely disclosure listing for the current day.
type TDnetSite struct {
	baseURL string
}

func NewTDnetSite() *TDnetSite {
	return &TDnetSite{baseURL: tdnetBaseURL}
}

func (s *TDnetSite) Name() string { return TDnetSiteName }

func (s *TDnetSite) CategoryMarker() string { return "" }

func (s *TDnetSite) PageURL(page int, today time.Time) string {
	return s.baseURL + fmt.Sprintf(tdnetListingFmt, page, today.Format("20060102"))
}

func (s *TDnetSite) ParsePage(body string) (Page, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	processCell := func(n *html.Node, class string, row *types.Row) {
		switch class {
		case "kjTime":
			row.Time = strings.TrimSpace(extractText(n))
		case "kjCode":
			row.StockCode = normalizeTDnetCode(strings.TrimSpace(extractText(n)))
		case "kjName":
			row.CompanyName = strings.TrimSpace(extractText(n))
		case "kjPlace":
			row.Category = strings.TrimSpace(extractText(n))
		case "kjTitle":
			if a := findElement(n, "a"); a != nil {
				row.Title = strings.TrimSpace(extractText(a))
				if href := strings.TrimSpace(attr(a, "href")); href != "" {
					row.DetailLink = s.baseURL + strings.TrimPrefix(href, "./")
				}
			}
		}
	}

	return Page{
		Rows:    traverseAndCollect(doc, processCell),
		HasNext: findByClass(doc, tdnetNextClass) != nil,
	}, nil
}

func (s *TDnetSite) DocumentURL(_ context.Context, _ Fetcher, row types.Row) (string, string) {
	if strings.HasSuffix(strings.ToLower(row.DetailLink), ".pdf") {
		return row.DetailLink, row.DetailLink
	}
	return row.DetailLink, ""
}

// normalizeTDnetCode drops the trailing check digit TDnet appends to
// four-character securities codes.
func normalizeTDnetCode(code string) string {
	if len(code) == 5 && strings.HasSuffix(code, "0") {
		return code[:4]
	}
	return code
}

func traverseAndCollect(doc *html.Node, processor cellProcessorFunc) []types.Row {
	table := findByID(doc, tdnetTableID)
	if table == nil {
		return nil
	}

	var rows []types.Row
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row types.Row
			cells := 0
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || c.Data != "td" {
					continue
				}
				for _, class := range strings.Fields(attr(c, "class")) {
					if strings.HasPrefix(class, "kj") {
						cells++
						processor(c, class, &row)
					}
				}
			}
			if cells > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(table)
	return rows
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, tag string) *html.Node {
	return findNode(n, func(n *html.Node) bool { return n.Data == tag })
}

func findByID(n *html.Node, id string) *html.Node {
	return findNode(n, func(n *html.Node) bool { return attr(n, "id") == id })
}

func findByClass(n *html.Node, class string) *html.Node {
	return findNode(n, func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	})
}
