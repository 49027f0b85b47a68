package disclosure

import (
	"context"
	"testing"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tdnetListingHTML = `<html><body>
<div id="pager-box-top">
  <div class="pager-M">1</div>
  <div class="pager-R" onclick="pagerLink('I_list_002_20240115.html')">次へ&raquo;</div>
</div>
<table id="main-list-table">
  <tr>
    <td class="oddnew-L kjTime" noWrap>15:00</td>
    <td class="oddnew-M kjCode" noWrap>72030</td>
    <td class="oddnew-M kjName" noWrap>トヨタ自動車</td>
    <td class="oddnew-M kjTitle" align="left"><a href="140120240115512345.pdf" target="_blank">資本業務提携に関するお知らせ</a></td>
    <td class="oddnew-M kjXbrl" noWrap></td>
    <td class="oddnew-M kjPlace" noWrap>東名</td>
  </tr>
  <tr>
    <td class="evennew-L kjTime" noWrap>14:30</td>
    <td class="evennew-M kjCode" noWrap>130A0</td>
    <td class="evennew-M kjName" noWrap>ベリタス</td>
    <td class="evennew-M kjTitle" align="left"></td>
    <td class="evennew-M kjPlace" noWrap>東</td>
  </tr>
</table>
</body></html>`

func TestTDnetSite_ParsePage(t *testing.T) {
	page, err := NewTDnetSite().ParsePage(tdnetListingHTML)
	require.NoError(t, err)

	assert.True(t, page.HasNext)
	require.Len(t, page.Rows, 2)

	assert.Equal(t, types.Row{
		Time:        "15:00",
		StockCode:   "7203",
		CompanyName: "トヨタ自動車",
		Category:    "東名",
		Title:       "資本業務提携に関するお知らせ",
		DetailLink:  "https://www.release.tdnet.info/inbs/140120240115512345.pdf",
	}, page.Rows[0])

	assert.Equal(t, "130A", page.Rows[1].StockCode)
	assert.Empty(t, page.Rows[1].Title)
	assert.Empty(t, page.Rows[1].DetailLink)
}

func TestTDnetSite_ParsePageLastPage(t *testing.T) {
	body := `<html><body><table id="main-list-table"><tr><td class="kjTime">09:00</td></tr></table></body></html>`

	page, err := NewTDnetSite().ParsePage(body)
	require.NoError(t, err)

	assert.False(t, page.HasNext)
	assert.Len(t, page.Rows, 1)
}

func TestTDnetSite_ParsePageNoTable(t *testing.T) {
	page, err := NewTDnetSite().ParsePage(`<html><body>開示情報はありません</body></html>`)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
}

func TestTDnetSite_PageURL(t *testing.T) {
	today := time.Date(2024, 1, 15, 9, 0, 0, 0, jst)
	assert.Equal(t,
		"https://www.release.tdnet.info/inbs/I_list_012_20240115.html",
		NewTDnetSite().PageURL(12, today))
}

func TestTDnetSite_DocumentURL(t *testing.T) {
	f := &fakeFetcher{}
	s := NewTDnetSite()

	pageURL, fileURL := s.DocumentURL(context.Background(), f, types.Row{DetailLink: "https://www.release.tdnet.info/inbs/1.pdf"})
	assert.Equal(t, "https://www.release.tdnet.info/inbs/1.pdf", pageURL)
	assert.Equal(t, pageURL, fileURL)

	_, fileURL = s.DocumentURL(context.Background(), f, types.Row{DetailLink: "https://www.release.tdnet.info/inbs/1.htm"})
	assert.Empty(t, fileURL)
	assert.Empty(t, f.calls, "tdnet documents are linked directly")
}
