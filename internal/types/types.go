package types

// Watermark packs a date and time of day as YYYYMMDD*10000 + HHMM.
// Zero means no prior state.
type Watermark int64

func NewWatermark(ymd, hm int) Watermark {
	return Watermark(int64(ymd)*10000 + int64(hm))
}

// Date returns the YYYYMMDD part.
func (w Watermark) Date() int {
	return int(w / 10000)
}

// HM returns the HHMM part.
func (w Watermark) HM() int {
	return int(w % 10000)
}

// Valid reports whether w is zero or a plausible date and time of day.
func (w Watermark) Valid() bool {
	if w == 0 {
		return true
	}
	if w < 0 {
		return false
	}
	ymd, hm := w.Date(), w.HM()
	year, month, day := ymd/10000, ymd/100%100, ymd%100
	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	return hm/100 < 24 && hm%100 < 60
}

// Row is one line of a disclosure listing, as scraped.
type Row struct {
	Time        string // HH:MM
	StockCode   string
	CompanyName string
	Category    string
	Title       string
	DetailLink  string
}

// Entry is a row that passed the newness and keyword checks.
type Entry struct {
	Time        string `json:"time"` // YYYY/MM/DD HH:MM
	StockCode   string `json:"stockCode"`
	CompanyName string `json:"companyName"`
	Title       string `json:"title"`
	PageURL     string `json:"pageUrl"`
	FileURL     string `json:"fileUrl,omitempty"`
}

// Disclosure is the result of one scan.
type Disclosure struct {
	LatestEntryTime Watermark `json:"latestEntryTime"`
	Entries         []Entry   `json:"entries"`
}
