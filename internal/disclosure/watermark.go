package disclosure

import (
	"strconv"
	"strings"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"
)

// YMD packs the calendar date of t as YYYYMMDD.
func YMD(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// SlashYMD formats the calendar date of t as YYYY/MM/DD.
func SlashYMD(t time.Time) string {
	return t.Format("2006/01/02")
}

// ParseHM converts "HH:MM" to HHMM. Malformed input yields -1, which is
// never newer than a same-day watermark.
func ParseHM(s string) int {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return -1
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return -1
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return -1
	}
	return h*100 + m
}

// IsNew reports whether row was published after w. Rows carry no date and
// always belong to today; a later calendar day makes every row new, and
// time-of-day ties are not new.
func IsNew(w types.Watermark, row types.Row, today int) bool {
	return w.Date() < today || w.HM() < ParseHM(row.Time)
}
