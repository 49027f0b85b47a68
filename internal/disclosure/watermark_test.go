package disclosure

import (
	"fmt"
	"testing"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestParseHM(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"09:00", 900},
		{" 15:30 ", 1530},
		{"0:05", 5},
		{"23:59", 2359},
		{"", -1},
		{"0900", -1},
		{"24:00", -1},
		{"12:60", -1},
		{"ab:cd", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseHM(tt.in), "ParseHM(%q)", tt.in)
	}
}

func TestYMD(t *testing.T) {
	d := time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 20240105, YMD(d))
	assert.Equal(t, "2024/01/05", SlashYMD(d))
}

// Same day: new iff the row is strictly later than the watermark.
func TestIsNew_SameDay(t *testing.T) {
	const today = 20240115
	for _, last := range []int{0, 1, 859, 900, 901, 1530, 2359} {
		w := types.NewWatermark(today, last)
		for h := 0; h < 24; h++ {
			for _, m := range []int{0, 1, 30, 59} {
				row := types.Row{Time: fmt.Sprintf("%02d:%02d", h, m)}
				assert.Equal(t, h*100+m > last, IsNew(w, row, today), "w=%d row=%s", w, row.Time)
			}
		}
	}
}

func TestIsNew_EarlierDayIsAlwaysNew(t *testing.T) {
	const today = 20240115
	for _, w := range []types.Watermark{0, types.NewWatermark(20240114, 2359), types.NewWatermark(20231231, 0)} {
		for _, tm := range []string{"00:00", "09:00", "23:59", "garbage"} {
			assert.True(t, IsNew(w, types.Row{Time: tm}, today), "w=%d row=%s", w, tm)
		}
	}
}

func TestIsNew_TieIsNotNew(t *testing.T) {
	w := types.NewWatermark(20240115, 900)
	assert.False(t, IsNew(w, types.Row{Time: "09:00"}, 20240115))
}

func TestIsNew_UnparseableTimeSameDay(t *testing.T) {
	w := types.NewWatermark(20240115, 0)
	assert.False(t, IsNew(w, types.Row{Time: ""}, 20240115))
}
