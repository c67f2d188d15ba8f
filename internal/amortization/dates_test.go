package amortization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"same day", date(2024, time.January, 15), 1, date(2024, time.February, 15)},
		{"zero months", date(2024, time.January, 31), 0, date(2024, time.January, 31)},
		{"leap february", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"common february", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"thirty day month", date(2024, time.March, 31), 1, date(2024, time.April, 30)},
		{"year rollover", date(2024, time.November, 30), 3, date(2025, time.February, 28)},
		{"clamp does not stick", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"negative", date(2024, time.March, 31), -1, date(2024, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.months))
		})
	}
}

func TestAddMonths_PreservesClockAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	start := time.Date(2024, time.August, 31, 9, 45, 0, 0, loc)

	got := AddMonths(start, 1)
	assert.Equal(t, time.Date(2024, time.September, 30, 9, 45, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}
