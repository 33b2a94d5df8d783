package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-21 is a Wednesday; its week starts Monday 2026-10-19.
var anchor = time.Date(2026, 10, 21, 15, 30, 0, 0, time.UTC)

func TestStartOfWeek(t *testing.T) {
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), StartOfWeek(anchor))
	// Sunday belongs to the week that started the Monday before
	sunday := time.Date(2026, 10, 25, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, StartOfWeek(monday))
}

func TestGenerateWeekdaysOnly(t *testing.T) {
	days := Window{WeeksBack: 1, WeeksAhead: 2}.Generate(anchor, false)

	require.Len(t, days, 15) // 3 weeks x Mon-Fri
	assert.Equal(t, "2026-10-12", days[0].ID)
	assert.Equal(t, "2026-10-30", days[len(days)-1].ID)

	for i, d := range days {
		wd := d.Date.Weekday()
		assert.True(t, wd >= time.Monday && wd <= time.Friday, "unexpected %s", wd)
		if i > 0 {
			assert.True(t, days[i-1].Date.Before(d.Date), "days must ascend")
		}
		assert.Equal(t, wd == time.Friday, d.IsConstrained())
		assert.False(t, d.IsExtra())
	}
}

func TestGenerateWithSaturday(t *testing.T) {
	days := Window{WeeksBack: 0, WeeksAhead: 1}.Generate(anchor, true)

	require.Len(t, days, 6)
	ids := make([]string, len(days))
	for i, d := range days {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{
		"2026-10-19", "2026-10-20", "2026-10-21", "2026-10-22", "2026-10-23", "2026-10-24",
	}, ids)
	assert.Equal(t, Constrained, days[4].Kind)
	assert.Equal(t, Extra, days[5].Kind)
	assert.Equal(t, "Sat ~ 24/10", days[5].Label)
}

func TestGenerateDefaultWindow(t *testing.T) {
	days := Generate(anchor, false)

	assert.Len(t, days, 16*5)
	assert.Equal(t, "2026-09-21", days[0].ID)
}

func TestGenerateEmptyWindow(t *testing.T) {
	assert.Empty(t, Window{}.Generate(anchor, true))
}

func TestGenerateIsPure(t *testing.T) {
	a := Window{WeeksBack: 2, WeeksAhead: 2}.Generate(anchor, true)
	b := Window{WeeksBack: 2, WeeksAhead: 2}.Generate(anchor, true)
	assert.Equal(t, a, b)
}

func TestPreviousFriday(t *testing.T) {
	assert.Equal(t, "2026-10-16", PreviousFriday(anchor).Format(IDLayout))
	friday := time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-16", PreviousFriday(friday).Format(IDLayout))
}

func TestDayHelpers(t *testing.T) {
	d := NewDay(time.Date(2026, 10, 23, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-10-23", d.ID)
	assert.Equal(t, "Fri ~ 23/10", d.Label)
	assert.Equal(t, "constrained", d.Kind.String())

	assert.True(t, IsFridayID("2026-10-23"))
	assert.False(t, IsFridayID("2026-10-22"))
	assert.False(t, IsFridayID("garbage"))

	_, err := ParseDayID("2026-13-01")
	assert.Error(t, err)
}
