package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 10, 21, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  string
	}{
		{"today", "2026-10-21"},
		{"tomorrow", "2026-10-22"},
		{"yesterday", "2026-10-20"},
		{"friday", "2026-10-23"},
		{"next friday", "2026-10-23"},
		{"on Monday", "2026-10-26"},
		{"wednesday", "2026-10-28"},
		{"last friday", "2026-10-16"},
		{"fri", "2026-10-23"},
		{"2026-11-02", "2026-11-02"},
		{"Jan 2", "2026-01-02"},
		{"jan 2 2027", "2027-01-02"},
		{"January 5", "2026-01-05"},
		{"2 Feb", "2026-02-02"},
		{"2 february 2027", "2027-02-02"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(IDLayout))
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("someday", time.Now())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized date")
}
