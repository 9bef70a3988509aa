package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{
		0:    "0m",
		45:   "45m",
		120:  "2h",
		450:  "7h 30m",
		-90:  "-1h 30m",
		2461: "41h 1m",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMinutes(in), "minutes=%d", in)
	}
}

func TestFormatCents(t *testing.T) {
	tests := map[int64]string{
		0:         "$0.00",
		5:         "$0.05",
		5499:      "$54.99",
		123450:    "$1,234.50",
		100000000: "$1,000,000.00",
		-300:      "-$3.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCents(in), "cents=%d", in)
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("07:30")
	require.NoError(t, err)
	assert.Equal(t, 450, m)

	for _, bad := range []string{"7:30", "24:00", "12:60", "ab:cd", "", "12-30"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}

	span, err := ClockSpan("08:00", "11:30")
	require.NoError(t, err)
	assert.Equal(t, 210, span)
	_, err = ClockSpan("11:30", "11:30")
	assert.Error(t, err)
}
