package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"08:00": 480,
		"9:05":  545,
		"23:59": 1439,
		"24:00": 1440,
	}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseClock_Malformed(t *testing.T) {
	for _, in := range []string{"", "8", "08:0", "ab:cd", "25:00", "24:01", "12:60", "-1:00", "08:00:00"} {
		_, err := ParseClock(in)
		assert.ErrorIs(t, err, ErrInvalidClock, in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:10", FormatClock(550))
	assert.Equal(t, "24:00", FormatClock(1440))
}

func TestZoneOf_Boundaries(t *testing.T) {
	assert.Equal(t, ZoneNight, ZoneOf(479))
	assert.Equal(t, ZoneMorning, ZoneOf(480))
	assert.Equal(t, ZoneMorning, ZoneOf(719))
	assert.Equal(t, ZoneAfternoon, ZoneOf(720))
	assert.Equal(t, ZoneAfternoon, ZoneOf(1079))
	assert.Equal(t, ZoneEvening, ZoneOf(1080))
	assert.Equal(t, ZoneEvening, ZoneOf(1259))
	assert.Equal(t, ZoneNight, ZoneOf(1260))
	assert.Equal(t, ZoneNight, ZoneOf(0))
	assert.Equal(t, ZoneMorning, ZoneOf(1440+500))
}

func TestTimeZoneRank(t *testing.T) {
	assert.Equal(t, 0, ZoneMorning.Rank())
	assert.Equal(t, 3, ZoneNight.Rank())
	assert.Equal(t, 4, TimeZone("DAWN").Rank())
}
