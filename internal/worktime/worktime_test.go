package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smena/internal/models"
)

func makeSession(started time.Time, ended *time.Time, rateKopecks *int64) *models.WorkSession {
	return &models.WorkSession{
		ID:              1,
		WorkerID:        1,
		CreatedAt:       started,
		EndedAt:         ended,
		HourRateKopecks: rateKopecks,
	}
}

func TestElapsed(t *testing.T) {
	started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	now := started.Add(90 * time.Minute)

	t.Run("открытая сессия считается от now", func(t *testing.T) {
		s := makeSession(started, nil, nil)
		assert.Equal(t, 90*time.Minute, Elapsed(s, now))
	})

	t.Run("закрытая сессия считается по ended_at", func(t *testing.T) {
		ended := started.Add(8 * time.Hour)
		s := makeSession(started, &ended, nil)
		assert.Equal(t, 8*time.Hour, Elapsed(s, now))
	})

	t.Run("отрицательная длительность зажимается в ноль", func(t *testing.T) {
		ended := started.Add(-time.Hour)
		s := makeSession(started, &ended, nil)
		assert.Equal(t, time.Duration(0), Elapsed(s, now))
	})

	t.Run("nil сессия", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), Elapsed(nil, now))
	})
}

func TestComponents(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		days    int
		hours   int
		minutes int
		seconds int
	}{
		{"ноль", 0, 0, 0, 0, 0},
		{"только секунды", 42 * time.Second, 0, 0, 0, 42},
		{"часы и минуты", 8*time.Hour + 30*time.Minute, 0, 8, 30, 0},
		{"больше суток", 26*time.Hour + 61*time.Second, 1, 2, 1, 1},
		{"отрицательная", -time.Minute, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, hours, minutes, seconds := Components(tt.d)
			assert.Equal(t, tt.days, days)
			assert.Equal(t, tt.hours, hours)
			assert.Equal(t, tt.minutes, minutes)
			assert.Equal(t, tt.seconds, seconds)
		})
	}
}

func TestPaymentKopecks(t *testing.T) {
	started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	rate := int64(25000) // 250 руб/час

	t.Run("ровно восемь часов", func(t *testing.T) {
		ended := started.Add(8 * time.Hour)
		s := makeSession(started, &ended, &rate)
		assert.Equal(t, int64(200000), PaymentKopecks(s, ended))
	})

	t.Run("дробная часть отбрасывается", func(t *testing.T) {
		// 1 секунда по 250 руб/час = 6.94 копейки -> 6
		ended := started.Add(time.Second)
		s := makeSession(started, &ended, &rate)
		assert.Equal(t, int64(6), PaymentKopecks(s, ended))
	})

	t.Run("без ставки выплата ноль", func(t *testing.T) {
		ended := started.Add(8 * time.Hour)
		s := makeSession(started, &ended, nil)
		assert.Equal(t, int64(0), PaymentKopecks(s, ended))
	})

	t.Run("открытая сессия считается от now", func(t *testing.T) {
		s := makeSession(started, nil, &rate)
		now := started.Add(2 * time.Hour)
		assert.Equal(t, int64(50000), PaymentKopecks(s, now))
	})
}

func TestFormatLocal(t *testing.T) {
	ts := time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01 08:00", FormatLocal(ts))
	assert.Equal(t, "2025-06-01 08:00:00", FormatLocalSeconds(ts))
}

func TestParseLocal(t *testing.T) {
	t.Run("минуты", func(t *testing.T) {
		ts, err := ParseLocal("2025-06-01 08:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC), ts)
	})

	t.Run("секунды", func(t *testing.T) {
		ts, err := ParseLocal("2025-06-01 08:00:30")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 5, 0, 30, 0, time.UTC), ts)
	})

	t.Run("пробелы по краям", func(t *testing.T) {
		ts, err := ParseLocal("  2025-06-01 08:00 ")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC), ts)
	})

	t.Run("мусор", func(t *testing.T) {
		_, err := ParseLocal("01.06.2025 08:00")
		require.Error(t, err)
	})
}

func TestParseFormatRoundTrip(t *testing.T) {
	ts, err := ParseLocal("2025-12-31 23:59")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31 23:59", FormatLocal(ts))
}
