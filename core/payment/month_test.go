package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonth(t *testing.T) {
	m, err := ParseMonth("2025-06")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2025, Month: time.June}, m)
	assert.Equal(t, "2025-06", m.String())

	_, err = ParseMonth("06-2025")
	assert.Error(t, err)

	assert.True(t, Month{2025, time.May}.Before(m))
	assert.True(t, m.After(Month{2025, time.May}))
	assert.False(t, m.Before(m))

	assert.Equal(t, Month{2026, time.January}, Month{2025, time.November}.AddMonths(2))
	assert.Equal(t, Month{2025, time.July}, m.Next())
	assert.Equal(t, 13, Month{2025, time.May}.MonthsUntil(Month{2026, time.June}))
	assert.Equal(t, -1, m.MonthsUntil(Month{2025, time.May}))
	assert.Equal(t, 0, m.MonthsUntil(m))

	assert.True(t, Month{}.IsZero())
	assert.False(t, m.IsZero())

	assert.Equal(t, MonthOf(time.Date(2025, time.June, 30, 23, 59, 0, 0, time.UTC)), m)
}

func TestMonthText(t *testing.T) {
	var m Month
	require.NoError(t, m.UnmarshalText([]byte("2024-02")))
	assert.Equal(t, Month{2024, time.February}, m)

	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02", string(b))

	assert.Error(t, m.UnmarshalText([]byte("nope")))
}
