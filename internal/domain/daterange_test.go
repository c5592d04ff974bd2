package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestResolveRangeThisWeek(t *testing.T) {
	// 2024-03-01 is a Friday; the week started Monday 2024-02-26.
	today := day(2024, time.March, 1)

	start, end := ResolveRange(RangeThisWeek, today, nil, nil)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, day(2024, time.February, 26), *start)
	assert.Equal(t, "2024-03-01", end.Format("2006-01-02"))
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
}

func TestResolveRangeThisWeekOnSunday(t *testing.T) {
	// Sunday belongs to the week that started six days earlier.
	today := day(2024, time.March, 3)

	start, _ := ResolveRange(RangeThisWeek, today, nil, nil)
	require.NotNil(t, start)
	assert.Equal(t, day(2024, time.February, 26), *start)
}

func TestResolveRangeThisWeekAcrossYearBoundary(t *testing.T) {
	// 2025-01-01 is a Wednesday; its week started Monday 2024-12-30.
	today := day(2025, time.January, 1)

	start, _ := ResolveRange(RangeThisWeek, today, nil, nil)
	require.NotNil(t, start)
	assert.Equal(t, day(2024, time.December, 30), *start)
}

func TestResolveRangeLastMonthLeapYear(t *testing.T) {
	today := day(2024, time.March, 1)

	start, end := ResolveRange(RangeLastMonth, today, nil, nil)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, day(2024, time.February, 1), *start)
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02"))
}

func TestResolveRangeLastMonthAcrossYearBoundary(t *testing.T) {
	today := day(2024, time.January, 15)

	start, end := ResolveRange(RangeLastMonth, today, nil, nil)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, day(2023, time.December, 1), *start)
	assert.Equal(t, "2023-12-31", end.Format("2006-01-02"))
}

func TestResolveRangeThisYear(t *testing.T) {
	today := day(2024, time.March, 1)

	start, end := ResolveRange(RangeThisYear, today, nil, nil)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, day(2024, time.January, 1), *start)
	assert.Equal(t, "2024-03-01", end.Format("2006-01-02"))
}

func TestResolveRangeThisMonth(t *testing.T) {
	today := day(2024, time.March, 15)

	start, end := ResolveRange(RangeThisMonth, today, nil, nil)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, day(2024, time.March, 1), *start)
	assert.Equal(t, "2024-03-15", end.Format("2006-01-02"))
}

func TestResolveRangeAllUnbounded(t *testing.T) {
	start, end := ResolveRange(RangeAll, day(2024, time.March, 1), nil, nil)
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestResolveRangeCustomNormalizesBounds(t *testing.T) {
	s := time.Date(2024, time.February, 10, 13, 45, 0, 0, time.Local)
	e := time.Date(2024, time.February, 20, 8, 0, 0, 0, time.Local)

	start, end := ResolveRange(RangeCustom, day(2024, time.March, 1), &s, &e)
	require.NotNil(t, start)
	require.NotNil(t, end)

	assert.Equal(t, day(2024, time.February, 10), *start)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, "2024-02-20", end.Format("2006-01-02"))
}
