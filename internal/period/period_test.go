package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/salesreport/internal/types"
)

func TestMonthRange(t *testing.T) {
	r := MonthRange(2024, time.February, time.UTC)

	assert.Equal(t, "February 2024", r.Label)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999000000, time.UTC), r.End)
}

func TestLMTD_CurrentMonthClampsDay(t *testing.T) {
	selected := MonthRange(2024, time.March, time.UTC)
	now := time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC)

	lmtd := LMTD(selected, now)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), lmtd.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999000000, time.UTC), lmtd.End)

	mtd := MTD(selected, now)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999000000, time.UTC), mtd.End)
}

func TestLMTD_CurrentMonthSameDay(t *testing.T) {
	selected := MonthRange(2024, time.May, time.UTC)
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

	lmtd := LMTD(selected, now)
	assert.Equal(t, time.Date(2024, 4, 10, 23, 59, 59, 999000000, time.UTC), lmtd.End)
	assert.Equal(t, "LMTD Apr 2024", lmtd.Label)
}

func TestLMTD_PastMonthIsWholePreviousMonth(t *testing.T) {
	selected := MonthRange(2024, time.January, time.UTC)
	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	lmtd := LMTD(selected, now)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), lmtd.Start)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 999000000, time.UTC), lmtd.End)

	mtd := MTD(selected, now)
	assert.Equal(t, selected.End, mtd.End)
}

func TestRange_ContainsIsInclusive(t *testing.T) {
	r := MonthRange(2024, time.January, time.UTC)

	assert.True(t, r.Contains(r.StartMillis()))
	assert.True(t, r.Contains(r.EndMillis()))
	assert.False(t, r.Contains(r.EndMillis()+1))

	recs := []types.SaleRecord{{Timestamp: r.StartMillis() - 1}, {Timestamp: r.StartMillis()}}
	assert.Len(t, r.Filter(recs), 1)
}

func TestParseMonth(t *testing.T) {
	r, err := ParseMonth("2024-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "January 2024", r.Label)

	_, err = ParseMonth("January", time.UTC)
	assert.Error(t, err)
}

func TestSpan(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
	mar := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).UnixMilli()
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "January 2024", Span(jan, jan, time.UTC, now))
	assert.Equal(t, "January 2024 - March 2024", Span(jan, mar, time.UTC, now))
	assert.Equal(t, "July 2024", Span(1, 0, time.UTC, now))
}
