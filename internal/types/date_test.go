package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDeliveryDateDaily(t *testing.T) {
	next, err := NextDeliveryDate(date(2025, time.March, 10), FrequencyDaily)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 11), next)
}

func TestNextDeliveryDateWeekly(t *testing.T) {
	next, err := NextDeliveryDate(date(2025, time.March, 10), FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 17), next)

	// crosses a month boundary
	next, err = NextDeliveryDate(date(2025, time.March, 28), FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.April, 4), next)
}

func TestNextDeliveryDateMonthlyClampsToShortMonths(t *testing.T) {
	cases := []struct {
		name    string
		current time.Time
		want    time.Time
	}{
		{"plain month", date(2025, time.March, 15), date(2025, time.April, 15)},
		{"jan 31 to feb 28", date(2025, time.January, 31), date(2025, time.February, 28)},
		{"jan 31 leap year", date(2024, time.January, 31), date(2024, time.February, 29)},
		{"jan 30 to feb 28", date(2025, time.January, 30), date(2025, time.February, 28)},
		{"mar 31 to apr 30", date(2025, time.March, 31), date(2025, time.April, 30)},
		{"dec to jan", date(2025, time.December, 31), date(2026, time.January, 31)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := NextDeliveryDate(tc.current, FrequencyMonthly)
			require.NoError(t, err)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestNextDeliveryDateInvalidFrequency(t *testing.T) {
	_, err := NextDeliveryDate(date(2025, time.March, 10), Frequency("yearly"))
	assert.Error(t, err)
}

func TestAddClampedDate(t *testing.T) {
	// time.AddDate would normalize Jan 31 + 1 month to Mar 3
	assert.Equal(t, date(2025, time.February, 28), AddClampedDate(date(2025, time.January, 31), 0, 1, 0))
	assert.Equal(t, date(2026, time.February, 28), AddClampedDate(date(2025, time.February, 28), 1, 0, 0))
	assert.Equal(t, date(2025, time.May, 1), AddClampedDate(date(2025, time.April, 30), 0, 0, 1))
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	got := DateOnly(time.Date(2025, time.June, 3, 18, 45, 12, 999, loc))
	assert.Equal(t, date(2025, time.June, 3), got)
}
