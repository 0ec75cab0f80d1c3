package planner

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	for _, name := range []string{"Tuesday", "tuesday", "TUESDAY"} {
		d, err := ParseDay(name)
		require.NoError(t, err, name)
		assert.Equal(t, Tuesday, d)
	}

	_, err := ParseDay("Funday")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseDay_Concurrent(t *testing.T) {
	names := []string{"sunday", "MONDAY", "Tuesday", "wEdNeSdAy", "thursday", "Friday", "SATURDAY"}

	var wg sync.WaitGroup
	errs := make(chan error, 16*len(names))
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for want, name := range names {
				d, err := ParseDay(name)
				if err == nil && d != Day(want) {
					err = fmt.Errorf("ParseDay(%q) = %v, want %v", name, d, Day(want))
				}
				if err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestParseWeekTime(t *testing.T) {
	wt, err := ParseWeekTime("Tuesday", "0930")
	require.NoError(t, err)
	assert.Equal(t, Tuesday, wt.Day())
	assert.Equal(t, 9, wt.Hour())
	assert.Equal(t, 30, wt.Minute())
	assert.Equal(t, "0930", wt.Clock())
	assert.Equal(t, "Tuesday: 09:30", wt.String())
}

func TestParseWeekTime_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		day   string
		clock string
	}{
		{"unknown day", "Funday", "0930"},
		{"short clock", "Monday", "930"},
		{"long clock", "Monday", "09300"},
		{"signed clock", "Monday", "+930"},
		{"letters", "Monday", "09h0"},
		{"hour out of range", "Monday", "2500"},
		{"minute out of range", "Monday", "1060"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWeekTime(tt.day, tt.clock)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestNewWeekTime_HourTwentyFour(t *testing.T) {
	wt, err := NewWeekTime(Monday, 24, 0)
	require.NoError(t, err)

	assert.True(t, wt.After(MustWeekTime(Monday, 23, 59)))
	assert.True(t, wt.Before(MustWeekTime(Tuesday, 0, 0)))
	assert.Equal(t, MustWeekTime(Monday, 23, 59).Ordinal(), wt.Ordinal())
}

func TestWeekTimeFromMinutes(t *testing.T) {
	wt, err := WeekTimeFromMinutes(2, 570)
	require.NoError(t, err)
	assert.True(t, wt.Equal(MustWeekTime(Tuesday, 9, 30)))

	_, err = WeekTimeFromMinutes(2, -1)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = WeekTimeFromMinutes(7, 0)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestWeekTime_Compare(t *testing.T) {
	ordered := []WeekTime{
		StartOfWeek,
		MustWeekTime(Sunday, 0, 1),
		MustWeekTime(Sunday, 1, 0),
		MustWeekTime(Monday, 0, 0),
		MustWeekTime(Friday, 18, 0),
		EndOfWeek,
	}
	for i := range ordered {
		for j := range ordered {
			want := cmpInt(i, j)
			assert.Equal(t, want, ordered[i].Compare(ordered[j]), "%s vs %s", ordered[i], ordered[j])
			assert.Equal(t, want, cmpInt(ordered[i].Ordinal(), ordered[j].Ordinal()))
		}
	}
}

func TestWeekTime_OrdinalRoundTrip(t *testing.T) {
	for _, ord := range []int{0, 1, 59, 60, 1439, 1440, 5000, minutesPerWeek - 1} {
		assert.Equal(t, ord, weekTimeFromOrdinal(ord).Ordinal())
	}
	assert.Equal(t, minutesPerWeek-1, EndOfWeek.Ordinal())
}
