package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhamma-Sobhana/gong/internal/schedule"
)

var stockholm = mustLoadLocation("Europe/Stockholm")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestTimeTableExists(t *testing.T) {
	assert.True(t, schedule.TimeTableExists("ServicePeriod"))
	assert.True(t, schedule.TimeTableExists("10-Day"))
	assert.False(t, schedule.TimeTableExists("UnknownType"))
}

func TestResolve(t *testing.T) {
	date := time.Date(2023, time.September, 15, 0, 0, 0, 0, stockholm)

	t.Run("unknown course type has no entries", func(t *testing.T) {
		assert.Empty(t, schedule.Resolve("UnknownType", date, 0, 4).Entries)
	})

	t.Run("service period", func(t *testing.T) {
		timeTable := schedule.Resolve("ServicePeriod", date, 1, 4)
		assert.Equal(t, "ServicePeriod", timeTable.CourseType)
		require.Len(t, timeTable.Entries, 3)

		entry := timeTable.Entries[0]
		assert.Equal(t, 15, entry.Time.Day())
		assert.Equal(t, 7, entry.Time.Hour())
		assert.Equal(t, 20, entry.Time.Minute())
		assert.Zero(t, entry.Time.Second())
		assert.Equal(t, stockholm, entry.Time.Location())
		assert.Equal(t, "gong", entry.Type)
		assert.Equal(t, []string{"all"}, entry.Locations)
		assert.Equal(t, 1, entry.CourseDay)
		assert.True(t, entry.Active)
	})

	t.Run("day-specific entries", func(t *testing.T) {
		assert.Empty(t, schedule.Resolve("10-Day", date, 0, 4).Entries)
		assert.Len(t, schedule.Resolve("10-Day", date, 11, 4).Entries, 2)

		// day 2 falls back to the template's default day
		timeTable := schedule.Resolve("10-Day", date, 2, 4)
		require.Len(t, timeTable.Entries, 6)
		assert.Equal(t, 14, timeTable.Entries[4].Time.Hour())
		assert.Equal(t, 15, timeTable.Entries[4].Time.Minute())

		// day 4 has its own row list
		timeTable = schedule.Resolve("10-Day", date, 4, 4)
		require.Len(t, timeTable.Entries, 6)
		assert.Equal(t, 13, timeTable.Entries[4].Time.Hour())
		assert.Equal(t, 50, timeTable.Entries[4].Time.Minute())
	})

	t.Run("repeat falls back to the default", func(t *testing.T) {
		timeTable := schedule.Resolve("10-Day", date, 11, 4)
		require.Len(t, timeTable.Entries, 2)
		assert.Equal(t, 8, timeTable.Entries[0].Repeat)
		assert.Equal(t, 4, timeTable.Entries[1].Repeat)
	})

	t.Run("template endTime", func(t *testing.T) {
		assert.Equal(t, "09:00", schedule.Resolve("10-Day", date, 11, 4).EndTime)
		assert.Empty(t, schedule.Resolve("ServicePeriod", date, 1, 4).EndTime)
	})
}
