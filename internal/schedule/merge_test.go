package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhamma-Sobhana/gong/internal/courses"
	"github.com/Dhamma-Sobhana/gong/internal/schedule"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, stockholm)
}

func course(courseType string, start, end time.Time) courses.Course {
	return courses.Course{Type: courseType, Start: start, End: end}
}

var calendar2023 = []courses.Course{
	course("Child", date(2023, time.August, 25), date(2023, time.August, 27)),
	course("3-DayOSC", date(2023, time.August, 30), date(2023, time.September, 2)),
	course("ServicePeriod", date(2023, time.September, 2), date(2023, time.September, 6)),
	course("10-Day", date(2023, time.September, 6), date(2023, time.September, 17)),
	course("ServicePeriod", date(2023, time.September, 17), date(2023, time.September, 30)),
}

func TestCoursesOnDate(t *testing.T) {
	active := schedule.CoursesOnDate(calendar2023, date(2023, time.September, 1))
	require.Len(t, active, 1)
	assert.Equal(t, "3-DayOSC", active[0].Type)

	active = schedule.CoursesOnDate(calendar2023, date(2023, time.September, 18))
	require.Len(t, active, 1)
	assert.Equal(t, "ServicePeriod", active[0].Type)

	// course ending and course starting share the day
	active = schedule.CoursesOnDate(calendar2023, date(2023, time.September, 17))
	require.Len(t, active, 2)
	assert.Equal(t, "10-Day", active[0].Type)
	assert.Equal(t, "ServicePeriod", active[1].Type)
}

func TestCoursesOnDate_Default(t *testing.T) {
	day := date(2023, time.August, 29)
	active := schedule.CoursesOnDate(calendar2023, day)

	require.Len(t, active, 1)
	assert.Equal(t, "default", active[0].Type)
	assert.True(t, active[0].ActiveOn(day))
	assert.True(t, active[0].EndsOn(day))
}

func TestPrioritize(t *testing.T) {
	day := date(2025, time.February, 15)

	tenDay := course("10-Day", date(2025, time.February, 4), day)
	servicePeriod := course("ServicePeriod", day, date(2025, time.February, 20))
	umbrella := course("ServicePeriod", date(2025, time.February, 1), date(2025, time.February, 28))
	nested := course("3-DayOSC", date(2025, time.February, 13), date(2025, time.February, 16))

	t.Run("three courses keep the ending one plus the shorter", func(t *testing.T) {
		got := schedule.Prioritize([]courses.Course{umbrella, tenDay, servicePeriod}, day)
		require.Len(t, got, 2)
		assert.Equal(t, tenDay, got[0])
		assert.Equal(t, servicePeriod, got[1])
	})

	t.Run("two courses sharing an end-date boundary keep both", func(t *testing.T) {
		got := schedule.Prioritize([]courses.Course{tenDay, servicePeriod}, day)
		require.Len(t, got, 2)
		assert.Equal(t, tenDay, got[0])
		assert.Equal(t, servicePeriod, got[1])
	})

	t.Run("two nested courses keep the shorter", func(t *testing.T) {
		got := schedule.Prioritize([]courses.Course{umbrella, nested}, day)
		require.Len(t, got, 1)
		assert.Equal(t, nested, got[0])
	})

	t.Run("single course returned as-is", func(t *testing.T) {
		got := schedule.Prioritize([]courses.Course{tenDay}, day)
		require.Len(t, got, 1)
		assert.Equal(t, tenDay, got[0])
	})
}

func entryAt(t time.Time) schedule.Entry {
	return schedule.Entry{Time: t, Type: "gong", Locations: []string{"all"}, Repeat: 4, Active: true}
}

func TestMerge(t *testing.T) {
	day := date(2023, time.September, 17)

	first := schedule.TimeTable{
		CourseType: "10-Day",
		EndTime:    "09:00",
		Entries: []schedule.Entry{
			entryAt(day.Add(4 * time.Hour)),
			entryAt(day.Add(4*time.Hour + 20*time.Minute)),
		},
	}
	second := schedule.TimeTable{
		CourseType: "ServicePeriod",
		Entries: []schedule.Entry{
			entryAt(day.Add(4*time.Hour + 20*time.Minute)),
			entryAt(day.Add(14*time.Hour + 20*time.Minute)),
		},
	}

	t.Run("single table returned unchanged", func(t *testing.T) {
		assert.Equal(t, first, schedule.Merge([]schedule.TimeTable{first}, true))
	})

	t.Run("endTime drops the second table's earlier entries", func(t *testing.T) {
		merged := schedule.Merge([]schedule.TimeTable{first, second}, true)
		assert.Equal(t, "mixed", merged.CourseType)
		require.Len(t, merged.Entries, 3)
		assert.Equal(t, 4, merged.Entries[0].Time.Hour())
		assert.Equal(t, 20, merged.Entries[1].Time.Minute())
		assert.Equal(t, 14, merged.Entries[2].Time.Hour())
	})

	t.Run("without endTime the first table is truncated at the second's earliest entry", func(t *testing.T) {
		merged := schedule.Merge([]schedule.TimeTable{first, second}, false)
		require.Len(t, merged.Entries, 3)
		// the 04:20 entry is dropped from the first table, not duplicated
		assert.Equal(t, 4, merged.Entries[0].Time.Hour())
		assert.Equal(t, 0, merged.Entries[0].Time.Minute())
		assert.Equal(t, 20, merged.Entries[1].Time.Minute())
		assert.Equal(t, 14, merged.Entries[2].Time.Hour())
	})
}
