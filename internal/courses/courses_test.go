package courses

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stockholm = mustLoadLocation("Europe/Stockholm")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestParse(t *testing.T) {
	body := []byte(`{
  "location": "location_1392",
  "courses": [
    {"raw_course_type": "Child", "course_start_date": "2023-08-25", "course_end_date": "2023-08-27"},
    {"raw_course_type": "10-Day", "course_start_date": "2023-09-06", "course_end_date": "2023-09-17", "course_end_time": "09:00"}
  ]
}`)

	courses, err := Parse(body, stockholm)
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, "Child", courses[0].Type)
	assert.Equal(t, "2023-08-25", courses[0].Start.Format(time.DateOnly))
	assert.Equal(t, "2023-08-27", courses[0].End.Format(time.DateOnly))
	assert.Empty(t, courses[0].EndTime)

	assert.Equal(t, "10-Day", courses[1].Type)
	assert.Equal(t, "09:00", courses[1].EndTime)
	assert.Equal(t, stockholm, courses[1].Start.Location())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`not json`), stockholm)
	assert.Error(t, err)

	_, err = Parse([]byte(`{"courses": [{"raw_course_type": "Child", "course_start_date": "25/08/2023", "course_end_date": "2023-08-27"}]}`), stockholm)
	assert.Error(t, err)
}

func TestCourse_ActiveOn(t *testing.T) {
	course := Course{
		Type:  "10-Day",
		Start: time.Date(2023, time.September, 6, 0, 0, 0, 0, stockholm),
		End:   time.Date(2023, time.September, 17, 0, 0, 0, 0, stockholm),
	}

	assert.False(t, course.ActiveOn(time.Date(2023, time.September, 5, 23, 59, 0, 0, stockholm)))
	assert.True(t, course.ActiveOn(time.Date(2023, time.September, 6, 0, 0, 0, 0, stockholm)))
	assert.True(t, course.ActiveOn(time.Date(2023, time.September, 17, 23, 59, 0, 0, stockholm)))
	assert.False(t, course.ActiveOn(time.Date(2023, time.September, 18, 0, 0, 0, 0, stockholm)))
}

func TestCourse_Day(t *testing.T) {
	course := Course{
		Type:  "10-Day",
		Start: time.Date(2023, time.September, 6, 0, 0, 0, 0, stockholm),
		End:   time.Date(2023, time.September, 17, 0, 0, 0, 0, stockholm),
	}

	assert.Equal(t, 0, course.Day(time.Date(2023, time.September, 6, 23, 59, 59, 0, stockholm)))
	assert.Equal(t, 6, course.Day(time.Date(2023, time.September, 12, 23, 59, 59, 0, stockholm)))
	assert.Equal(t, 11, course.Day(time.Date(2023, time.September, 17, 0, 0, 0, 0, stockholm)))
	assert.Equal(t, 11, course.Days())
}

// Europe/Stockholm moves to summer time on 2025-03-30 and back on
// 2025-10-26.
func TestCourse_Day_DST(t *testing.T) {
	spring := Course{
		Type:  "10-Day",
		Start: time.Date(2025, time.March, 26, 0, 0, 0, 0, stockholm),
		End:   time.Date(2025, time.April, 6, 0, 0, 0, 0, stockholm),
	}

	assert.Equal(t, 3, spring.Day(time.Date(2025, time.March, 29, 12, 0, 0, 0, stockholm)))
	// the transition day is only 23 hours long; it and every day after
	// still map to their calendar offset
	assert.Equal(t, 4, spring.Day(time.Date(2025, time.March, 30, 12, 0, 0, 0, stockholm)))
	assert.Equal(t, 6, spring.Day(time.Date(2025, time.April, 1, 12, 0, 0, 0, stockholm)))
	assert.Equal(t, 11, spring.Days())

	autumn := Course{
		Type:  "ServicePeriod",
		Start: time.Date(2025, time.October, 22, 0, 0, 0, 0, stockholm),
		End:   time.Date(2025, time.October, 29, 0, 0, 0, 0, stockholm),
	}

	// the 25-hour day does not push the index a day ahead
	assert.Equal(t, 5, autumn.Day(time.Date(2025, time.October, 27, 12, 0, 0, 0, stockholm)))
	assert.Equal(t, 7, autumn.Days())
}

func TestCourse_EndsOn(t *testing.T) {
	course := Course{
		Type:  "ServicePeriod",
		Start: time.Date(2025, time.February, 15, 0, 0, 0, 0, stockholm),
		End:   time.Date(2025, time.February, 20, 0, 0, 0, 0, stockholm),
	}

	assert.False(t, course.EndsOn(time.Date(2025, time.February, 15, 12, 0, 0, 0, stockholm)))
	assert.True(t, course.EndsOn(time.Date(2025, time.February, 20, 12, 0, 0, 0, stockholm)))
}
