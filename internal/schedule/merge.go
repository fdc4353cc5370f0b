package schedule

import (
	"time"

	"github.com/Dhamma-Sobhana/gong/internal/courses"
)

// CoursesOnDate returns every course active on the given date. When none
// match, it synthesizes a transient one-day "default" course so a timetable
// always resolves.
func CoursesOnDate(allCourses []courses.Course, date time.Time) []courses.Course {
	var active []courses.Course
	for _, course := range allCourses {
		if course.ActiveOn(date) {
			active = append(active, course)
		}
	}

	if len(active) == 0 {
		year, month, day := date.Date()
		midnight := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
		active = append(active, courses.Course{Type: "default", Start: midnight, End: midnight})
	}
	return active
}

// Prioritize decides which of up to 3 courses sharing one date provide the
// day's timetable:
//
//   - 3 matches: the course ending on the date (the ongoing one), plus
//     whichever of the remaining two is the shorter (a course nested inside a
//     service period).
//   - 2 matches: when either course ends on the date, both remain (one course
//     ending, the next beginning on the same day). Otherwise only the shorter
//     one (the longer is a service period umbrella around it).
//   - fewer: returned as-is.
func Prioritize(active []courses.Course, date time.Time) []courses.Course {
	switch len(active) {
	case 3:
		var ending courses.Course
		var found bool
		remaining := make([]courses.Course, 0, 2)
		for _, course := range active {
			if !found && course.EndsOn(date) {
				ending, found = course, true
			} else {
				remaining = append(remaining, course)
			}
		}
		if !found {
			// three overlapping courses where none ends today does not
			// occur in practice; fall back to the first plus the shorter
			// of the others
			ending, remaining = active[0], active[1:]
		}
		return []courses.Course{ending, shorter(remaining[0], remaining[1])}
	case 2:
		if active[0].EndsOn(date) || active[1].EndsOn(date) {
			return active
		}
		return []courses.Course{shorter(active[0], active[1])}
	default:
		return active
	}
}

func shorter(a, b courses.Course) courses.Course {
	if b.Days() < a.Days() {
		return b
	}
	return a
}

// Merge combines 1 or 2 timetables covering the same transition day into
// one ordered list without duplicate coverage.
//
// When respectEndTime is set and the first table declares an endTime, the
// first table's entries all remain and the second table only contributes
// entries strictly after that time of day. Otherwise the first table is
// truncated to entries strictly before the second table's earliest entry and
// the tables are concatenated.
func Merge(timeTables []TimeTable, respectEndTime bool) TimeTable {
	if len(timeTables) == 1 {
		return timeTables[0]
	}

	first, second := timeTables[0], timeTables[1]
	result := TimeTable{CourseType: "mixed"}

	if !respectEndTime || first.EndTime == "" {
		for _, entry := range first.Entries {
			if len(second.Entries) == 0 || entry.Time.Before(second.Entries[0].Time) {
				result.Entries = append(result.Entries, entry)
			}
		}
		result.Entries = append(result.Entries, second.Entries...)
		return result
	}

	result.Entries = append(result.Entries, first.Entries...)
	for _, entry := range second.Entries {
		if entry.TimeOfDay() > first.EndTime {
			result.Entries = append(result.Entries, entry)
		}
	}
	return result
}
