// Package courses fetches the course calendar for a location from the
// course search service, with an on-disk cache as fallback when the remote
// call fails or returns implausible data.
package courses

import (
	"encoding/json"
	"fmt"
	"time"
)

// A Course is a dated activity (retreat, service period) whose type selects
// the timetable template to play. Start and End are calendar days at midnight
// in the schedule's timezone; End is inclusive (end of day). EndTime, when
// set ("HH:MM"), marks the boundary after which a subsequent overlapping
// course's own entries take precedence on the shared day.
type Course struct {
	Type    string
	Start   time.Time
	End     time.Time
	EndTime string
}

func (c Course) String() string {
	return fmt.Sprintf("%s, %s - %s", c.Type, c.Start.Format(time.DateOnly), c.End.Format(time.DateOnly))
}

// ActiveOn reports whether date falls within the course's [start, end]
// inclusive-day interval.
func (c Course) ActiveOn(date time.Time) bool {
	day := dateOf(date)
	return !day.Before(dateOf(c.Start)) && !day.After(dateOf(c.End))
}

// Day returns the zero-based day index of date within the course. The
// index is a calendar-date offset: the 23- and 25-hour days around a DST
// transition still count as one day.
func (c Course) Day(date time.Time) int {
	elapsed := dateOf(date).Sub(dateOf(c.Start))
	return int((elapsed + 12*time.Hour) / (24 * time.Hour))
}

// Days returns the total course duration in days.
func (c Course) Days() int {
	return c.Day(c.End)
}

// EndsOn reports whether the course reaches its end date on the given date.
func (c Course) EndsOn(date time.Time) bool {
	return dateOf(c.End).Equal(dateOf(date))
}

func dateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// payload is the raw calendar document returned by the course search
// service (and stored in the on-disk cache).
type payload struct {
	Location string      `json:"location"`
	Courses  []rawCourse `json:"courses"`
}

type rawCourse struct {
	Type    string `json:"raw_course_type"`
	Start   string `json:"course_start_date"`
	End     string `json:"course_end_date"`
	EndTime string `json:"course_end_time"`
}

// Parse extracts the courses from a raw calendar payload. Dates are
// instantiated in the supplied timezone.
func Parse(body []byte, loc *time.Location) ([]Course, error) {
	var doc payload
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	courses := make([]Course, 0, len(doc.Courses))
	for _, raw := range doc.Courses {
		start, err := time.ParseInLocation(time.DateOnly, raw.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("parse calendar: start date %q: %w", raw.Start, err)
		}
		end, err := time.ParseInLocation(time.DateOnly, raw.End, loc)
		if err != nil {
			return nil, fmt.Errorf("parse calendar: end date %q: %w", raw.End, err)
		}
		courses = append(courses, Course{Type: raw.Type, Start: start, End: end, EndTime: raw.EndTime})
	}
	return courses, nil
}
