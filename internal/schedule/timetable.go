// Package schedule turns the course calendar into a concrete, timezone
// aware sequence of gong events: per course type timetable templates are
// instantiated against calendar dates, overlapping courses are prioritised
// and merged, and a rolling two-day window serves the next upcoming gong.
package schedule

import (
	"embed"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed timetables/*.yaml
var timetables embed.FS

const (
	defaultTemplate = "default"
	unknownTemplate = "unknown"
)

type templateRow struct {
	Time      string   `yaml:"time"`
	Type      string   `yaml:"type"`
	Locations []string `yaml:"locations"`
	Repeat    int      `yaml:"repeat"`
}

type template struct {
	Definition struct {
		EndTime string `yaml:"endTime"`
	} `yaml:"definition"`
	Days map[string][]templateRow `yaml:"days"`
}

// An Entry is one resolved, concrete gong event.
type Entry struct {
	Time       time.Time `json:"time"`
	Type       string    `json:"type"`
	Locations  []string  `json:"locations"`
	CourseType string    `json:"courseType"`
	CourseDay  int       `json:"courseDay"`
	Repeat     int       `json:"repeat"`
	Active     bool      `json:"active"`
}

// TimeOfDay returns the entry's wall-clock time as "HH:MM", used when
// comparing against a course's endTime boundary.
func (e Entry) TimeOfDay() string {
	return e.Time.Format("15:04")
}

// A TimeTable is the resolved event list for one course (or a merge of
// overlapping courses) on one date.
type TimeTable struct {
	CourseType string
	EndTime    string
	Entries    []Entry
}

// TimeTableExists reports whether a timetable template is defined for the
// course type.
func TimeTableExists(courseType string) bool {
	_, err := timetables.ReadFile(templatePath(courseType))
	return err == nil
}

func templatePath(courseType string) string {
	return fmt.Sprintf("timetables/%s.yaml", courseType)
}

// loadTemplate returns the template for a course type. An empty course type
// loads "default"; a course type without a template of its own loads
// "unknown".
func loadTemplate(courseType string) template {
	name := courseType
	if name == "" {
		name = defaultTemplate
	} else if !TimeTableExists(name) {
		name = unknownTemplate
	}

	var tmpl template
	body, err := timetables.ReadFile(templatePath(name))
	if err == nil {
		err = yaml.Unmarshal(body, &tmpl)
	}
	if err != nil {
		// the embedded templates are validated by tests; a malformed one
		// resolves to no entries
		return template{}
	}
	return tmpl
}

// Resolve instantiates the timetable template for courseType against a
// concrete calendar date. The day-specific row list is selected by exact
// courseDay key, falling back to the template's "default" day, else no
// entries. Rows without a repeat count of their own get defaultRepeat.
func Resolve(courseType string, date time.Time, courseDay int, defaultRepeat int) TimeTable {
	tmpl := loadTemplate(courseType)
	timeTable := TimeTable{
		CourseType: courseType,
		EndTime:    tmpl.Definition.EndTime,
	}

	rows, ok := tmpl.Days[strconv.Itoa(courseDay)]
	if !ok {
		rows = tmpl.Days[defaultTemplate]
	}

	for _, row := range rows {
		at, err := parseTimeOfDay(row.Time, date)
		if err != nil {
			continue
		}
		repeat := row.Repeat
		if repeat == 0 {
			repeat = defaultRepeat
		}
		timeTable.Entries = append(timeTable.Entries, Entry{
			Time:       at,
			Type:       row.Type,
			Locations:  row.Locations,
			CourseType: courseType,
			CourseDay:  courseDay,
			Repeat:     repeat,
			Active:     true,
		})
	}
	return timeTable
}

// parseTimeOfDay combines an "HH:MM" template time with a calendar date,
// seconds zeroed, in the date's timezone. Wall-clock times inside a DST
// transition normalise to the correct absolute instant.
func parseTimeOfDay(hhmm string, date time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
