package schedule

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dhamma-Sobhana/gong/internal/clock"
	"github.com/Dhamma-Sobhana/gong/internal/courses"
	"github.com/Dhamma-Sobhana/gong/internal/storage"
)

// Schedule maintains a rolling two-day window over the resolved timetable.
// The window is rebuilt when the calendar date advances or the course list
// changes; manually disabled entries survive restarts through the settings
// file.
type Schedule struct {
	store         *storage.Store
	clock         clock.Clock
	timezone      *time.Location
	logger        *slog.Logger
	defaultRepeat int

	lock       sync.Mutex
	courseList []courses.Course
	disabled   *DisabledEntries
	today      time.Time
	entries    []Entry
}

// New returns a Schedule for the given timezone, restoring previously
// disabled entries from the settings file.
func New(store *storage.Store, timezone *time.Location, defaultRepeat int, c clock.Clock, logger *slog.Logger) (*Schedule, error) {
	settings, err := store.ReadSettings()
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	s := Schedule{
		store:         store,
		clock:         c,
		timezone:      timezone,
		logger:        logger,
		defaultRepeat: defaultRepeat,
		disabled:      NewDisabledEntries(settings.DisabledEntries...),
	}
	s.rebuild(s.now())
	return &s, nil
}

func (s *Schedule) now() time.Time {
	return s.clock.Now().In(s.timezone)
}

// SetCourses replaces the course list and rebuilds the cached window.
func (s *Schedule) SetCourses(courseList []courses.Course) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.courseList = courseList
	s.rebuild(s.today)
}

func (s *Schedule) Courses() []courses.Course {
	s.lock.Lock()
	defer s.lock.Unlock()
	result := make([]courses.Course, len(s.courseList))
	copy(result, s.courseList)
	return result
}

// ScheduleFor resolves the timetable for a single date: the active courses
// are prioritised, each resolved against its template, and the result merged
// honouring any endTime boundary on the first course's day.
func (s *Schedule) ScheduleFor(date time.Time) TimeTable {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.scheduleFor(date)
}

func (s *Schedule) scheduleFor(date time.Time) TimeTable {
	active := Prioritize(CoursesOnDate(s.courseList, date), date)

	timeTables := make([]TimeTable, 0, len(active))
	for _, course := range active {
		timeTable := Resolve(course.Type, date, course.Day(date), s.defaultRepeat)
		if course.EndTime != "" {
			// the calendar's end time for the course takes precedence over
			// the template's
			timeTable.EndTime = course.EndTime
		}
		timeTables = append(timeTables, timeTable)
	}
	return Merge(timeTables, true)
}

// rebuild recomputes the two-day window for date and the day after. The
// today/tomorrow boundary is never truncated by an endTime.
func (s *Schedule) rebuild(date time.Time) {
	s.today = date

	today := s.scheduleFor(date)
	tomorrow := s.scheduleFor(date.AddDate(0, 0, 1))
	merged := Merge([]TimeTable{today, tomorrow}, false)

	for i, entry := range merged.Entries {
		if s.disabled.Contains(entry.Time) {
			merged.Entries[i].Active = false
		}
	}
	s.entries = merged.Entries
	s.logger.Debug("schedule rebuilt",
		slog.String("date", date.Format(time.DateOnly)),
		slog.Int("entries", len(s.entries)))
}

// refresh rebuilds the window when the calendar date has advanced since it
// was built.
func (s *Schedule) refresh() {
	now := s.now()
	if sameDate(now, s.today) {
		return
	}
	s.rebuild(now)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GetSchedule returns the entries of the (possibly rebuilt) two-day window.
func (s *Schedule) GetSchedule() []Entry {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refresh()
	result := make([]Entry, len(s.entries))
	copy(result, s.entries)
	return result
}

// NextGong returns the first active entry after the current time, or false
// when no entry remains in the window.
func (s *Schedule) NextGong() (Entry, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refresh()

	now := s.now()
	for _, entry := range s.entries {
		if entry.Active && entry.Time.After(now) {
			return entry, true
		}
	}
	return Entry{}, false
}

// SetEntryStatus enables or disables the entry at the given time, persisting
// the disabled set to disk. Past timestamps are pruned from the set on every
// write.
func (s *Schedule) SetEntryStatus(t time.Time, active bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.disabled.Update(t, active)
	s.disabled.Cleanup(s.now())
	if err := s.store.WriteSettings(storage.Settings{DisabledEntries: s.disabled.Times()}); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	for i, entry := range s.entries {
		if entry.Time.Equal(t) {
			s.entries[i].Active = active
			break
		}
	}
	return nil
}
