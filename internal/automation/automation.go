// Package automation plays the schedule: it keeps the course calendar fresh
// with a daily fetch, arms a timer for the next upcoming gong and invokes the
// injected play callback when it fires.
package automation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Dhamma-Sobhana/gong/internal/clock"
	"github.com/Dhamma-Sobhana/gong/internal/courses"
	"github.com/Dhamma-Sobhana/gong/internal/schedule"
	"github.com/Dhamma-Sobhana/gong/internal/timer"
)

const (
	nextGongTimer   = "next-gong"
	dailyFetchTimer = "daily-fetch"
)

// PlayFunc is called when a scheduled gong fires.
type PlayFunc func(locations []string, repeat int)

// CourseFetcher returns the current course list, reporting whether it came
// from the disk cache rather than the remote service.
type CourseFetcher interface {
	Fetch(ctx context.Context) ([]courses.Course, bool, error)
}

// Status is a snapshot of the automation state, served by the health
// endpoint.
type Status struct {
	Enabled   bool            `json:"enabled"`
	LastFetch time.Time       `json:"lastFetch"`
	FromCache bool            `json:"fromCache"`
	Courses   int             `json:"courses"`
	NextGong  *schedule.Entry `json:"nextGong,omitempty"`
}

type Automation struct {
	play          PlayFunc
	fetcher       CourseFetcher
	schedule      *schedule.Schedule
	timers        *timer.Timers
	clock         clock.Clock
	timezone      *time.Location
	fetchTime     string
	enableOnStart bool
	logger        *slog.Logger

	lock      sync.Mutex
	ctx       context.Context
	enabled   bool
	lastFetch time.Time
	fromCache bool
}

func New(play PlayFunc, fetcher CourseFetcher, s *schedule.Schedule, timers *timer.Timers, timezone *time.Location, fetchTime string, enableOnStart bool, c clock.Clock, logger *slog.Logger) *Automation {
	return &Automation{
		play:          play,
		fetcher:       fetcher,
		schedule:      s,
		timers:        timers,
		clock:         c,
		timezone:      timezone,
		fetchTime:     fetchTime,
		enableOnStart: enableOnStart,
		logger:        logger,
		ctx:           context.Background(),
	}
}

// Run enables automation if so configured and keeps it running until the
// context is cancelled.
func (a *Automation) Run(ctx context.Context) error {
	a.lock.Lock()
	a.ctx = ctx
	a.lock.Unlock()

	if a.enableOnStart {
		a.Enable(true)
	}
	<-ctx.Done()
	a.timers.Cancel(nextGongTimer)
	a.timers.Cancel(dailyFetchTimer)
	return nil
}

// Enable turns automation on or off. Enabling fetches the calendar
// immediately and arms both the next-gong timer and the recurring daily
// fetch; disabling cancels the timers but leaves the schedule untouched, so
// re-enabling resumes from current data.
func (a *Automation) Enable(enable bool) {
	a.lock.Lock()
	a.enabled = enable
	ctx := a.ctx
	a.lock.Unlock()

	if !enable {
		a.logger.Info("automation disabled")
		a.timers.Cancel(nextGongTimer)
		a.timers.Cancel(dailyFetchTimer)
		return
	}

	a.logger.Info("automation enabled")
	a.fetch(ctx)
	a.scheduleGong()
	a.scheduleFetch()
}

func (a *Automation) Enabled() bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.enabled
}

// scheduleGong arms the next-gong timer from the schedule. Arming cancels
// any previously armed gong timer.
func (a *Automation) scheduleGong() {
	entry, ok := a.schedule.NextGong()
	if !ok {
		a.logger.Warn("no upcoming gong to schedule")
		a.timers.Cancel(nextGongTimer)
		return
	}

	wait := entry.Time.Sub(a.clock.Now())
	a.logger.Info("next gong scheduled",
		slog.Time("time", entry.Time),
		slog.Any("locations", entry.Locations))
	a.timers.Start(nextGongTimer, wait, func() {
		a.logger.Info("playing scheduled gong", slog.Any("locations", entry.Locations))
		a.play(entry.Locations, entry.Repeat)
		// the fired entry is in the past now; re-arm with the next one
		a.scheduleGong()
	})
}

// scheduleFetch arms the daily calendar fetch at the configured wall-clock
// time, re-arming itself after each run.
func (a *Automation) scheduleFetch() {
	wait := a.untilNextFetch()
	a.logger.Debug("next fetch scheduled", slog.Duration("in", wait))
	a.timers.Start(dailyFetchTimer, wait, func() {
		a.lock.Lock()
		ctx := a.ctx
		a.lock.Unlock()
		a.fetch(ctx)
		a.scheduleGong()
		a.scheduleFetch()
	})
}

func (a *Automation) untilNextFetch() time.Duration {
	now := a.clock.Now().In(a.timezone)
	at, err := time.Parse("15:04", a.fetchTime)
	if err != nil {
		at = time.Date(0, 1, 1, 1, 0, 0, 0, time.UTC)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, a.timezone)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// fetch refreshes the course list. Failures leave the current courses in
// place: automation stays armed with what it has, reported as degraded
// through Status.
func (a *Automation) fetch(ctx context.Context) {
	fetched, fromCache, err := a.fetcher.Fetch(ctx)
	if err != nil {
		a.logger.Error("failed to fetch courses from remote and disk cache", slog.Any("err", err))
		return
	}

	a.schedule.SetCourses(fetched)
	a.lock.Lock()
	if !fromCache {
		a.lastFetch = a.clock.Now()
	}
	a.fromCache = fromCache
	a.lock.Unlock()

	source := "remote server"
	if fromCache {
		source = "disk cache"
	}
	a.logger.Info("fetched course calendar", slog.Int("courses", len(fetched)), slog.String("source", source))
}

// Status returns a snapshot for the health endpoint.
func (a *Automation) Status() Status {
	a.lock.Lock()
	status := Status{
		Enabled:   a.enabled,
		LastFetch: a.lastFetch,
		FromCache: a.fromCache,
	}
	a.lock.Unlock()

	status.Courses = len(a.schedule.Courses())
	if status.Enabled {
		if entry, ok := a.schedule.NextGong(); ok {
			status.NextGong = &entry
		}
	}
	return status
}
