package courses

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/clambin/go-common/http/metrics"
	"github.com/clambin/go-common/http/roundtripper"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dhamma-Sobhana/gong/internal/clock"
	"github.com/Dhamma-Sobhana/gong/internal/storage"
)

const searchURL = "https://www.dhamma.org/en/courses/do_search"

const (
	daysBefore = 14
	daysAfter  = 15
)

// Fetcher retrieves the course calendar for one location. A successful
// remote fetch refreshes the on-disk cache; a failed or implausible one
// falls back to it. No retries beyond the cache fallback.
type Fetcher struct {
	LocationID int
	Store      *storage.Store
	Clock      clock.Clock
	Logger     *slog.Logger
	httpClient *http.Client
	url        string
	timezone   *time.Location
}

func NewFetcher(locationID int, store *storage.Store, timezone *time.Location, c clock.Clock, registry prometheus.Registerer, logger *slog.Logger) *Fetcher {
	m := metrics.NewRequestMetrics(metrics.Options{Namespace: "gong", Subsystem: "courses"})
	registry.MustRegister(m)
	return &Fetcher{
		LocationID: locationID,
		Store:      store,
		Clock:      c,
		Logger:     logger,
		httpClient: &http.Client{
			Transport: roundtripper.New(roundtripper.WithRequestMetrics(m)),
			Timeout:   30 * time.Second,
		},
		url:      searchURL,
		timezone: timezone,
	}
}

// Fetch returns the current course list, preferring the remote service and
// falling back to the disk cache. fromCache reports which source served the
// result.
func (f *Fetcher) Fetch(ctx context.Context) (courses []Course, fromCache bool, err error) {
	body, err := f.fetchRemote(ctx)
	if err == nil {
		if courses, err = Parse(body, f.timezone); err == nil {
			if err = f.Store.WriteCourseCache(body); err != nil {
				return nil, false, err
			}
			return courses, false, nil
		}
	}
	f.Logger.Warn("remote fetch failed, falling back to disk cache", slog.Any("err", err))

	cached, ok := f.Store.ReadCourseCache()
	if !ok {
		return nil, false, fmt.Errorf("no cached calendar: %w", err)
	}
	courses, parseErr := Parse(cached, f.timezone)
	if parseErr != nil {
		return nil, false, parseErr
	}
	return courses, true, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context) ([]byte, error) {
	form := fmt.Sprintf("regions[]=%s&daterange=%s&page=1", f.location(), f.dateRange())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("course search: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if err = f.check(body); err != nil {
		return nil, err
	}
	return body, nil
}

// check validates that the response plausibly belongs to our location.
// The service is known to occasionally echo back a different location or an
// empty result set; either invalidates the response.
func (f *Fetcher) check(body []byte) error {
	doc, err := Parse(body, f.timezone)
	if err != nil {
		return err
	}
	if len(doc) == 0 {
		return fmt.Errorf("course search: no courses returned")
	}
	var echoed payload
	_ = json.Unmarshal(body, &echoed)
	if echoed.Location != "" && echoed.Location != f.location() {
		return fmt.Errorf("course search: got calendar for %q, wanted %q", echoed.Location, f.location())
	}
	return nil
}

func (f *Fetcher) location() string {
	return fmt.Sprintf("location_%d", f.LocationID)
}

// dateRange returns the search window: daysBefore back to daysAfter ahead,
// in the "from+-+to" format the search endpoint expects.
func (f *Fetcher) dateRange() string {
	now := f.Clock.Now()
	past := now.AddDate(0, 0, -daysBefore).Format(time.DateOnly)
	future := now.AddDate(0, 0, daysAfter).Format(time.DateOnly)
	return fmt.Sprintf("%s+-+%s", past, future)
}
