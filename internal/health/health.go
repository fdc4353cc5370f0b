// Package health serves an aggregated health report over HTTP, for use as
// a container health check.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Dhamma-Sobhana/gong/internal/automation"
	"github.com/Dhamma-Sobhana/gong/internal/clock"
	"github.com/Dhamma-Sobhana/gong/internal/coordinator"
)

// a fetch runs daily; past this age the course list is considered stale
const staleFetchAfter = 25 * time.Hour

// Devices publishes device summaries.
type Devices interface {
	Subscribe() chan coordinator.Summary
	Unsubscribe(chan coordinator.Summary)
	Status() coordinator.Summary
}

// Automation reports the scheduling state.
type Automation interface {
	Status() automation.Status
}

// Bus reports the connection to the message broker.
type Bus interface {
	Connected() bool
}

// Report is the JSON document served to health checks.
type Report struct {
	Status       string                   `json:"status"`
	Reasons      []string                 `json:"reasons,omitempty"`
	BusConnected bool                     `json:"busConnected"`
	Devices      []coordinator.Device     `json:"devices"`
	Counts       coordinator.StatusCounts `json:"counts"`
	Playing      bool                     `json:"playing"`
	Enabled      bool                     `json:"enabled"`
	Automation   automation.Status        `json:"automation"`
}

type Health struct {
	devices    Devices
	automation Automation
	bus        Bus
	clock      clock.Clock
	logger     *slog.Logger

	lock    sync.RWMutex
	summary coordinator.Summary
}

func New(devices Devices, a Automation, bus Bus, c clock.Clock, logger *slog.Logger) *Health {
	return &Health{
		devices:    devices,
		automation: a,
		bus:        bus,
		clock:      c,
		logger:     logger,
		summary:    devices.Status(),
	}
}

func (h *Health) Run(ctx context.Context) error {
	h.logger.Debug("started")
	defer h.logger.Debug("stopped")

	ch := h.devices.Subscribe()
	defer h.devices.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case summary := <-ch:
			h.lock.Lock()
			h.summary = summary
			h.lock.Unlock()
		}
	}
}

// Report builds the current health report.
func (h *Health) Report() Report {
	h.lock.RLock()
	summary := h.summary
	h.lock.RUnlock()

	report := Report{
		Status:       "ok",
		BusConnected: h.bus.Connected(),
		Devices:      summary.Devices,
		Counts:       summary.Counts,
		Playing:      summary.Playing,
		Enabled:      summary.Enabled,
		Automation:   h.automation.Status(),
	}

	if !report.BusConnected {
		report.Status = "failed"
		report.Reasons = append(report.Reasons, "not connected to the message broker")
	}
	if summary.Counts.OK == 0 {
		report.Status = "failed"
		report.Reasons = append(report.Reasons, "no devices reporting in")
	} else if down := summary.Counts.Warning + summary.Counts.Failed; down > 0 {
		if report.Status == "ok" {
			report.Status = "warning"
		}
		report.Reasons = append(report.Reasons, fmt.Sprintf("%d of %d devices not reporting in", down, len(summary.Devices)))
	}
	if a := report.Automation; a.Enabled {
		reason := ""
		if a.LastFetch.IsZero() {
			reason = "no course list fetched yet"
		} else if age := h.clock.Now().Sub(a.LastFetch); age > staleFetchAfter {
			reason = fmt.Sprintf("course list is %s old", age.Round(time.Hour))
		}
		if reason != "" {
			if report.Status == "ok" {
				report.Status = "warning"
			}
			report.Reasons = append(report.Reasons, reason)
		}
	}
	return report
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	report := h.Report()

	w.Header().Set("Content-Type", "application/json")
	if report.Status == "failed" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		h.logger.Error("failed to write health report", "err", err)
	}
}
