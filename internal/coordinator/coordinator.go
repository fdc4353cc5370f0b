package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/clambin/go-common/set"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dhamma-Sobhana/gong/internal/bus"
	"github.com/Dhamma-Sobhana/gong/internal/clock"
	"github.com/Dhamma-Sobhana/gong/internal/timer"
	"github.com/Dhamma-Sobhana/gong/pkg/pubsub"
)

const (
	statusInterval  = time.Minute
	ackTimeout      = 5 * time.Second
	watchdogTimeout = 10 * time.Minute

	ackTimer      = "gong-ack"
	watchdogTimer = "watchdog"
)

// Summary is a snapshot of the coordinator, published whenever a device or
// the play state changes and served to anyone who asks.
type Summary struct {
	Devices []Device     `json:"devices"`
	Counts  StatusCounts `json:"counts"`
	Playing bool         `json:"playing"`
	Enabled bool         `json:"enabled"`
}

// Coordinator drives the devices on the message bus: it tracks their
// health from heartbeats, plays and stops the gong, reacts to remote
// button presses and reboots the host if the bus goes silent.
type Coordinator struct {
	bus      bus.Bus
	registry *Registry
	timers   *timer.Timers
	clock    clock.Clock
	notifier *pubsub.Publisher[Summary]
	reboot   func()
	logger   *slog.Logger

	gongType      string
	defaultRepeat int
	timezone      *time.Location
	windows       []Window

	playsTotal       *prometheus.CounterVec
	ackTimeoutsTotal prometheus.Counter
	watchdogReboots  prometheus.Counter

	lock    sync.Mutex
	enabled bool
	playing bool
}

func New(
	b bus.Bus,
	deviceNames []string,
	gongType string,
	defaultRepeat int,
	timezone *time.Location,
	reboot func(),
	c clock.Clock,
	reg prometheus.Registerer,
	logger *slog.Logger,
) *Coordinator {
	coord := Coordinator{
		bus:           b,
		registry:      NewRegistry(deviceNames, c),
		timers:        timer.New(logger.With("component", "timers")),
		clock:         c,
		notifier:      pubsub.New[Summary](logger.With("component", "notifier")),
		reboot:        reboot,
		logger:        logger,
		gongType:      gongType,
		defaultRepeat: defaultRepeat,
		timezone:      timezone,
		windows:       loadWindows(),
		enabled:       true,
		playsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gong_plays_total",
			Help: "Number of times the gong was played, by trigger",
		}, []string{"trigger"}),
		ackTimeoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gong_play_ack_timeouts_total",
			Help: "Number of plays no device acknowledged in time",
		}),
		watchdogReboots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gong_watchdog_reboots_total",
			Help: "Number of reboots triggered by bus silence",
		}),
	}
	if reg != nil {
		reg.MustRegister(coord.playsTotal, coord.ackTimeoutsTotal, coord.watchdogReboots, &collector{coordinator: &coord})
	}
	b.Subscribe(coord.handleMessage)
	return &coord
}

// Run pings the devices and refreshes their statuses once a minute until
// the context is canceled.
func (c *Coordinator) Run(ctx context.Context) error {
	c.logger.Debug("starting coordinator")
	defer c.logger.Debug("stopped coordinator")

	c.timers.Start(watchdogTimer, watchdogTimeout, c.watchdogExpired)
	c.ping()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.timers.CancelAll()
			return nil
		case <-ticker.C:
			c.ping()
			if c.registry.UpdateStatuses() {
				c.notify()
			}
		}
	}
}

// Subscribe registers a listener for summary updates. Unsubscribe must be
// called when the listener is done.
func (c *Coordinator) Subscribe() chan Summary {
	return c.notifier.Subscribe()
}

func (c *Coordinator) Unsubscribe(ch chan Summary) {
	c.notifier.Unsubscribe(ch)
}

// Status returns the current summary.
func (c *Coordinator) Status() Summary {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.summary()
}

func (c *Coordinator) summary() Summary {
	return Summary{
		Devices: c.registry.Devices(),
		Counts:  c.registry.Counts(),
		Playing: c.playing,
		Enabled: c.enabled,
	}
}

func (c *Coordinator) notify() {
	c.lock.Lock()
	summary := c.summary()
	c.lock.Unlock()
	c.notifier.Publish(summary)
}

// Enable turns gong playback on or off. While disabled, both automatic and
// manual plays are ignored.
func (c *Coordinator) Enable(enabled bool) {
	c.lock.Lock()
	c.enabled = enabled
	c.lock.Unlock()
	c.logger.Info("gong playback", "enabled", enabled)
	c.notify()
}

func (c *Coordinator) Enabled() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.enabled
}

// DisableDevice marks a device as disabled. Disabled devices keep their
// status until they are enabled again.
func (c *Coordinator) DisableDevice(name string, disabled bool) {
	if disabled {
		c.registry.SetStatus(name, StatusDisabled)
	} else {
		c.registry.SetStatus(name, StatusFailed)
		c.ping()
	}
	c.notify()
}

// PlayGong plays the gong in the given locations, or stops it when a
// manual trigger arrives while the gong is already playing. Nothing
// happens while playback is disabled or no player is reachable.
func (c *Coordinator) PlayGong(locations []string, repeat int, automatic bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.enabled {
		c.logger.Info("gong disabled; not playing", "locations", locations)
		return
	}
	if c.playing {
		if automatic {
			c.logger.Warn("gong already playing; skipping scheduled play")
			return
		}
		c.stopLocked()
		return
	}
	if c.playersFor(locations) == 0 {
		c.logger.Warn("no active players; not playing", "locations", locations)
		return
	}

	if repeat <= 0 {
		repeat = c.defaultRepeat
	}
	trigger := "manual"
	if automatic {
		trigger = "automatic"
	}
	c.logger.Info("playing gong", "locations", locations, "repeat", repeat, "trigger", trigger)
	if err := c.bus.Publish(bus.TopicPlay, bus.Play{Type: c.gongType, Locations: locations, Repeat: repeat}); err != nil {
		c.logger.Error("failed to publish play", "err", err)
		return
	}
	c.playing = true
	c.playsTotal.WithLabelValues(trigger).Inc()
	c.timers.Start(ackTimer, ackTimeout, c.ackExpired)
	go c.notify()
}

// Stop stops a playing gong.
func (c *Coordinator) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.playing {
		c.stopLocked()
	}
}

// stopLocked publishes a stop and clears the play state. The caller holds
// the lock.
func (c *Coordinator) stopLocked() {
	c.logger.Info("stopping gong")
	c.timers.Cancel(ackTimer)
	if err := c.bus.Publish(bus.TopicStop, nil); err != nil {
		c.logger.Error("failed to publish stop", "err", err)
	}
	c.playing = false
	go c.notify()
}

// playersFor counts OK players that serve at least one of the requested
// locations. The caller holds the lock.
func (c *Coordinator) playersFor(locations []string) int {
	requested := set.New[string](locations...)
	var count int
	for _, device := range c.registry.Devices() {
		if device.Type != "player" || device.Status != StatusOK {
			continue
		}
		if requested.Contains("all") || covers(device.Locations, requested) {
			count++
		}
	}
	return count
}

func covers(locations []string, requested set.Set[string]) bool {
	for _, location := range locations {
		if location == "all" || requested.Contains(location) {
			return true
		}
	}
	return false
}

func (c *Coordinator) ackExpired() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.playing {
		return
	}
	c.logger.Error("no device confirmed playing; stopping")
	c.ackTimeoutsTotal.Inc()
	c.stopLocked()
}

func (c *Coordinator) handleMessage(msg bus.Message) {
	c.timers.Start(watchdogTimer, watchdogTimeout, c.watchdogExpired)

	switch m := msg.(type) {
	case bus.Pong:
		c.logger.Debug("device reported in", "name", m.Name, "type", m.Type)
		c.registry.Heartbeat(m)
		c.notify()
	case bus.Playing:
		c.logger.Debug("device playing", "name", m.Name)
		c.timers.Cancel(ackTimer)
		c.registry.SetState(m.Name, StatePlaying)
		c.notify()
	case bus.Played:
		c.logger.Debug("device finished playing", "name", m.Name)
		c.registry.SetState(m.Name, StatePlayed)
		c.lock.Lock()
		if c.playing {
			c.stopLocked()
		}
		c.lock.Unlock()
		c.notify()
	case bus.Activated:
		c.registry.SetState(m.Name, StateActivated)
		c.remoteActivated(m.Name)
	}
}

// remoteActivated handles a button press on a remote. Outside the manual
// windows the press is ignored.
func (c *Coordinator) remoteActivated(name string) {
	now := c.clock.Now().In(c.timezone)
	window, ok := windowAt(c.windows, now)
	if !ok {
		c.logger.Info("remote activated outside manual hours; ignoring", "name", name)
		return
	}
	c.logger.Info("remote activated", "name", name, "locations", window.Locations)
	c.PlayGong(window.Locations, window.Repeat, false)
}

func (c *Coordinator) ping() {
	if err := c.bus.Publish(bus.TopicPing, nil); err != nil {
		c.logger.Error("failed to publish ping", "err", err)
	}
}

func (c *Coordinator) watchdogExpired() {
	c.logger.Error("no bus traffic; rebooting")
	c.watchdogReboots.Inc()
	if c.reboot != nil {
		c.reboot()
	}
}
