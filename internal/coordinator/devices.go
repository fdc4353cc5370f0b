package coordinator

import (
	"sync"
	"time"

	"github.com/Dhamma-Sobhana/gong/internal/bus"
	"github.com/Dhamma-Sobhana/gong/internal/clock"
)

// Status is a device's health, derived from time since its last heartbeat.
// Disabled is explicit and sticky: the status timer never promotes or
// demotes a disabled device.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusDisabled Status = "disabled"
)

// State is the last reported activity of a device.
type State string

const (
	StateUnknown     State = "unknown"
	StatePlaying     State = "playing"
	StatePlayed      State = "played"
	StateActivated   State = "activated"
	StateDeactivated State = "deactivated"
	StateWaiting     State = "waiting"
)

const (
	warningAfter = 2 * time.Minute
	failedAfter  = 10 * time.Minute
)

// Device tracks one playback or remote device seen on the bus.
type Device struct {
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	Locations []string  `json:"locations,omitempty"`
	LastSeen  time.Time `json:"lastSeen"`
	Status    Status    `json:"status"`
	State     State     `json:"state"`

	// transient marks devices that were not configured but showed up on
	// the bus; they are dropped again once they go quiet
	transient bool
}

// StatusCounts aggregates the number of devices per status.
type StatusCounts struct {
	OK       int `json:"ok"`
	Warning  int `json:"warning"`
	Failed   int `json:"failed"`
	Disabled int `json:"disabled"`
}

// Registry holds the list of known devices. Configured devices are created
// at startup and never destroyed; devices observed on the bus without being
// configured are kept only while they keep reporting.
type Registry struct {
	clock clock.Clock

	lock    sync.Mutex
	devices []*Device
}

func NewRegistry(names []string, c clock.Clock) *Registry {
	r := Registry{clock: c}
	for _, name := range names {
		if name == "" {
			continue
		}
		r.devices = append(r.devices, &Device{Name: name, Status: StatusFailed, State: StateUnknown})
	}
	return &r
}

// Heartbeat updates a device from a pong message, creating a transient
// entry for a device name that was never configured.
func (r *Registry) Heartbeat(pong bus.Pong) {
	if pong.Name == "" {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	device := r.find(pong.Name)
	if device == nil {
		device = &Device{Name: pong.Name, State: StateUnknown, transient: true}
		r.devices = append(r.devices, device)
	}
	if pong.Type != "" {
		device.Type = pong.Type
	}
	if pong.Locations != nil {
		device.Locations = pong.Locations
	}
	if pong.Status != "" {
		device.State = State(pong.Status)
	}
	device.LastSeen = r.clock.Now()
	if device.Status != StatusDisabled {
		device.Status = StatusOK
	}
}

// SetState records the device's last reported activity.
func (r *Registry) SetState(name string, state State) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if device := r.find(name); device != nil {
		device.State = state
	}
}

// SetStatus sets a device's status explicitly, used to disable (and
// re-enable) a device.
func (r *Registry) SetStatus(name string, status Status) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if device := r.find(name); device != nil {
		device.Status = status
	}
}

func (r *Registry) find(name string) *Device {
	for _, device := range r.devices {
		if device.Name == name {
			return device
		}
	}
	return nil
}

// UpdateStatuses demotes devices based on time since their last heartbeat
// and drops transient devices that aged past the warning threshold without
// reappearing. It reports whether any device changed.
func (r *Registry) UpdateStatuses() bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := r.clock.Now()
	var changed bool
	kept := make([]*Device, 0, len(r.devices))
	for _, device := range r.devices {
		silent := now.Sub(device.LastSeen)
		if device.transient && !device.LastSeen.IsZero() && silent >= warningAfter {
			changed = true
			continue
		}
		kept = append(kept, device)

		if device.Status == StatusDisabled || device.LastSeen.IsZero() {
			continue
		}
		status := StatusOK
		switch {
		case silent >= failedAfter:
			status = StatusFailed
		case silent >= warningAfter:
			status = StatusWarning
		}
		if device.Status != status {
			device.Status = status
			changed = true
		}
	}
	r.devices = kept
	return changed
}

// Devices returns a copy of the device list.
func (r *Registry) Devices() []Device {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := make([]Device, 0, len(r.devices))
	for _, device := range r.devices {
		result = append(result, *device)
	}
	return result
}

// Counts aggregates the devices per status.
func (r *Registry) Counts() StatusCounts {
	var counts StatusCounts
	for _, device := range r.Devices() {
		switch device.Status {
		case StatusOK:
			counts.OK++
		case StatusWarning:
			counts.Warning++
		case StatusFailed:
			counts.Failed++
		case StatusDisabled:
			counts.Disabled++
		}
	}
	return counts
}

// ActivePlayers returns the number of player devices currently reporting OK.
func (r *Registry) ActivePlayers() int {
	var count int
	for _, device := range r.Devices() {
		if device.Type == "player" && device.Status == StatusOK {
			count++
		}
	}
	return count
}
