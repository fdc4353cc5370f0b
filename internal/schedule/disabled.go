package schedule

import "time"

// DisabledEntries is the set of entry timestamps that have been manually
// suppressed. The set is persisted in the settings file; entries in the past
// can never fire again and are pruned on every write.
type DisabledEntries struct {
	entries []time.Time
}

func NewDisabledEntries(entries ...time.Time) *DisabledEntries {
	return &DisabledEntries{entries: entries}
}

// Update adds the timestamp when active is false and removes it when active
// is true.
func (d *DisabledEntries) Update(t time.Time, active bool) {
	if active {
		kept := make([]time.Time, 0, len(d.entries))
		for _, entry := range d.entries {
			if !entry.Equal(t) {
				kept = append(kept, entry)
			}
		}
		d.entries = kept
		return
	}
	if !d.Contains(t) {
		d.entries = append(d.entries, t)
	}
}

func (d *DisabledEntries) Contains(t time.Time) bool {
	for _, entry := range d.entries {
		if entry.Equal(t) {
			return true
		}
	}
	return false
}

// Cleanup drops entries older than now.
func (d *DisabledEntries) Cleanup(now time.Time) {
	kept := make([]time.Time, 0, len(d.entries))
	for _, entry := range d.entries {
		if entry.After(now) {
			kept = append(kept, entry)
		}
	}
	d.entries = kept
}

// Times returns the timestamps in the set.
func (d *DisabledEntries) Times() []time.Time {
	result := make([]time.Time, len(d.entries))
	copy(result, d.entries)
	return result
}
