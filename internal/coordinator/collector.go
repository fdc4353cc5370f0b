package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	deviceStatusDesc = prometheus.NewDesc(
		prometheus.BuildFQName("gong", "device", "status"),
		"Device status. 1 if the device reports in on time",
		[]string{"name", "type", "status"},
		nil,
	)

	playingDesc = prometheus.NewDesc(
		prometheus.BuildFQName("gong", "", "playing"),
		"1 while a gong is playing",
		nil,
		nil,
	)

	enabledDesc = prometheus.NewDesc(
		prometheus.BuildFQName("gong", "", "enabled"),
		"1 while gong playback is enabled",
		nil,
		nil,
	)
)

// collector exposes the coordinator's current state as prometheus metrics.
type collector struct {
	coordinator *Coordinator
}

var _ prometheus.Collector = &collector{}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- deviceStatusDesc
	ch <- playingDesc
	ch <- enabledDesc
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	summary := c.coordinator.Status()
	for _, device := range summary.Devices {
		var value float64
		if device.Status == StatusOK {
			value = 1
		}
		ch <- prometheus.MustNewConstMetric(deviceStatusDesc, prometheus.GaugeValue, value,
			device.Name, device.Type, string(device.Status),
		)
	}
	ch <- prometheus.MustNewConstMetric(playingDesc, prometheus.GaugeValue, boolToFloat(summary.Playing))
	ch <- prometheus.MustNewConstMetric(enabledDesc, prometheus.GaugeValue, boolToFloat(summary.Enabled))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
