package coordinator

import (
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	"github.com/clambin/go-common/charmer"
	"github.com/clambin/go-common/taskmanager"
	"github.com/clambin/go-common/taskmanager/httpserver"
	promserver "github.com/clambin/go-common/taskmanager/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dhamma-Sobhana/gong/internal/automation"
	"github.com/Dhamma-Sobhana/gong/internal/bus"
	"github.com/Dhamma-Sobhana/gong/internal/clock"
	"github.com/Dhamma-Sobhana/gong/internal/coordinator"
	"github.com/Dhamma-Sobhana/gong/internal/courses"
	"github.com/Dhamma-Sobhana/gong/internal/health"
	"github.com/Dhamma-Sobhana/gong/internal/schedule"
	"github.com/Dhamma-Sobhana/gong/internal/storage"
	"github.com/Dhamma-Sobhana/gong/internal/timer"
)

var Cmd = cobra.Command{
	Use:   "coordinator",
	Short: "coordinates gong playback across the center's devices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := charmer.GetLogger(cmd)
		m, err := New(viper.GetViper(), logger)
		if err != nil {
			return err
		}
		logger.Info("starting coordinator", "version", cmd.Root().Version)
		defer logger.Info("stopped coordinator")
		return m.Run(cmd.Context())
	},
}

func New(cfg *viper.Viper, logger *slog.Logger) (*taskmanager.Manager, error) {
	timezone, err := time.LoadLocation(cfg.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	if gongType := cfg.GetString("gong.type"); !coordinator.ValidGongType(gongType) {
		return nil, fmt.Errorf("unknown gong type %q", gongType)
	}
	tasks, err := makeTasks(cfg, timezone, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return nil, err
	}
	return taskmanager.New(tasks...), nil
}

func makeTasks(cfg *viper.Viper, timezone *time.Location, registry prometheus.Registerer, l *slog.Logger) ([]taskmanager.Task, error) {
	var tasks []taskmanager.Task

	c := clock.SystemClock{}
	store := storage.New(cfg.GetString("storage.path"))

	// Message bus
	b := bus.NewMQTTBus(cfg.GetString("mqtt.broker"), cfg.GetString("mqtt.clientId"), l.With("component", "bus"))
	tasks = append(tasks, b)

	// Device coordinator
	coord := coordinator.New(
		b,
		cfg.GetStringSlice("devices"),
		cfg.GetString("gong.type"),
		cfg.GetInt("gong.repeat"),
		timezone,
		rebootHost(l),
		c,
		registry,
		l.With("component", "coordinator"),
	)
	tasks = append(tasks, coord)

	// Course schedule
	s, err := schedule.New(store, timezone, cfg.GetInt("gong.repeat"), c, l.With("component", "schedule"))
	if err != nil {
		return nil, err
	}
	fetcher := courses.NewFetcher(
		cfg.GetInt("location.id"),
		store,
		timezone,
		c,
		registry,
		l.With("component", "fetcher"),
	)
	a := automation.New(
		func(locations []string, repeat int) { coord.PlayGong(locations, repeat, true) },
		fetcher,
		s,
		timer.New(l.With("component", "timers")),
		timezone,
		cfg.GetString("automation.fetchTime"),
		cfg.GetBool("automation.enabled"),
		c,
		l.With("component", "automation"),
	)
	tasks = append(tasks, a)

	// Prometheus server
	tasks = append(tasks, promserver.New(promserver.WithAddr(cfg.GetString("exporter.addr"))))

	// Health endpoint
	h := health.New(coord, a, b, c, l.With("component", "health"))
	tasks = append(tasks, h)
	r := http.NewServeMux()
	r.Handle("/health", h)
	tasks = append(tasks, httpserver.New(cfg.GetString("health.addr"), r))

	return tasks, nil
}

// rebootHost returns the watchdog action: reboot the host so the bus
// connection comes back up in a known state.
func rebootHost(l *slog.Logger) func() {
	return func() {
		if err := exec.Command("reboot").Run(); err != nil {
			l.Error("failed to reboot", "err", err)
		}
	}
}
