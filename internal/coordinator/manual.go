package coordinator

import (
	_ "embed"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed windows.yaml
var windowsYAML []byte

// Window is a time-of-day range during which a remote button press plays
// the gong. The range is half-open: a press at exactly To falls outside.
type Window struct {
	From      string   `yaml:"from"`
	To        string   `yaml:"to"`
	Locations []string `yaml:"locations"`
	Repeat    int      `yaml:"repeat"`
}

func loadWindows() []Window {
	var windows []Window
	if err := yaml.Unmarshal(windowsYAML, &windows); err != nil {
		panic("invalid manual windows: " + err.Error())
	}
	return windows
}

// windowAt returns the window covering the given time of day, if any.
func windowAt(windows []Window, now time.Time) (Window, bool) {
	tod := now.Format("15:04")
	for _, w := range windows {
		if tod >= w.From && tod < w.To {
			return w, true
		}
	}
	return Window{}, false
}
