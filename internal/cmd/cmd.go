package cmd

import (
	"log/slog"
	"os"

	"github.com/clambin/go-common/charmer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dhamma-Sobhana/gong/internal/cmd/coordinator"
)

var (
	configFilename string
	RootCmd        = cobra.Command{
		Use:   "gong",
		Short: "Plays the gong at meditation centers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			charmer.SetJSONLogger(cmd, viper.GetBool("debug"))
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file")
	RootCmd.PersistentFlags().Bool("debug", false, "Log debug messages")
	_ = viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug"))

	RootCmd.AddCommand(&coordinator.Cmd)
}

var args = charmer.Arguments{
	"debug":                charmer.Argument{Default: false, Help: "Log debug messages"},
	"mqtt.broker":          charmer.Argument{Default: "tcp://mqtt:1883", Help: "MQTT broker to connect to"},
	"mqtt.clientId":        charmer.Argument{Default: "coordinator", Help: "MQTT client id"},
	"devices":              charmer.Argument{Default: []string{}, Help: "Device names to monitor"},
	"gong.type":            charmer.Argument{Default: "brass-bowl", Help: "Sound to play"},
	"gong.repeat":          charmer.Argument{Default: 4, Help: "Times to repeat the gong"},
	"automation.enabled":   charmer.Argument{Default: true, Help: "Play the gong on the course schedule"},
	"automation.fetchTime": charmer.Argument{Default: "01:00", Help: "Time of day to fetch the course list"},
	"location.id":          charmer.Argument{Default: 0, Help: "dhamma.org location id"},
	"timezone":             charmer.Argument{Default: "Europe/Stockholm", Help: "Time zone of the center"},
	"storage.path":         charmer.Argument{Default: "/data", Help: "Directory for settings and the course cache"},
	"exporter.addr":        charmer.Argument{Default: ":9090", Help: "Address of Prometheus exporter"},
	"health.addr":          charmer.Argument{Default: ":8080", Help: "Address of /health endpoint"},
}

func initConfig() {
	if configFilename != "" {
		viper.SetConfigFile(configFilename)
	} else {
		viper.AddConfigPath("/etc/gong/")
		viper.AddConfigPath("$HOME/.gong")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	if err := charmer.SetDefaults(viper.GetViper(), args); err != nil {
		panic("failed to set viper defaults: " + err.Error())
	}

	viper.SetEnvPrefix("GONG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Error("failed to read config file", "err", err)
		os.Exit(1)
	}
}
