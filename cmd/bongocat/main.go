package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/bongocat/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "bongocat",
	Short:         "A desktop cat that taps along with your keyboard and mouse",
	Long:          "bongocat runs a small always-on-top cat window that animates on input, remembers where you put it for each application, and can be controlled over IPC or MCP.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: $"+config.ConfigEnv+" or ~/.config/bongocat/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the --config file when given, otherwise the default
// location. A missing file yields the defaults.
func loadConfig() (*config.LoadResult, error) {
	if configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(configPath)
}
