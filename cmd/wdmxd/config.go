package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Listen  string    `mapstructure:"listen"`
	UnitID  string    `mapstructure:"unit_id"`
	Capture bool      `mapstructure:"capture"`
	Sim     SimConfig `mapstructure:"sim"`
}

// SimConfig describes the simulated transmitter wdmxd receives from. Real
// deployments link their own transport.Driver implementation instead.
type SimConfig struct {
	Channel       uint8         `mapstructure:"channel"`
	UnitID        string        `mapstructure:"unit_id"`
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

func loadConfig(path string) (*Config, error) {
	viper.SetDefault("listen", ":9348")
	viper.SetDefault("unit_id", "auto")
	viper.SetDefault("capture", false)
	viper.SetDefault("sim.channel", 42)
	viper.SetDefault("sim.unit_id", "green")
	viper.SetDefault("sim.frame_interval", "2ms")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WDMX")

	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
