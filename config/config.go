package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	TCPAddress     string `mapstructure:"tcp_address"`
	WSAddress      string `mapstructure:"ws_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type GameConfig struct {
	RoomCount    int           `mapstructure:"room_count"`
	TurnTimeout  time.Duration `mapstructure:"turn_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxFrameSize int           `mapstructure:"max_frame_size"`
}

// LoadConfig reads config.yaml from path, falling back to defaults when the
// file is absent. Environment variables override file values.
func LoadConfig(path string) (config *Config, err error) {
	viper.SetDefault("server.tcp_address", "localhost:9000")
	viper.SetDefault("server.ws_address", "")
	viper.SetDefault("server.rpc_address", "localhost:9001")
	viper.SetDefault("server.monitor_address", "localhost:9100")
	viper.SetDefault("game.room_count", 4)
	viper.SetDefault("game.turn_timeout", "15s")
	viper.SetDefault("game.idle_timeout", "5m")
	viper.SetDefault("game.max_frame_size", 64*1024)

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
