package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	PingIntervalSecs int `env:"PING_INTERVAL" envDefault:"20"`
	MaxWaitingSecs   int `env:"MAX_WAITING" envDefault:"10"`
	AIMoveDelaySecs  int `env:"AI_MOVE_DELAY" envDefault:"3"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c ServerConfig) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalSecs) * time.Second
}

func (c ServerConfig) MaxWaiting() time.Duration {
	return time.Duration(c.MaxWaitingSecs) * time.Second
}

func (c ServerConfig) AIMoveDelay() time.Duration {
	return time.Duration(c.AIMoveDelaySecs) * time.Second
}
