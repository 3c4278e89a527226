package config

import (
	"fmt"
	"time"

	"github.com/blossomshop/payments/pkg/mpesa"
	"github.com/blossomshop/payments/pkg/mq"
	"github.com/blossomshop/payments/pkg/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	API      API          `mapstructure:"api"`
	Auth     Auth         `mapstructure:"auth"`
	Database mysql.Config `mapstructure:"database"`
	Mpesa    mpesa.Config `mapstructure:"mpesa"`
	RabbitMQ mq.Config    `mapstructure:"rabbitmq"`
	Session  Session      `mapstructure:"session"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Session tunes the client-side waiting loop; the API service ignores it.
type Session struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
