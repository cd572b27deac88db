package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable pool_max_conns=10",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type PriceAPI struct {
	BaseURL string `mapstructure:"base_url"`
}

type Rates struct {
	StalenessSeconds int `mapstructure:"staleness_seconds"`
}

type Payout struct {
	Provider    string  `mapstructure:"provider"`
	SuccessRate float64 `mapstructure:"success_rate"`
}

type Scheduler struct {
	SweepIntervalSec int `mapstructure:"sweep_interval_sec"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	PriceAPI   PriceAPI   `mapstructure:"price_api"`
	Rates      Rates      `mapstructure:"rates"`
	Payout     Payout     `mapstructure:"payout"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Logging    Logging    `mapstructure:"logging"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	viper.SetConfigFile("config.yaml")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	viper.SetDefault("db_server.max_conns", 10)
	viper.SetDefault("http_client.timeout_seconds", 10)
	viper.SetDefault("price_api.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("rates.staleness_seconds", 300)
	viper.SetDefault("payout.provider", "internal")
	viper.SetDefault("payout.success_rate", 0.95)
	viper.SetDefault("scheduler.sweep_interval_sec", 60)
	viper.SetDefault("logging.level", "info")

	// db server env vars
	_ = viper.BindEnv("db_server.host", "DB_HOST")
	_ = viper.BindEnv("db_server.port", "DB_PORT")
	_ = viper.BindEnv("db_server.user", "DB_USER")
	_ = viper.BindEnv("db_server.pass", "DB_PASS")
	_ = viper.BindEnv("db_server.name", "DB_NAME")
	_ = viper.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// http client env vars
	_ = viper.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// pricing and payout env vars
	_ = viper.BindEnv("price_api.base_url", "PRICE_API_BASE_URL")
	_ = viper.BindEnv("payout.provider", "PAYOUT_PROVIDER")
	_ = viper.BindEnv("payout.success_rate", "PAYOUT_SUCCESS_RATE")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
