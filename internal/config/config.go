package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	APIBaseURL    string `mapstructure:"API_BASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	GeocoderURL   string `mapstructure:"GEOCODER_URL"`
	PollSeconds   int    `mapstructure:"CONNECTIVITY_POLL_SECONDS"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":7070")
	viper.SetDefault("API_BASE_URL", "https://makedarun-backend-2.onrender.com/api")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("CONNECTIVITY_POLL_SECONDS", 15)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
