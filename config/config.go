package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Auth struct {
		SecretKey         string `mapstructure:"secret_key"`
		Algorithm         string `mapstructure:"algorithm"`
		AccessTTLSeconds  int    `mapstructure:"access_ttl_seconds"`
		RefreshTTLSeconds int    `mapstructure:"refresh_ttl_seconds"`
		BcryptCost        int    `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("auth.algorithm", "HS256")
	viper.SetDefault("auth.access_ttl_seconds", 900)
	viper.SetDefault("auth.refresh_ttl_seconds", 2592000)
	viper.SetDefault("auth.bcrypt_cost", 12)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
