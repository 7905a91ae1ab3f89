package main

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/whitelisthub/whitelist-hub/internal/agent"
)

type Config struct {
	Log   LogConfig
	Agent agent.Config
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/whitelist-hub-agent")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("agent.hub_url", "ws://localhost:8080/ws")
	viper.SetDefault("agent.server_id", "default")

	_ = viper.BindEnv("agent.hub_url", "HUB_URL")
	_ = viper.BindEnv("agent.server_id", "SERVER_ID")
	_ = viper.BindEnv("agent.api_key", "API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}

	initLogger(config.Log.Level, config.Log.Format)
}
