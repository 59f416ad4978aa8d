package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port         string
		RateLimit    int
		DefaultLimit int
	}
	Generator struct {
		MinDelay    time.Duration
		MaxDelay    time.Duration
		CallTimeout time.Duration
	}
	History struct {
		MinDelay time.Duration
		MaxDelay time.Duration
	}
	Redis struct {
		URL      string
		CacheTTL time.Duration
	}
	OpenAI struct {
		APIKey  string
		BaseURL string
	}
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	var config Config

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.ratelimit", 60)
	viper.SetDefault("server.defaultlimit", 5)
	viper.SetDefault("generator.mindelay", "1500ms")
	viper.SetDefault("generator.maxdelay", "2500ms")
	viper.SetDefault("generator.calltimeout", "30s")
	viper.SetDefault("history.mindelay", "300ms")
	viper.SetDefault("history.maxdelay", "800ms")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.cachettl", "5m")
	viper.SetDefault("openai.baseurl", "https://api.openai.com/v1")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	config.Server.Port = viper.GetString("server.port")
	config.Server.RateLimit = viper.GetInt("server.ratelimit")
	config.Server.DefaultLimit = viper.GetInt("server.defaultlimit")
	config.Generator.MinDelay = viper.GetDuration("generator.mindelay")
	config.Generator.MaxDelay = viper.GetDuration("generator.maxdelay")
	config.Generator.CallTimeout = viper.GetDuration("generator.calltimeout")
	config.History.MinDelay = viper.GetDuration("history.mindelay")
	config.History.MaxDelay = viper.GetDuration("history.maxdelay")
	config.Redis.URL = viper.GetString("redis.url")
	config.Redis.CacheTTL = viper.GetDuration("redis.cachettl")
	config.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		config.OpenAI.BaseURL = url
	} else {
		config.OpenAI.BaseURL = viper.GetString("openai.baseurl")
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Generator.MinDelay > c.Generator.MaxDelay {
		return fmt.Errorf("generator.mindelay must not exceed generator.maxdelay")
	}
	if c.History.MinDelay > c.History.MaxDelay {
		return fmt.Errorf("history.mindelay must not exceed history.maxdelay")
	}
	if c.Server.DefaultLimit <= 0 {
		return fmt.Errorf("server.defaultlimit must be positive")
	}
	return nil
}
