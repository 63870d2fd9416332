package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"

	"github.com/hliosone/legacyx/internal/domain"
)

type Config struct {
	Provider Provider      `yaml:"provider"`
	Backend  Backend       `yaml:"backend"`
	Flows    domain.Config `yaml:"flows"`
	Server   Server        `yaml:"server"`
}

type Provider struct {
	APIKey string `yaml:"apiKey"`
	URL    string `yaml:"url"`
}

type Backend struct {
	URL string `yaml:"url"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

const (
	defaultFeeAmount          = 5
	defaultActivationAmount   = 20
	defaultSettleAwaitSeconds = 900
)

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if v, ok := os.LookupEnv("LEGACYX_PROVIDER_API_KEY"); ok && v != "" {
		config.Provider.APIKey = v
	}
	if v, ok := os.LookupEnv("LEGACYX_BACKEND_URL"); ok && v != "" {
		config.Backend.URL = v
	}

	if config.Flows.FeeAmount == 0 {
		config.Flows.FeeAmount = defaultFeeAmount
	}
	if config.Flows.ActivationAmount == 0 {
		config.Flows.ActivationAmount = defaultActivationAmount
	}
	if config.Flows.SettleAwaitSeconds == 0 {
		config.Flows.SettleAwaitSeconds = defaultSettleAwaitSeconds
	}
	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	if config.Provider.URL == "" {
		return Config{}, fmt.Errorf("provider url is required")
	}
	if config.Backend.URL == "" {
		return Config{}, fmt.Errorf("backend url is required")
	}

	return config, nil
}
