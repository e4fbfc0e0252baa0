package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines tool configuration.
type Config struct {
	Stack  StackConfig  `yaml:"stack"`
	Search SearchConfig `yaml:"search"`
	DB     DBConfig     `yaml:"db"`
	OMERO  OMEROConfig  `yaml:"omero"`
	Log    LogConfig    `yaml:"log"`
}

type StackConfig struct {
	Dir string `yaml:"dir"`
}

type SearchConfig struct {
	Radius int `yaml:"radius"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type OMEROConfig struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	ImageID int64  `yaml:"image_id"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Search: SearchConfig{
			Radius: 5,
		},
		DB: DBConfig{
			Path: "foci.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("FOCI_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dir := os.Getenv("FOCI_STACK_DIR"); dir != "" {
		cfg.Stack.Dir = dir
	}
	if radiusStr := os.Getenv("FOCI_SEARCH_RADIUS"); radiusStr != "" {
		radius, err := strconv.Atoi(radiusStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FOCI_SEARCH_RADIUS: %w", err)
		}
		cfg.Search.Radius = radius
	}
	if dbPath := os.Getenv("FOCI_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if url := os.Getenv("FOCI_OMERO_URL"); url != "" {
		cfg.OMERO.URL = url
	}
	if token := os.Getenv("FOCI_OMERO_TOKEN"); token != "" {
		cfg.OMERO.Token = token
	}
	if idStr := os.Getenv("FOCI_OMERO_IMAGE_ID"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FOCI_OMERO_IMAGE_ID: %w", err)
		}
		cfg.OMERO.ImageID = id
	}
	if level := os.Getenv("FOCI_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Search.Radius < 1 {
		return Config{}, fmt.Errorf("search radius must be positive, got %d", cfg.Search.Radius)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
