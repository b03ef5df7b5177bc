package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type config struct {
	Database databaseConfig `yaml:"database"`
	Web      webConfig      `yaml:"web"`
	Log      logConfig      `yaml:"log"`
	Sources  []sourceConfig `yaml:"sources"`
}

type databaseConfig struct {
	Path string `yaml:"path"`
}

type webConfig struct {
	Address           string `yaml:"address"`
	DisableRequestLog bool   `yaml:"disable_request_log"`
}

type logConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type sourceConfig struct {
	Id             string `yaml:"id"`
	Directory      string `yaml:"directory"`
	Watch          bool   `yaml:"watch"`
	Workers        int    `yaml:"workers"`
	RescanDelay    int    `yaml:"rescan_delay"`
	DisableLoadLog bool   `yaml:"disable_load_log"`
}

const (
	defaultDatabasePath = "shapes.db"
	defaultLogLevel     = "info"
)

func loadConfig(path string) (*config, error) {
	var configContent []byte
	{
		f, err := os.OpenFile(path, os.O_RDONLY, 0)

		if err != nil {
			return nil, err
		}

		defer f.Close()

		configContent, err = io.ReadAll(f)

		if err != nil {
			return nil, err
		}
	}

	var c config
	err := yaml.Unmarshal(configContent, &c)

	if err != nil {
		return nil, err
	}

	if err = c.applyDefaults(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *config) applyDefaults() error {
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	seen := make(map[string]bool)

	for i := range c.Sources {
		s := &c.Sources[i]

		if s.Directory == "" {
			return fmt.Errorf("source %d: directory is required", i)
		}

		if s.Id == "" {
			s.Id = s.Directory
		}

		if seen[s.Id] {
			return fmt.Errorf("source %d: duplicate id %q", i, s.Id)
		}

		seen[s.Id] = true

		if s.Workers < 1 {
			s.Workers = 1
		}
	}

	return nil
}
