// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/microsoft/agentkit/redisstore"
	"github.com/microsoft/agentkit/telemetry"
)

// Config holds the full server configuration, loaded from a YAML file
// with environment variable overrides for secrets.
type Config struct {
	Listen string `yaml:"listen"`
	APIKey string `yaml:"api_key"`

	Agent struct {
		Name         string `yaml:"name"`
		Description  string `yaml:"description"`
		Instructions string `yaml:"instructions"`
	} `yaml:"agent"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"openai"`

	Telemetry telemetry.Config `yaml:"telemetry"`

	Redis struct {
		Enabled           bool `yaml:"enabled"`
		redisstore.Config `yaml:",inline"`
	} `yaml:"redis"`
}

// LoadConfig reads the YAML file at path. A missing file is not an error;
// defaults and environment variables still apply.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" && c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("AGENT_API_KEY"); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" && c.Redis.Address == "" {
		c.Redis.Address = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" && c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = v
	}
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Agent.Name == "" {
		c.Agent.Name = "assistant"
	}
	if c.Agent.Description == "" {
		c.Agent.Description = "A helpful assistant with weather, calculator, and time tools."
	}
	if c.Agent.Instructions == "" {
		c.Agent.Instructions = "You are a helpful assistant. Use the get_weather tool for weather questions, " +
			"the calculator tools for arithmetic, and the get_time tool for the current time. Keep responses concise."
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "agentkit-server"
	}
	if c.Telemetry.SamplingRate == 0 {
		c.Telemetry.SamplingRate = 1.0
	}
}
