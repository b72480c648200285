/*
 * Copyright 2024 Canonical Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads service configuration from an optional JSON file
// with environment variable overrides.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/canonical/hwapi/pkg/logger"
)

const defaultC3URL = "https://certification.canonical.com"

var errMissingDBURL = errors.New("db_url is required (set DB_URL or provide a config file)")

// Config is the full service configuration shared by the server and the
// importer.
type Config struct {
	ListenAddr string        `json:"listen_addr"`
	DBURL      string        `json:"db_url"`
	C3URL      string        `json:"c3_url"`
	Logging    logger.Config `json:"logging"`
}

// Load reads the JSON config at path (if path is non-empty), then applies
// environment overrides and defaults. The file is optional; the environment
// alone is a complete configuration source.
func Load(_ context.Context, path string, cfg *Config) error {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %q: %w", path, err)
		}

		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg.Validate()
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_URL"); v != "" {
		cfg.DBURL = v
	}

	if v := os.Getenv("C3_URL"); v != "" {
		cfg.C3URL = v
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.C3URL == "" {
		cfg.C3URL = defaultC3URL
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
}

// Validate reports configuration that cannot serve.
func (c *Config) Validate() error {
	if c.DBURL == "" {
		return errMissingDBURL
	}

	return nil
}
