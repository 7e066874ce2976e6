/*
 * Copyright 2025 Carver Automation Corporation.
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

// Package logger builds zerolog JSON loggers whose output can be mirrored to
// an OTLP log collector, and owns the OTLP metric pipeline.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const outputStderr = "stderr"

type Config struct {
	Level      string     `json:"level" yaml:"level"`
	Debug      bool       `json:"debug" yaml:"debug"`
	Output     string     `json:"output" yaml:"output"`
	TimeFormat string     `json:"time_format" yaml:"time_format"`
	OTel       OTelConfig `json:"otel" yaml:"otel"`
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// New builds the logger for one component. A nil config uses DefaultConfig.
// When config.OTel is enabled every line is also exported over OTLP.
func New(ctx context.Context, component string, config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var base io.Writer = os.Stdout
	if config.Output == outputStderr {
		base = os.Stderr
	}

	return newLogger(ctx, component, config, base)
}

func newLogger(ctx context.Context, component string, config *Config, base io.Writer) (Logger, error) {
	level, err := config.level()
	if err != nil {
		return nil, err
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	output := base

	if config.OTel.Enabled && config.OTel.Endpoint != "" {
		otelWriter, err := NewOTelWriter(ctx, config.OTel)
		if err != nil {
			return nil, err
		}

		output = zerolog.MultiLevelWriter(base, otelWriter)
	}

	zctx := zerolog.New(output).Level(level).With().Timestamp()
	if component != "" {
		zctx = zctx.Str("component", component)
	}

	return Wrap(zctx.Logger()), nil
}

func (c *Config) level() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	if c.Level == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	return level, nil
}

// Shutdown flushes the OTLP log and metric pipelines.
func Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return installed.shutdown(ctx)
}
