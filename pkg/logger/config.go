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

package logger

import (
	"os"
	"strings"
	"time"

	"github.com/carverauto/fleetradar/pkg/models"
)

// Signal selects which OTEL_EXPORTER_OTLP_<SIGNAL>_* variables apply.
type Signal string

const (
	SignalLogs    Signal = "LOGS"
	SignalMetrics Signal = "METRICS"
)

// DefaultConfig is the logging configuration used when the config file has no
// logging block, with environment overrides applied.
func DefaultConfig() *Config {
	c := &Config{
		Level:  "info",
		Output: "stdout",
		OTel:   OTelConfig{ServiceName: defaultServiceName},
	}
	c.ApplyEnv()

	return c
}

// ApplyEnv overlays LOG_LEVEL, DEBUG, LOG_OUTPUT, LOG_TIME_FORMAT and the
// OTLP log exporter variables onto c. Unset variables leave c untouched.
func (c *Config) ApplyEnv() {
	c.Level = envString(c.Level, "LOG_LEVEL")
	c.Debug = envBool(c.Debug, "DEBUG")
	c.Output = envString(c.Output, "LOG_OUTPUT")
	c.TimeFormat = envString(c.TimeFormat, "LOG_TIME_FORMAT")
	c.OTel.ApplyEnv(SignalLogs)
}

// ApplyEnv overlays the OTLP exporter variables for signal. A signal-specific
// variable such as OTEL_EXPORTER_OTLP_METRICS_ENDPOINT wins over the shared
// OTEL_EXPORTER_OTLP_ENDPOINT.
func (o *OTelConfig) ApplyEnv(signal Signal) {
	otlp := func(name string) []string {
		return []string{"OTEL_EXPORTER_OTLP_" + string(signal) + "_" + name, "OTEL_EXPORTER_OTLP_" + name}
	}

	o.Enabled = envBool(o.Enabled, "OTEL_"+string(signal)+"_ENABLED")
	o.Endpoint = envString(o.Endpoint, otlp("ENDPOINT")...)
	o.Insecure = envBool(o.Insecure, otlp("INSECURE")...)
	o.ServiceName = envString(o.ServiceName, "OTEL_SERVICE_NAME")

	if raw := envString("", otlp("HEADERS")...); raw != "" {
		o.Headers = parseHeaders(raw)
	}

	if raw := envString("", otlp("TIMEOUT")...); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			o.BatchTimeout = models.Duration(d)
		}
	}
}

// parseHeaders reads the "k1=v1,k2=v2" form used by OTEL_EXPORTER_OTLP_HEADERS.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}

func envString(fallback string, keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}

	return fallback
}

func envBool(fallback bool, keys ...string) bool {
	value := envString("", keys...)
	if value == "" {
		return fallback
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
