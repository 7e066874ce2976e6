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

package lifecycle

import (
	"context"
	"fmt"

	"github.com/carverauto/fleetradar/pkg/logger"
)

// CreateComponentLogger builds the logger a service runs with. The file
// config is overlaid with LOG_* and OTEL_EXPORTER_OTLP_LOGS_* variables; a
// nil config starts from the defaults.
func CreateComponentLogger(ctx context.Context, component string, config *logger.Config) (logger.Logger, error) {
	if config == nil {
		config = logger.DefaultConfig()
	} else {
		merged := *config
		merged.ApplyEnv()
		config = &merged
	}

	log, err := logger.New(ctx, component, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return log, nil
}

// ShutdownLogger flushes the OTLP log and metric exporters.
func ShutdownLogger() error {
	return logger.Shutdown()
}
