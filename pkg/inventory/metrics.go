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

package inventory

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                = "github.com/carverauto/fleetradar/pkg/inventory"
	metricBreakerTransitions = "fleetradar_scanner_breaker_transitions_total"
	metricBreakerState       = "fleetradar_scanner_breaker_state"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	transitionCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	stateGauge metric.Int64Gauge
)

func initMeter() {
	meter := otel.Meter(meterName)

	counter, err := meter.Int64Counter(
		metricBreakerTransitions,
		metric.WithDescription("Scanner circuit breaker state changes by target state"),
	)
	if err != nil {
		otel.Handle(err)
	}
	transitionCounter = counter

	gauge, err := meter.Int64Gauge(
		metricBreakerState,
		metric.WithDescription("Scanner circuit breaker state: 0 closed, 1 open, 2 half-open"),
	)
	if err != nil {
		otel.Handle(err)
	}
	stateGauge = gauge
}

func recordBreakerTransition(ctx context.Context, scanner string, to BreakerState) {
	meterOnce.Do(initMeter)

	scannerAttr := metric.WithAttributes(attribute.String("scanner", scanner))

	if transitionCounter != nil {
		transitionCounter.Add(ctx, 1, scannerAttr, metric.WithAttributes(attribute.String("state", to.String())))
	}

	if stateGauge != nil {
		stateGauge.Record(ctx, int64(to), scannerAttr)
	}
}
