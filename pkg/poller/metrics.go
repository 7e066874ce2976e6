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

package poller

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName            = "github.com/carverauto/fleetradar/pkg/poller"
	metricPollCycles     = "fleetradar_poll_cycles_total"
	metricDevicesSeen    = "fleetradar_devices_seen"
	outcomeSuccess       = "success"
	outcomeFetchError    = "fetch_error"
	outcomeScannerDown   = "scanner_unavailable"
	outcomeReconcileFail = "reconcile_error"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	cycleCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	devicesGauge metric.Int64Gauge
)

func initMeter() {
	meter := otel.Meter(meterName)

	counter, err := meter.Int64Counter(
		metricPollCycles,
		metric.WithDescription("Completed poll cycles by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	cycleCounter = counter

	gauge, err := meter.Int64Gauge(
		metricDevicesSeen,
		metric.WithDescription("Devices reported by the last successful fetch"),
	)
	if err != nil {
		otel.Handle(err)
	}
	devicesGauge = gauge
}

func recordCycle(ctx context.Context, outcome string) {
	meterOnce.Do(initMeter)
	if cycleCounter == nil {
		return
	}

	cycleCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func recordDevicesSeen(ctx context.Context, n int) {
	meterOnce.Do(initMeter)
	if devicesGauge == nil {
		return
	}

	devicesGauge.Record(ctx, int64(n))
}
