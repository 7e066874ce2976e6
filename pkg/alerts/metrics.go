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

package alerts

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                   = "github.com/carverauto/fleetradar/pkg/alerts"
	metricAlertsTotal           = "fleetradar_alerts_total"
	metricDeliveryFailuresTotal = "fleetradar_alert_delivery_failures_total"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	alertCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	deliveryFailureCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	alerts, err := meter.Int64Counter(
		metricAlertsTotal,
		metric.WithDescription("Device alerts dispatched by kind"),
	)
	if err != nil {
		otel.Handle(err)
	}
	alertCounter = alerts

	failures, err := meter.Int64Counter(
		metricDeliveryFailuresTotal,
		metric.WithDescription("Per-recipient alert deliveries that failed"),
	)
	if err != nil {
		otel.Handle(err)
	}
	deliveryFailureCounter = failures
}

func recordAlert(ctx context.Context, kind Kind) {
	meterOnce.Do(initMeter)
	if alertCounter == nil {
		return
	}

	alertCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func recordDeliveryFailure(ctx context.Context, notifier string) {
	meterOnce.Do(initMeter)
	if deliveryFailureCounter == nil {
		return
	}

	deliveryFailureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("notifier", notifier)))
}
