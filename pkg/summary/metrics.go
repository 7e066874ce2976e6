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

package summary

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                 = "github.com/carverauto/fleetradar/pkg/summary"
	metricReconcileOperations = "fleetradar_reconcile_operations_total"

	operationCreate = "create"
	operationEdit   = "edit"
	operationClear  = "clear"

	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeNotFound = "not_found"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	operationCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	counter, err := meter.Int64Counter(
		metricReconcileOperations,
		metric.WithDescription("Summary notification operations by category, operation and outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	operationCounter = counter
}

func recordOperation(ctx context.Context, category Category, operation, outcome string) {
	meterOnce.Do(initMeter)
	if operationCounter == nil {
		return
	}

	operationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category.String()),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
