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

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/carverauto/fleetradar/pkg/alerts Notifier,DeviceSource

// Package alerts turns device offline episodes into one offline alert and at
// most one recovery alert each.
package alerts

import (
	"context"
	"time"

	"github.com/carverauto/fleetradar/pkg/registry"
)

// Kind is the edge an alert reports.
type Kind string

const (
	KindOffline   Kind = "offline"
	KindRecovered Kind = "recovered"
)

// Alert is one device transition.
type Alert struct {
	Kind      Kind
	DeviceID  string
	LastSeen  int64
	Timestamp time.Time
}

// Notifier delivers an alert. Implementations are best effort.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// DeviceSource is the slice of the device registry the alert cycle needs.
type DeviceSource interface {
	Snapshot() []registry.DeviceSnapshot
	MarkAlertSent(id string)
	ClearAlertAcknowledgement(id string)
}
