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

//go:generate mockgen -destination=mock_inventory.go -package=inventory github.com/carverauto/fleetradar/pkg/inventory Fetcher,HTTPClient

// Package inventory fetches device sightings from the scanner API.
package inventory

import (
	"context"
	"net/http"
)

// DeviceStatus is the last sighting of one device as reported by the scanner.
type DeviceStatus struct {
	LastUpdate int64
}

// Snapshot maps device id to its last reported status.
type Snapshot map[string]DeviceStatus

// Fetcher returns the current device snapshot.
type Fetcher interface {
	FetchDevices(ctx context.Context) (Snapshot, error)
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
