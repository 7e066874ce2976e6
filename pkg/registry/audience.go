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

package registry

import "slices"

// Audience is a notification destination together with the device filters
// that decide which devices it reports on.
type Audience struct {
	ID               string   `json:"id"`
	Name             string   `json:"name,omitempty"`
	SummaryChannelID string   `json:"summary_channel_id,omitempty"`
	Devices          []string `json:"devices,omitempty"`
	IgnoredDevices   []string `json:"ignored_devices,omitempty"`
}

// IsRelevant reports whether the device passes the allow-list and deny-list.
// An empty list does not filter.
func (a *Audience) IsRelevant(deviceID string) bool {
	if len(a.Devices) > 0 && !slices.Contains(a.Devices, deviceID) {
		return false
	}

	if len(a.IgnoredDevices) > 0 && slices.Contains(a.IgnoredDevices, deviceID) {
		return false
	}

	return true
}

// Partition is the per-state grouping of an audience's relevant devices.
// Lists may be empty; rendering substitutes a placeholder.
type Partition struct {
	Online  []string
	Warning []string
	Offline []string
}

// Get returns the list for one state.
func (p *Partition) Get(s State) []string {
	switch s {
	case StateOnline:
		return p.Online
	case StateWarning:
		return p.Warning
	case StateOffline:
		return p.Offline
	default:
		return nil
	}
}

// Len returns the number of devices across all lists.
func (p *Partition) Len() int {
	return len(p.Online) + len(p.Warning) + len(p.Offline)
}
