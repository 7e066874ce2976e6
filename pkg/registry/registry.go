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

// Package registry holds the in-memory device liveness state.
package registry

import (
	"sort"
	"sync"
	"time"
)

// Device is the liveness record of one device. Its State is never stored; it
// is computed from LastSeen on every read.
type Device struct {
	ID                string
	LastSeen          int64
	AlertAcknowledged bool
}

// DeviceSnapshot is a Device classified at a single instant.
type DeviceSnapshot struct {
	Device
	State State
}

// Registry maps device ids to their last known liveness record.
// Devices are never removed; a device that stops being reported ages into offline.
type Registry struct {
	mu         sync.RWMutex
	devices    map[string]*Device
	thresholds Thresholds
	now        func() time.Time
}

// New creates an empty registry. A nil now uses time.Now.
func New(thresholds Thresholds, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}

	return &Registry{
		devices:    make(map[string]*Device),
		thresholds: thresholds,
		now:        now,
	}
}

// Upsert records a sighting of the device.
func (r *Registry) Upsert(id string, lastSeen int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.devices[id]; ok {
		d.LastSeen = lastSeen
		return
	}

	r.devices[id] = &Device{ID: id, LastSeen: lastSeen}
}

// Get returns a copy of the device record.
func (r *Registry) Get(id string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, false
	}

	return *d, true
}

// Len returns the number of known devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}

// State classifies a single device. Unknown devices are offline.
func (r *Registry) State(id string) State {
	d, ok := r.Get(id)
	if !ok {
		return StateOffline
	}

	return r.thresholds.Classify(d.LastSeen, r.now())
}

// ListRelevant partitions the devices relevant to the audience by state.
// Each list is sorted by device id.
func (r *Registry) ListRelevant(audience *Audience) Partition {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var p Partition

	for _, id := range r.sortedIDsLocked() {
		if !audience.IsRelevant(id) {
			continue
		}

		switch r.thresholds.Classify(r.devices[id].LastSeen, now) {
		case StateOnline:
			p.Online = append(p.Online, id)
		case StateWarning:
			p.Warning = append(p.Warning, id)
		case StateOffline:
			p.Offline = append(p.Offline, id)
		}
	}

	return p
}

// Snapshot classifies every device at the current instant, sorted by id.
func (r *Registry) Snapshot() []DeviceSnapshot {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DeviceSnapshot, 0, len(r.devices))

	for _, id := range r.sortedIDsLocked() {
		d := r.devices[id]
		out = append(out, DeviceSnapshot{
			Device: *d,
			State:  r.thresholds.Classify(d.LastSeen, now),
		})
	}

	return out
}

// MarkAlertSent records that an offline alert went out for the current episode.
func (r *Registry) MarkAlertSent(id string) {
	r.setAcknowledged(id, true)
}

// ClearAlertAcknowledgement closes the offline episode after a recovery alert.
func (r *Registry) ClearAlertAcknowledgement(id string) {
	r.setAcknowledged(id, false)
}

func (r *Registry) setAcknowledged(id string, ack bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.devices[id]; ok {
		d.AlertAcknowledged = ack
	}
}

func (r *Registry) sortedIDsLocked() []string {
	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
