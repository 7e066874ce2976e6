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

import "time"

// State is the liveness classification of a device.
type State int

const (
	StateOnline State = iota
	StateWarning
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateWarning:
		return "warning"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Classify maps a last-seen epoch timestamp to a State. A zero lastSeen means
// the device was never seen. The offline window is checked first so a warning
// threshold larger than the offline threshold can never mask an offline device.
func Classify(lastSeen, now, warningSeconds, offlineSeconds int64) State {
	if lastSeen == 0 {
		return StateOffline
	}

	age := now - lastSeen

	if age > offlineSeconds {
		return StateOffline
	}

	if age > warningSeconds {
		return StateWarning
	}

	return StateOnline
}

// Thresholds holds the two staleness windows used for classification.
type Thresholds struct {
	Warning time.Duration
	Offline time.Duration
}

// Classify classifies lastSeen relative to now.
func (t Thresholds) Classify(lastSeen int64, now time.Time) State {
	return Classify(lastSeen, now.Unix(), int64(t.Warning/time.Second), int64(t.Offline/time.Second))
}
