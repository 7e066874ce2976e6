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

package messaging

import "errors"

var (
	// ErrMessageNotFound means a tracked notification no longer exists.
	ErrMessageNotFound = errors.New("message not found")
	// ErrDestinationUnavailable means the channel cannot be reached or written to.
	ErrDestinationUnavailable = errors.New("destination unavailable")
	// ErrDeliveryFailed means a single direct message could not be delivered.
	ErrDeliveryFailed = errors.New("delivery failed")
)
