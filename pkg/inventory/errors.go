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

import "errors"

var (
	// ErrFetch wraps every failure to obtain a usable snapshot.
	ErrFetch = errors.New("inventory fetch failed")
	// ErrCircuitOpen is returned while the circuit breaker rejects requests.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	errUnexpectedStatusCode = errors.New("unexpected status code")
	errScannerError         = errors.New("scanner reported error")
	errMissingDevices       = errors.New("response has no device list")
	errUnknownScannerType   = errors.New("unknown scanner type")
	errURLRequired          = errors.New("scanner url is required")
	errCredentialsRequired  = errors.New("rdm scanner requires username and password")
	errSecretRequired       = errors.New("golbat scanner requires a secret")
)
