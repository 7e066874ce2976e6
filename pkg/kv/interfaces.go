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

//go:generate mockgen -destination=mock_kv.go -package=kv github.com/carverauto/fleetradar/pkg/kv KVStore

// Package kv reads configuration documents from a key-value bucket.
package kv

import (
	"context"
	"errors"
	"path"
)

// ErrKeyNotFound is returned by Get when the bucket has no such key.
var ErrKeyNotFound = errors.New("kv key not found")

const configKeyPrefix = "config/"

// Entry is one stored document and the bucket revision it was read at.
type Entry struct {
	Key      string
	Value    []byte
	Revision uint64
}

// KVStore is the read side of the configuration bucket.
type KVStore interface {
	// Get returns the entry for key, or an error wrapping ErrKeyNotFound.
	Get(ctx context.Context, key string) (Entry, error)
	Close() error
}

// ConfigKey maps a config file path to the key its document is stored under,
// so /etc/fleetradar/fleetradar.json and fleetradar.json share "config/fleetradar.json".
func ConfigKey(configPath string) string {
	return configKeyPrefix + path.Base(configPath)
}
