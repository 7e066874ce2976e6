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

package config

import (
	"context"
	"fmt"

	"github.com/carverauto/fleetradar/pkg/kv"
	"github.com/carverauto/fleetradar/pkg/logger"
)

// KVConfigLoader reads the configuration document stored under kv.ConfigKey(path).
// Documents get the same BOM and ${VAR} handling as files.
type KVConfigLoader struct {
	store  kv.KVStore
	logger logger.Logger
}

func NewKVConfigLoader(store kv.KVStore, log logger.Logger) *KVConfigLoader {
	return &KVConfigLoader{store: store, logger: log}
}

func (k *KVConfigLoader) Load(ctx context.Context, path string, dst interface{}) error {
	key := kv.ConfigKey(path)

	entry, err := k.store.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := decodeDocument(entry.Value, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from key '%s' (revision %d): %w", key, entry.Revision, err)
	}

	k.logger.Info().
		Str("key", key).
		Uint64("revision", entry.Revision).
		Msg("Loaded configuration from KV")

	return nil
}
