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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

//nolint:gochecknoglobals // immutable after init
var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	envRefRex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// FileConfigLoader loads configuration from a local JSON file. ${VAR}
// references in the file are replaced from the environment, so secrets such
// as the bot token can stay out of it.
type FileConfigLoader struct{}

// Load implements ConfigLoader by reading and unmarshaling a JSON file.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	if err := decodeDocument(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}

// decodeDocument unmarshals a JSON config document after dropping a leading
// BOM and expanding ${VAR} references.
func decodeDocument(data []byte, dst interface{}) error {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = envRefRex.ReplaceAllFunc(data, expandVar)

	return json.Unmarshal(data, dst)
}

// expandVar leaves references to unset variables untouched.
func expandVar(ref []byte) []byte {
	if v, ok := os.LookupEnv(string(ref[2 : len(ref)-1])); ok {
		return []byte(v)
	}

	return ref
}
