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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/fleetradar/pkg/kv"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/models"
)

var errKVDown = errors.New("kv unavailable")

type scannerSection struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type testConfig struct {
	Name     string          `json:"name"`
	Interval models.Duration `json:"interval"`
	Timeout  time.Duration   `json:"timeout"`
	Users    []string        `json:"users"`
	Clear    bool            `json:"clear"`
	Retries  int             `json:"retries"`
	Scanner  scannerSection  `json:"scanner"`
	Ignored  string          `json:"-"`
}

type validatingConfig struct {
	Name string `json:"name"`
}

func (v *validatingConfig) Validate() error {
	if v.Name == "" {
		return ErrInvalidConfig
	}

	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fleetradar.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidate_File(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeFile(t, `{"name":"fleet","interval":"5m","users":["u1","u2"]}`)

	var cfg testConfig

	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, "fleet", cfg.Name)
	assert.Equal(t, models.Duration(5*time.Minute), cfg.Interval)
	assert.Equal(t, []string{"u1", "u2"}, cfg.Users)
}

func TestFileConfigLoader_ExpandsEnv(t *testing.T) {
	t.Setenv("FLEET_TEST_NAME", "from-env")

	path := writeFile(t, "\xEF\xBB\xBF"+`{"name":"${FLEET_TEST_NAME}","users":["${FLEET_TEST_UNSET}"]}`)

	var cfg testConfig

	require.NoError(t, (&FileConfigLoader{}).Load(context.Background(), path, &cfg))
	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, []string{"${FLEET_TEST_UNSET}"}, cfg.Users)
}

func TestLoadAndValidate_RunsValidator(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeFile(t, `{}`)

	var cfg validatingConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	var cfg testConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "/nonexistent/fleetradar.json", &cfg)
	require.Error(t, err)
}

func TestLoadAndValidate_InvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg testConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "x.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadAndValidate_KVWithoutStore(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg testConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "x.json", &cfg)
	require.ErrorIs(t, err, errKVStoreNotSet)
}

func TestLoadAndValidate_KV(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")
	t.Setenv("FR_KV_NAME", "from-kv")

	ctrl := gomock.NewController(t)
	store := kv.NewMockKVStore(ctrl)

	store.EXPECT().
		Get(gomock.Any(), "config/fleetradar.json").
		Return(kv.Entry{Key: "config/fleetradar.json", Value: []byte(`{"name":"${FR_KV_NAME}"}`), Revision: 4}, nil)

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(store)

	var cfg testConfig

	require.NoError(t, c.LoadAndValidate(context.Background(), "/etc/fleetradar/fleetradar.json", &cfg))
	assert.Equal(t, "from-kv", cfg.Name)
}

func TestLoadAndValidate_KVFallsBackToFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	path := writeFile(t, `{"name":"from-file"}`)

	ctrl := gomock.NewController(t)
	store := kv.NewMockKVStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "config/fleetradar.json").Return(kv.Entry{}, errKVDown)

	c := NewConfig(logger.NewTestLogger())
	c.SetKVStore(store)

	var cfg testConfig

	require.NoError(t, c.LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, "from-file", cfg.Name)
}

func TestKVConfigLoader_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := kv.NewMockKVStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "config/app.json").Return(kv.Entry{}, kv.ErrKeyNotFound)

	var cfg testConfig

	err := NewKVConfigLoader(store, logger.NewTestLogger()).Load(context.Background(), "app.json", &cfg)
	require.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestKVConfigLoader_InvalidDocumentNamesRevision(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := kv.NewMockKVStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "config/app.json").
		Return(kv.Entry{Key: "config/app.json", Value: []byte("{not json"), Revision: 9}, nil)

	var cfg testConfig

	err := NewKVConfigLoader(store, logger.NewTestLogger()).Load(context.Background(), "/srv/app.json", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revision 9")
}

func TestNewConfig_NilLoggerStillReports(t *testing.T) {
	c := NewConfig(nil)
	require.NotNil(t, c.logger)
	assert.Equal(t, zerolog.WarnLevel, c.logger.With().Logger().GetLevel())
}

func TestEnvConfigLoader_Fields(t *testing.T) {
	t.Setenv("FR_NAME", "env-fleet")
	t.Setenv("FR_INTERVAL", "90s")
	t.Setenv("FR_TIMEOUT", "2s")
	t.Setenv("FR_USERS", "a, b,,c")
	t.Setenv("FR_CLEAR", "true")
	t.Setenv("FR_RETRIES", "3")
	t.Setenv("FR_SCANNER_TYPE", "golbat")
	t.Setenv("FR_SCANNER_URL", "http://golbat:9001")

	var cfg testConfig

	require.NoError(t, NewEnvConfigLoader(logger.NewTestLogger(), "FR_").Load(context.Background(), "", &cfg))

	assert.Equal(t, "env-fleet", cfg.Name)
	assert.Equal(t, models.Duration(90*time.Second), cfg.Interval)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Users)
	assert.True(t, cfg.Clear)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, "golbat", cfg.Scanner.Type)
	assert.Equal(t, "http://golbat:9001", cfg.Scanner.URL)
}

func TestEnvConfigLoader_InvalidValueIsSkipped(t *testing.T) {
	t.Setenv("FR_RETRIES", "many")
	t.Setenv("FR_NAME", "still-loaded")

	var cfg testConfig

	require.NoError(t, NewEnvConfigLoader(logger.NewTestLogger(), "FR_").Load(context.Background(), "", &cfg))
	assert.Equal(t, 0, cfg.Retries)
	assert.Equal(t, "still-loaded", cfg.Name)
}

func TestEnvConfigLoader_ConfigJSON(t *testing.T) {
	t.Setenv("FR_CONFIG_JSON", `{"name":"json-fleet","retries":7}`)

	var cfg testConfig

	require.NoError(t, NewEnvConfigLoader(logger.NewTestLogger(), "FR_").Load(context.Background(), "", &cfg))
	assert.Equal(t, "json-fleet", cfg.Name)
	assert.Equal(t, 7, cfg.Retries)
}

func TestEnvConfigLoader_RejectsNonPointer(t *testing.T) {
	err := NewEnvConfigLoader(logger.NewTestLogger(), "FR_").Load(context.Background(), "", testConfig{})
	require.ErrorIs(t, err, ErrDstMustBeNonNilPointer)
}
