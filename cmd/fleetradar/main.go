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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carverauto/fleetradar/pkg/config"
	"github.com/carverauto/fleetradar/pkg/kv"
	"github.com/carverauto/fleetradar/pkg/lifecycle"
	"github.com/carverauto/fleetradar/pkg/logger"
	"github.com/carverauto/fleetradar/pkg/monitor"
	"github.com/carverauto/fleetradar/pkg/version"
)

const defaultKVBucket = "fleetradar-config"

var (
	errFailedToLoadConfig = errors.New("failed to load config")
	errKVURLRequired      = errors.New("KV_NATS_URL is required when CONFIG_SOURCE=kv")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/fleetradar/fleetradar.json", "Path to fleetradar config file")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return nil
	}

	ctx := context.Background()

	cfgLoader := config.NewConfig(nil)

	if strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "kv") {
		store, err := openKVStore(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
		}
		defer func() { _ = store.Close() }()

		cfgLoader.SetKVStore(store)
	}

	var cfg monitor.Config

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	monitorLogger, err := lifecycle.CreateComponentLogger(ctx, "monitor", cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = lifecycle.ShutdownLogger() }()

	metricsConfig := logger.OTelConfig{}
	if cfg.Metrics != nil {
		metricsConfig = *cfg.Metrics
	}

	metricsConfig.ApplyEnv(logger.SignalMetrics)

	if _, err := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version.GetVersion(),
		OTel:           &metricsConfig,
	}); err != nil && !errors.Is(err, logger.ErrOTelMetricsDisabled) {
		monitorLogger.Warn().Err(err).Msg("Metrics exporter unavailable, continuing without it")
	}

	svc, err := monitor.NewService(ctx, &cfg, monitorLogger)
	if err != nil {
		return err
	}

	return lifecycle.Run(ctx, monitorLogger, lifecycle.ServerOptions{
		ServiceName: cfg.ServiceName,
	}, svc)
}

func openKVStore(ctx context.Context) (kv.KVStore, error) {
	url := os.Getenv("KV_NATS_URL")
	if url == "" {
		return nil, errKVURLRequired
	}

	bucket := os.Getenv("KV_BUCKET")
	if bucket == "" {
		bucket = defaultKVBucket
	}

	store, err := kv.NewNatsStore(ctx, url, bucket)
	if err != nil {
		return nil, err
	}

	return store, nil
}
