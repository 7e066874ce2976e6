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

package lifecycle

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetradar/pkg/logger"
)

var errBoom = errors.New("boom")

type fakeService struct {
	startErr error
	stopped  chan struct{}
	once     sync.Once
	stops    int
	mu       sync.Mutex
}

func newFakeService(startErr error) *fakeService {
	return &fakeService{startErr: startErr, stopped: make(chan struct{})}
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.stopped:
		return nil
	}
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()

	f.once.Do(func() { close(f.stopped) })

	return nil
}

func TestRun_StopsServicesOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	a, b := newFakeService(nil), newFakeService(nil)

	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, logger.NewTestLogger(), ServerOptions{
			ServiceName: "test",
			Signals:     []os.Signal{syscall.SIGUSR2},
		}, a, b)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, 1, a.stops)
	assert.Equal(t, 1, b.stops)
}

func TestRun_ServiceFailureStopsOthers(t *testing.T) {
	healthy := newFakeService(nil)
	failing := newFakeService(errBoom)

	err := Run(context.Background(), logger.NewTestLogger(), ServerOptions{
		ServiceName: "test",
		Signals:     []os.Signal{syscall.SIGUSR2},
	}, healthy, failing)

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, healthy.stops)
}

func TestCreateComponentLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "")

	log, err := CreateComponentLogger(context.Background(), "poller", &logger.Config{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = CreateComponentLogger(context.Background(), "poller", &logger.Config{Level: "nope"})
	require.Error(t, err)
}

func TestCreateComponentLogger_EnvOverridesFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DEBUG", "")

	fileConfig := &logger.Config{Level: "debug"}

	log, err := CreateComponentLogger(context.Background(), "poller", fileConfig)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.With().Logger().GetLevel())
	assert.Equal(t, "debug", fileConfig.Level)
}
