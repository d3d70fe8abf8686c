/*
 * Copyright 2025 Candor Operations Corporation.
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

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDependencyDown = errors.New("dependency down")

func failing() error { return errDependencyDown }

func succeeding() error { return nil }

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.Equal(t, StateClosed, cb.State())
		err := cb.Execute(ctx, failing)
		require.ErrorIs(t, err, errDependencyDown)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(ctx, succeeding)
	require.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))
	require.NoError(t, cb.Execute(ctx, succeeding))
	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenTrialCloses(t *testing.T) {
	cb := NewCircuitBreaker(2, 20*time.Millisecond)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenTrialReopens(t *testing.T) {
	cb := NewCircuitBreaker(2, 20*time.Millisecond)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))

	time.Sleep(30 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(ctx, failing), errDependencyDown)
	assert.Equal(t, StateOpen, cb.State())

	// Back to cooldown: calls fail fast again.
	require.ErrorIs(t, cb.Execute(ctx, succeeding), ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpenAdmitsSingleTrial(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	time.Sleep(20 * time.Millisecond)

	release := make(chan struct{})
	trialStarted := make(chan struct{})

	go func() {
		_ = cb.Execute(ctx, func() error {
			close(trialStarted)
			<-release
			return nil
		})
	}()

	<-trialStarted

	// Second caller must be rejected while the trial is in flight.
	require.ErrorIs(t, cb.Execute(ctx, succeeding), ErrCircuitOpen)

	close(release)
}

func TestCircuitBreakerContextCanceledNotCounted(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, succeeding)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}
