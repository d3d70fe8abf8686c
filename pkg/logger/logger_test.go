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

package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(&Config{Level: "debug", Output: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.NotNil(t, log.Debug())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestDebugOverridesLevel(t *testing.T) {
	log, err := New(&Config{Level: "error", Debug: true})
	require.NoError(t, err)

	impl, ok := log.(*loggerImpl)
	require.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, impl.logger.GetLevel())
}

func TestWithComponent(t *testing.T) {
	log, err := New(&Config{Level: "info"})
	require.NoError(t, err)

	componentLogger := log.WithComponent("pipeline")
	assert.NotEqual(t, zerolog.Disabled, componentLogger.GetLevel())
}

func TestTestLoggerIsSilent(t *testing.T) {
	log := NewTestLogger()
	// Must not panic even for high-severity events.
	log.Error().Msg("discarded")
	log.Warn().Str("k", "v").Msg("discarded")
}
