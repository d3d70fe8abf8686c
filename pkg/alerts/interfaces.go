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

package alerts

import (
	"context"

	"github.com/candorops/netsentry/pkg/models"
)

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/candorops/netsentry/pkg/alerts Channel

// Channel delivers one alert to one transport. Send reports success; the
// cause of a failure is the implementation's to log. Implementations must
// honor ctx cancellation: a hung transport is surfaced as a failed send.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert *models.Alert) bool
}
