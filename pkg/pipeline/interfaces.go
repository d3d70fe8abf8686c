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

	"github.com/candorops/netsentry/pkg/models"
)

//go:generate mockgen -destination=mock_pipeline.go -package=pipeline github.com/candorops/netsentry/pkg/pipeline BaselineProvider,VendorLookup

// BaselineProvider supplies the pipeline with per-device baselines for
// latency comparisons. Implementations must return consistent snapshots,
// never partially-written ones.
type BaselineProvider interface {
	BaselineFor(entity string, metric models.MetricType) (*models.BaselineSnapshot, bool)
}

// VendorLookup resolves vendor and hostname for a device from an external
// source. Calls are routed through the pipeline's circuit breaker.
type VendorLookup interface {
	Lookup(ctx context.Context, ip string) (vendor, hostname string, err error)
}
