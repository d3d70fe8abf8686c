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
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/candorops/netsentry/pkg/models"
)

// summarize computes per-scan summary statistics. Response-time figures
// cover online devices with a positive measurement; with fewer than two
// samples the standard deviation is zero.
func summarize(devices []models.Device) models.ScanStats {
	stats := models.ScanStats{TotalDevices: len(devices)}

	var samples []float64

	for i := range devices {
		d := &devices[i]

		if d.Status == models.StatusOnline {
			stats.OnlineCount++

			if d.ResponseTimeMS > 0 {
				samples = append(samples, d.ResponseTimeMS)
			}
		} else {
			stats.OfflineCount++
		}
	}

	if stats.TotalDevices > 0 {
		stats.AvailabilityPercent = round2(float64(stats.OnlineCount) / float64(stats.TotalDevices) * percentFactor)
	}

	if len(samples) == 0 {
		return stats
	}

	stats.AvgResponseTimeMS = round2(stat.Mean(samples, nil))
	stats.MinResponseTimeMS = samples[0]
	stats.MaxResponseTimeMS = samples[0]

	for _, s := range samples {
		stats.MinResponseTimeMS = math.Min(stats.MinResponseTimeMS, s)
		stats.MaxResponseTimeMS = math.Max(stats.MaxResponseTimeMS, s)
	}

	if len(samples) > 1 {
		stats.StdDevResponseMS = round2(stat.StdDev(samples, nil))
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
