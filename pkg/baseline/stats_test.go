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

package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat"
)

func TestKSTestSeparatesDistributions(t *testing.T) {
	same := syntheticSample(10, 1)
	shifted := syntheticSample(15, 1)

	assert.Greater(t, ksTestPValue(same, same), 0.5)
	assert.Less(t, ksTestPValue(same, shifted), 0.01)
}

func TestMannWhitneyDetectsMedianShift(t *testing.T) {
	a := syntheticSample(10, 1)
	b := syntheticSample(12, 1)

	assert.Less(t, mannWhitneyPValue(a, b), 0.01)
	assert.Greater(t, mannWhitneyPValue(a, a), 0.5)
}

func TestLeveneDetectsVarianceChange(t *testing.T) {
	tight := syntheticSample(10, 0.5)
	wide := syntheticSample(10, 5)

	assert.Less(t, levenePValue(tight, wide), 0.01)
	assert.Greater(t, levenePValue(tight, tight), 0.5)
}

func TestMAPE(t *testing.T) {
	values := []float64{12, 12, 12, 12}
	assert.InDelta(t, 20, mape(values, 10), 1e-9)
	assert.Zero(t, mape(values, 0))
	assert.Zero(t, mape(nil, 10))
}

func TestSyntheticSamplePreservesMoments(t *testing.T) {
	s := syntheticSample(10, 2)

	assert.InDelta(t, 10, stat.Mean(s, nil), 0.05)
	assert.InDelta(t, 2, stat.StdDev(s, nil), 0.1)

	flat := syntheticSample(7, 0)
	for _, v := range flat {
		assert.InDelta(t, 7, v, 1e-12)
	}
}

func TestMedianEvenAndOdd(t *testing.T) {
	assert.InDelta(t, 2, median([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 2, median([]float64{4, 1, 3, 2}), 1e-12)
}
