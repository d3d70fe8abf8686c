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
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	ksSeriesTerms      = 100
	syntheticSampleLen = 100
)

// ksTestPValue runs a two-sample Kolmogorov-Smirnov test and returns the
// asymptotic p-value. Both inputs must be non-empty.
func ksTestPValue(a, b []float64) float64 {
	as := sortedCopy(a)
	bs := sortedCopy(b)

	d := 0.0
	i, j := 0, 0
	na, nb := float64(len(as)), float64(len(bs))

	for i < len(as) && j < len(bs) {
		v := math.Min(as[i], bs[j])

		for i < len(as) && as[i] == v {
			i++
		}

		for j < len(bs) && bs[j] == v {
			j++
		}

		diff := math.Abs(float64(i)/na - float64(j)/nb)
		if diff > d {
			d = diff
		}
	}

	ne := na * nb / (na + nb)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * d

	return ksSurvival(lambda)
}

// ksSurvival evaluates the Kolmogorov distribution tail Q(lambda).
func ksSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}

	sum := 0.0
	sign := 1.0

	for j := 1; j <= ksSeriesTerms; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		sign = -sign

		if math.Abs(term) < 1e-12 {
			break
		}
	}

	p := 2 * sum
	if p < 0 {
		return 0
	}

	if p > 1 {
		return 1
	}

	return p
}

// mannWhitneyPValue runs a two-sided Mann-Whitney U test with the normal
// approximation and tie correction.
func mannWhitneyPValue(a, b []float64) float64 {
	na, nb := float64(len(a)), float64(len(b))
	if na == 0 || nb == 0 {
		return 1
	}

	type obs struct {
		value float64
		fromA bool
	}

	combined := make([]obs, 0, len(a)+len(b))
	for _, v := range a {
		combined = append(combined, obs{v, true})
	}

	for _, v := range b {
		combined = append(combined, obs{v, false})
	}

	sort.Slice(combined, func(i, j int) bool { return combined[i].value < combined[j].value })

	// Midranks, accumulating the tie correction term as we go.
	rankSumA := 0.0
	tieTerm := 0.0

	for i := 0; i < len(combined); {
		j := i
		for j < len(combined) && combined[j].value == combined[i].value {
			j++
		}

		midrank := float64(i+j+1) / 2
		if t := float64(j - i); t > 1 {
			tieTerm += t*t*t - t
		}

		for k := i; k < j; k++ {
			if combined[k].fromA {
				rankSumA += midrank
			}
		}

		i = j
	}

	u := rankSumA - na*(na+1)/2
	n := na + nb
	mean := na * nb / 2
	variance := na * nb / 12 * ((n + 1) - tieTerm/(n*(n-1)))

	if variance <= 0 {
		return 1
	}

	z := math.Abs(u-mean) / math.Sqrt(variance)
	normal := distuv.Normal{Mu: 0, Sigma: 1}

	return 2 * normal.Survival(z)
}

// levenePValue runs the Brown-Forsythe variant of Levene's variance-equality
// test (median-centered) across two samples.
func levenePValue(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 1
	}

	za := absDeviations(a, median(a))
	zb := absDeviations(b, median(b))

	meanA := stat.Mean(za, nil)
	meanB := stat.Mean(zb, nil)

	na, nb := float64(len(za)), float64(len(zb))
	grand := (meanA*na + meanB*nb) / (na + nb)

	between := na*(meanA-grand)*(meanA-grand) + nb*(meanB-grand)*(meanB-grand)

	within := 0.0
	for _, z := range za {
		within += (z - meanA) * (z - meanA)
	}

	for _, z := range zb {
		within += (z - meanB) * (z - meanB)
	}

	if within == 0 {
		if between == 0 {
			return 1
		}

		return 0
	}

	dfWithin := na + nb - 2
	w := dfWithin * between / within

	f := distuv.F{D1: 1, D2: dfWithin}

	return f.Survival(w)
}

func absDeviations(values []float64, center float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v - center)
	}

	return out
}

func median(values []float64) float64 {
	s := sortedCopy(values)

	return stat.Quantile(0.5, stat.Empirical, s, nil)
}

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	return s
}

// syntheticSample reconstructs a deterministic reference sample from stored
// summary statistics, spacing values evenly across the normal quantile
// function. A zero standard deviation collapses to a constant sample.
func syntheticSample(mean, stdDev float64) []float64 {
	out := make([]float64, syntheticSampleLen)

	if stdDev <= 0 {
		for i := range out {
			out[i] = mean
		}

		return out
	}

	normal := distuv.Normal{Mu: mean, Sigma: stdDev}
	for i := range out {
		q := (float64(i) + 0.5) / syntheticSampleLen
		out[i] = normal.Quantile(q)
	}

	return out
}

// mape computes the mean absolute percentage error of values against a
// reference mean, as a percentage. A zero reference yields zero.
func mape(values []float64, reference float64) float64 {
	if reference == 0 || len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v-reference) / math.Abs(reference)
	}

	return sum / float64(len(values)) * 100
}

// hourlyMeans buckets values by hour of day and returns the 24 per-hour
// means; hours with no observations fall back to the overall mean.
func hourlyMeans(samples []sampleAt) []float64 {
	sums := make([]float64, 24)
	counts := make([]float64, 24)
	total := 0.0

	for _, s := range samples {
		h := s.hour
		sums[h] += s.value
		counts[h]++
		total += s.value
	}

	overall := total / float64(len(samples))
	out := make([]float64, 24)

	for h := range out {
		if counts[h] > 0 {
			out[h] = sums[h] / counts[h]
		} else {
			out[h] = overall
		}
	}

	return out
}

type sampleAt struct {
	value float64
	hour  int
}
