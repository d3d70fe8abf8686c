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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/candorops/netsentry/pkg/models"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name   string
		vendor string
		ports  []int
		want   models.DeviceType
	}{
		{"router by vendor keyword", "Cisco Systems", []int{53, 8443}, models.TypeRouter},
		{"router keyword is case-insensitive", "JUNIPER Networks", []int{179, 830}, models.TypeRouter},
		{"router wins over server", "Arista", []int{22, 80}, models.TypeRouter},
		{"server by ssh plus http", "", []int{22, 80}, models.TypeServer},
		{"server by ssh plus https", "", []int{22, 443}, models.TypeServer},
		{"server wins over printer", "", []int{22, 443, 9100}, models.TypeServer},
		{"printer by raw port", "", []int{80, 9100}, models.TypePrinter},
		{"printer by vendor", "HP LaserJet printer", nil, models.TypePrinter},
		{"iot by single port", "", []int{1883}, models.TypeIoT},
		{"iot by no ports", "Espressif", nil, models.TypeIoT},
		{"two unmatched ports is unknown", "", []int{80, 445}, models.TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := models.Device{IP: "10.0.0.1", Vendor: tt.vendor, OpenPorts: tt.ports}
			assert.Equal(t, tt.want, classifyDevice(&d))
		})
	}
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name   string
		device models.Device
		known  bool
		want   int
	}{
		{
			name:   "no ports unseen unknown vendor",
			device: models.Device{IP: "10.0.0.1"},
			want:   8, // unseen +5, missing vendor +3
		},
		{
			name:   "known server with vendor",
			device: models.Device{IP: "10.0.0.1", Vendor: "Dell", OpenPorts: []int{22, 443}},
			known:  true,
			want:   4,
		},
		{
			name:   "unseen server with vendor",
			device: models.Device{IP: "10.0.0.1", Vendor: "Dell", OpenPorts: []int{22, 443}},
			want:   9, // 2 ports *2 + unseen +5
		},
		{
			name:   "telnet and smb drive score up",
			device: models.Device{IP: "10.0.0.1", Vendor: "Acme", OpenPorts: []int{23, 445}},
			known:  true,
			want:   24, // 2 ports *2 + 2 high-risk *10
		},
		{
			name: "score clamps at 100",
			device: models.Device{IP: "10.0.0.1", OpenPorts: []int{
				21, 23, 135, 139, 445, 1433, 3306, 5432, 3389, 19, 37, 79,
			}},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, riskScore(&tt.device, tt.known))
		})
	}
}

func TestEnrichDropsUnseenRiskBonusOnceRemembered(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	device := onlineDevice("192.168.1.9", 22, 443)
	device.Vendor = "Dell"

	first, err := p.Process(context.Background(), scanWith(device))
	require.NoError(t, err)
	assert.InDelta(t, 9, first.EnrichedDevices[0].RiskScore, 0.001)

	second, err := p.Process(context.Background(), scanWith(device))
	require.NoError(t, err)
	assert.InDelta(t, 4, second.EnrichedDevices[0].RiskScore, 0.001)
}

func TestEnrichKeepsFirstSeenForKnownDevice(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	first, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.9", 22)))
	require.NoError(t, err)

	seen := first.EnrichedDevices[0].FirstSeen
	require.False(t, seen.IsZero())

	second, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.9", 22)))
	require.NoError(t, err)
	assert.Equal(t, seen, second.EnrichedDevices[0].FirstSeen)
	assert.True(t, second.EnrichedDevices[0].LastSeen.After(seen) ||
		second.EnrichedDevices[0].LastSeen.Equal(seen))
}

func TestEnrichFillsVendorFromLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockVendorLookup(ctrl)
	lookup.EXPECT().
		Lookup(gomock.Any(), "192.168.1.9").
		Return("Cisco", "sw-core-01", nil)

	p := newTestPipeline(t, nil, nil, lookup)

	result, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.9", 22)))
	require.NoError(t, err)

	d := result.EnrichedDevices[0]
	assert.Equal(t, "Cisco", d.Vendor)
	assert.Equal(t, "sw-core-01", d.Hostname)
	// The discovered vendor feeds classification.
	assert.Equal(t, models.TypeRouter, d.DeviceType)
}

func TestEnrichSkipsLookupWhenVendorPresent(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockVendorLookup(ctrl)
	// No expectations: any call fails the test.

	p := newTestPipeline(t, nil, nil, lookup)

	device := onlineDevice("192.168.1.9", 22)
	device.Vendor = "Netgear"

	_, err := p.Process(context.Background(), scanWith(device))
	require.NoError(t, err)
}

func TestEnrichLookupFailuresOpenBreaker(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := NewMockVendorLookup(ctrl)
	lookup.EXPECT().
		Lookup(gomock.Any(), gomock.Any()).
		Return("", "", errors.New("timeout")).
		Times(5)

	p := newTestPipeline(t, nil, nil, lookup)

	devices := make([]models.Device, 6)
	for i := range devices {
		devices[i] = onlineDevice(fmt.Sprintf("10.0.0.%d", i+1), 22)
	}

	_, err := p.Process(context.Background(), scanWith(devices...))
	require.NoError(t, err)
	assert.Equal(t, StateOpen, p.breaker.State())
}
