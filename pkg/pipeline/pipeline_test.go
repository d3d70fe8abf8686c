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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/candorops/netsentry/pkg/db"
	"github.com/candorops/netsentry/pkg/logger"
	"github.com/candorops/netsentry/pkg/models"
)

func newTestPipeline(t *testing.T, store db.Service, baselines BaselineProvider, lookup VendorLookup) *Pipeline {
	t.Helper()

	return NewPipeline(models.PipelineConfig{}, store, baselines, lookup, logger.NewTestLogger())
}

func onlineDevice(ip string, ports ...int) models.Device {
	return models.Device{IP: ip, OpenPorts: ports, Status: models.StatusOnline}
}

func scanWith(devices ...models.Device) *models.Scan {
	return &models.Scan{
		ScanID:  "scan-001",
		Subnet:  "192.168.1.0/24",
		Devices: devices,
	}
}

func TestProcessRejectsInvalidScan(t *testing.T) {
	tests := []struct {
		name string
		scan *models.Scan
	}{
		{"nil scan", nil},
		{"missing scan id", &models.Scan{Subnet: "10.0.0.0/24", Devices: []models.Device{}}},
		{"missing subnet", &models.Scan{ScanID: "s", Devices: []models.Device{}}},
		{"nil devices", &models.Scan{ScanID: "s", Subnet: "10.0.0.0/24"}},
		{"device without ip", scanWith(models.Device{Status: models.StatusOnline})},
		{"octet out of range", scanWith(onlineDevice("192.168.1.256"))},
		{"too few octets", scanWith(onlineDevice("10.0.0"))},
		{"non-numeric octet", scanWith(onlineDevice("10.0.0.abc"))},
		{"signed octet", scanWith(onlineDevice("1.+2.3.4"))},
		{"negative octet", scanWith(onlineDevice("1.-2.3.4"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, nil, nil, nil)

			result, err := p.Process(context.Background(), tt.scan)
			require.ErrorIs(t, err, ErrInvalidScan)
			assert.Nil(t, result)
			assert.Zero(t, p.Memory().Len())
		})
	}
}

func TestProcessFlagsNewOnlineDevice(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	result, err := p.Process(context.Background(), scanWith(models.Device{
		IP:     "192.168.1.23",
		MAC:    "aa:bb:cc:dd:ee:ff",
		Vendor: "Ubiquiti",
		Status: models.StatusOnline,
	}))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 1)

	a := result.Analysis.Anomalies[0]
	assert.Equal(t, models.AnomalyNewDevice, a.Type)
	assert.Equal(t, models.SeverityMedium, a.Severity)
	assert.InDelta(t, 1.0, a.Confidence, 1e-9)
	require.NotNil(t, a.NewDevice)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", a.NewDevice.MAC)
	assert.Equal(t, "Ubiquiti", a.NewDevice.Vendor)
}

func TestProcessIgnoresNewOfflineDevice(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	result, err := p.Process(context.Background(), scanWith(models.Device{
		IP:     "192.168.1.23",
		Status: models.StatusOffline,
	}))
	require.NoError(t, err)
	assert.Empty(t, result.Analysis.Anomalies)
}

func TestProcessReplayFlagsNewDeviceOnce(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)
	scan := scanWith(onlineDevice("192.168.1.23", 22))

	first, err := p.Process(context.Background(), scan)
	require.NoError(t, err)
	require.Len(t, first.Analysis.Anomalies, 1)

	second, err := p.Process(context.Background(), scan)
	require.NoError(t, err)
	assert.Empty(t, second.Analysis.Anomalies)
}

func TestProcessFirstSightingFlagsSuspiciousPorts(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	result, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22, 3389)))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 2)

	assert.Equal(t, models.AnomalyNewDevice, result.Analysis.Anomalies[0].Type)

	a := result.Analysis.Anomalies[1]
	assert.Equal(t, models.AnomalyNewPortsOpened, a.Type)
	require.NotNil(t, a.PortChange)
	assert.Equal(t, []int{3389}, a.PortChange.Ports)
	assert.Equal(t, []int{22, 3389}, a.PortChange.AllNewPorts)
}

func TestProcessDetectsSuspiciousNewPort(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22, 80)))
	require.NoError(t, err)

	result, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22, 80, 3389)))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 1)

	a := result.Analysis.Anomalies[0]
	assert.Equal(t, models.AnomalyNewPortsOpened, a.Type)
	assert.Equal(t, models.SeverityMedium, a.Severity)
	assert.InDelta(t, 0.95, a.Confidence, 1e-9)
	require.NotNil(t, a.PortChange)
	assert.Equal(t, []int{3389}, a.PortChange.Ports)
	assert.Equal(t, []int{3389}, a.PortChange.AllNewPorts)
}

func TestProcessWhitelistedPortsDoNotAlert(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22)))
	require.NoError(t, err)

	result, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22, 80, 443)))
	require.NoError(t, err)
	assert.Empty(t, result.Analysis.Anomalies)
}

func TestProcessDetectsClosedPortsOnlineOnly(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22, 80)))
	require.NoError(t, err)

	offline := models.Device{IP: "192.168.1.50", Status: models.StatusOffline}
	p.Memory().SetUptime("192.168.1.50", 0.5)

	result, err := p.Process(context.Background(), scanWith(offline))
	require.NoError(t, err)
	assert.Empty(t, result.Analysis.Anomalies, "offline scan reports no ports; closure must not fire")

	result, err = p.Process(context.Background(), scanWith(onlineDevice("192.168.1.50", 22)))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 1)

	a := result.Analysis.Anomalies[0]
	assert.Equal(t, models.AnomalyPortsClosed, a.Type)
	assert.Equal(t, models.SeverityLow, a.Severity)
	assert.InDelta(t, 0.85, a.Confidence, 1e-9)
	require.NotNil(t, a.PortChange)
	assert.Equal(t, []int{80}, a.PortChange.Ports)
}

func TestProcessDetectsSuddenDowntime(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.10", 22)))
	require.NoError(t, err)

	p.Memory().SetUptime("192.168.1.10", 0.99)

	result, err := p.Process(context.Background(), scanWith(models.Device{
		IP:     "192.168.1.10",
		Status: models.StatusOffline,
	}))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 1)

	a := result.Analysis.Anomalies[0]
	assert.Equal(t, models.AnomalySuddenDowntime, a.Type)
	assert.Equal(t, models.SeverityHigh, a.Severity)
	assert.InDelta(t, 0.89, a.Confidence, 1e-9)
	require.NotNil(t, a.Downtime)
	assert.InDelta(t, 0.99, a.Downtime.PreviousUptime, 1e-9)
}

func TestProcessUnreliableDeviceDowntimeIgnored(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.10")))
	require.NoError(t, err)

	p.Memory().SetUptime("192.168.1.10", 0.80)

	result, err := p.Process(context.Background(), scanWith(models.Device{
		IP:     "192.168.1.10",
		Status: models.StatusOffline,
	}))
	require.NoError(t, err)
	assert.Empty(t, result.Analysis.Anomalies)
}

func TestProcessDetectsLatencySpike(t *testing.T) {
	ctrl := gomock.NewController(t)
	baselines := NewMockBaselineProvider(ctrl)
	baselines.EXPECT().
		BaselineFor("192.168.1.10", models.MetricResponseTime).
		Return(&models.BaselineSnapshot{Mean: 10, StdDev: 2, SampleCount: 500}, true).
		AnyTimes()

	p := newTestPipeline(t, nil, baselines, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.10", 22)))
	require.NoError(t, err)

	spike := onlineDevice("192.168.1.10", 22)
	spike.ResponseTimeMS = 26

	result, err := p.Process(context.Background(), scanWith(spike))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 1)

	a := result.Analysis.Anomalies[0]
	assert.Equal(t, models.AnomalyLatencySpike, a.Type)
	assert.Equal(t, models.SeverityLow, a.Severity)
	assert.InDelta(t, 0.75, a.Confidence, 1e-9)
	require.NotNil(t, a.Latency)
	assert.InDelta(t, 26, a.Latency.CurrentMS, 1e-9)
	assert.InDelta(t, 10, a.Latency.BaselineMS, 1e-9)
	assert.InDelta(t, 160, a.Latency.IncreasePercent, 1e-9)
}

func TestProcessLatencyAtThresholdNotFlagged(t *testing.T) {
	ctrl := gomock.NewController(t)
	baselines := NewMockBaselineProvider(ctrl)
	baselines.EXPECT().
		BaselineFor(gomock.Any(), gomock.Any()).
		Return(&models.BaselineSnapshot{Mean: 10, SampleCount: 500}, true).
		AnyTimes()

	p := newTestPipeline(t, nil, baselines, nil)

	_, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.10")))
	require.NoError(t, err)

	borderline := onlineDevice("192.168.1.10")
	borderline.ResponseTimeMS = 25

	result, err := p.Process(context.Background(), scanWith(borderline))
	require.NoError(t, err)
	assert.Empty(t, result.Analysis.Anomalies)
}

func TestProcessPersistsDevicesAndAnomalies(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)

	store.EXPECT().
		UpsertDevice(gomock.Any(), gomock.Any()).
		Return(int64(7), nil)
	store.EXPECT().
		AppendStatusHistory(gomock.Any(), int64(7), models.StatusOnline, 12.5, "scan-001").
		Return(nil)
	store.EXPECT().
		UpsertAnomaly(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *models.Anomaly) (int64, error) {
			assert.Equal(t, models.AnomalyNewDevice, a.Type)
			return 1, nil
		})

	p := newTestPipeline(t, store, nil, nil)

	device := onlineDevice("192.168.1.23", 22)
	device.ResponseTimeMS = 12.5

	_, err := p.Process(context.Background(), scanWith(device))
	require.NoError(t, err)
	assert.False(t, p.Degraded())
}

func TestProcessStoreFailureDegradesNotFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockService(ctrl)

	store.EXPECT().
		UpsertDevice(gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("connection refused")).
		AnyTimes()
	store.EXPECT().
		UpsertAnomaly(gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("connection refused")).
		AnyTimes()

	p := newTestPipeline(t, store, nil, nil)

	result, err := p.Process(context.Background(), scanWith(onlineDevice("192.168.1.23", 22)))
	require.NoError(t, err)
	require.Len(t, result.Analysis.Anomalies, 1)
	assert.True(t, p.Degraded())
}

func TestProcessSummaryStats(t *testing.T) {
	p := newTestPipeline(t, nil, nil, nil)

	fast := onlineDevice("10.0.0.1", 22)
	fast.ResponseTimeMS = 10
	slow := onlineDevice("10.0.0.2", 22)
	slow.ResponseTimeMS = 20
	down := models.Device{IP: "10.0.0.3", Status: models.StatusOffline}

	result, err := p.Process(context.Background(), scanWith(fast, slow, down))
	require.NoError(t, err)

	stats := result.Analysis.Stats
	assert.Equal(t, 3, stats.TotalDevices)
	assert.Equal(t, 2, stats.OnlineCount)
	assert.Equal(t, 1, stats.OfflineCount)
	assert.InDelta(t, 66.67, stats.AvailabilityPercent, 1e-9)
	assert.InDelta(t, 15, stats.AvgResponseTimeMS, 1e-9)
	assert.InDelta(t, 10, stats.MinResponseTimeMS, 1e-9)
	assert.InDelta(t, 20, stats.MaxResponseTimeMS, 1e-9)
	assert.InDelta(t, 7.07, stats.StdDevResponseMS, 1e-9)
}
