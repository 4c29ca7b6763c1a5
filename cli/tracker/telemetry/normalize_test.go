package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "Within range is a fixed point", value: 45.5, min: -90, max: 90, expected: 45.5},
		{name: "Above max saturates", value: 200, min: -90, max: 90, expected: 90},
		{name: "Below min saturates", value: -500, min: -180, max: 180, expected: -180},
		{name: "Exact boundary kept", value: 90, min: -90, max: 90, expected: 90},
		{name: "Zero kept", value: 0, min: -180, max: 180, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.value, tt.min, tt.max))
			// Clamping is idempotent
			assert.Equal(t, tt.expected, Clamp(Clamp(tt.value, tt.min, tt.max), tt.min, tt.max))
		})
	}
}

func TestNormalize(t *testing.T) {
	// Mock arrival timestamp assignment
	originalNow := now
	now = func() int64 { return 1700000000000 }
	defer func() { now = originalNow }()

	tests := []struct {
		name        string
		line        string
		expectError error
		expected    Fix
		hasVehicle  bool
	}{
		{
			name: "Full valid record",
			line: `{"Id":"dev-1","vId":"bus-42","lt":55.75,"ln":37.61,"s":12.5,"h":270}`,
			expected: Fix{
				DeviceID:          "dev-1",
				VehicleID:         "bus-42",
				Latitude:          55.75,
				Longitude:         37.61,
				Speed:             12.5,
				Heading:           270,
				ReceivedTimestamp: 1700000000000,
				SourceIP:          "10.0.0.1",
			},
			hasVehicle: true,
		},
		{
			name: "Out-of-range coordinates are clamped",
			line: `{"Id":"dev-1","lt":200,"ln":-500}`,
			expected: Fix{
				DeviceID:          "dev-1",
				Latitude:          90,
				Longitude:         -180,
				ReceivedTimestamp: 1700000000000,
				SourceIP:          "10.0.0.1",
			},
		},
		{
			name: "Missing speed and heading default to zero",
			line: `{"Id":"dev-1","lt":1,"ln":2}`,
			expected: Fix{
				DeviceID:          "dev-1",
				Latitude:          1,
				Longitude:         2,
				ReceivedTimestamp: 1700000000000,
				SourceIP:          "10.0.0.1",
			},
		},
		{
			name:        "Invalid JSON",
			line:        `{"Id":"dev-1",`,
			expectError: ErrBadPayload,
		},
		{
			name:        "Missing device identifier",
			line:        `{"lt":1,"ln":2}`,
			expectError: ErrNoDeviceID,
		},
		{
			name:        "Empty device identifier",
			line:        `{"Id":"","lt":1,"ln":2}`,
			expectError: ErrNoDeviceID,
		},
		{
			name:        "Non-numeric latitude",
			line:        `{"Id":"dev-1","lt":"abc","ln":2}`,
			expectError: ErrBadPayload,
		},
		{
			name:        "Missing longitude",
			line:        `{"Id":"dev-1","lt":1}`,
			expectError: ErrNoCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, hasVehicle, err := Normalize([]byte(tt.line), "10.0.0.1")

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}

			if assert.NoError(t, err) {
				assert.Equal(t, tt.expected, f)
				assert.Equal(t, tt.hasVehicle, hasVehicle)
			}
		})
	}
}

func TestNormalizeTimestampNotFromPayload(t *testing.T) {
	originalNow := now
	now = func() int64 { return 42 }
	defer func() { now = originalNow }()

	// A ts field in the payload must be ignored: arrival time is assigned by the normalizer
	f, _, err := Normalize([]byte(`{"Id":"dev-1","lt":1,"ln":2,"ts":999999}`), "10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), f.ReceivedTimestamp)
}

func TestFixToBytes(t *testing.T) {
	f := Fix{DeviceID: "dev-1", Latitude: 1.5, Longitude: 2.5, ReceivedTimestamp: 7, SourceIP: "10.0.0.1"}
	data, err := f.ToBytes()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"Id":"dev-1"`)
	assert.Contains(t, string(data), `"ts":7`)
	assert.Contains(t, string(data), `"ip":"10.0.0.1"`)
}
