package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/daniil11ru/tracker/cli/tracker/devices"
	"github.com/daniil11ru/tracker/cli/tracker/hub"
	"github.com/daniil11ru/tracker/cli/tracker/storage"
	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saverFunc func(data interface{ ToBytes() ([]byte, error) }) error

func (f saverFunc) Save(data interface{ ToBytes() ([]byte, error) }) error {
	return f(data)
}

func newSaveFix() *SaveFix {
	return &SaveFix{
		Registry: devices.NewRegistry(),
		Latest:   storage.NewLatestStore(),
		Tracks:   storage.NewTrackStore(),
		Hub:      hub.New(4),
	}
}

func TestSaveFixUpdatesAllStores(t *testing.T) {
	d := newSaveFix()
	f := telemetry.Fix{
		DeviceID:          "dev-1",
		VehicleID:         "bus-1",
		Latitude:          55.75,
		Longitude:         37.61,
		ReceivedTimestamp: 100,
		SourceIP:          "10.0.0.1",
	}

	require.NoError(t, d.Run(f, true))

	latest, ok := d.Latest.Get("dev-1")
	assert.True(t, ok)
	assert.Equal(t, f, latest)

	track := d.Tracks.QueryByDevice("dev-1", 0, 200)
	require.Len(t, track, 1)
	assert.Equal(t, f, track[0])

	rec, ok := d.Registry.Get("dev-1")
	assert.True(t, ok)
	assert.Equal(t, "bus-1", rec.VehicleID)
	assert.Equal(t, int64(100), rec.LastSeenTs)
	assert.Equal(t, "10.0.0.1", rec.IP)
}

func TestSaveFixFillsVehicleFromRegistry(t *testing.T) {
	d := newSaveFix()
	d.Registry.Associate("dev-1", "bus-1")

	f := telemetry.Fix{DeviceID: "dev-1", Latitude: 1, Longitude: 2, ReceivedTimestamp: 100}
	require.NoError(t, d.Run(f, false))

	latest, _ := d.Latest.Get("dev-1")
	assert.Equal(t, "bus-1", latest.VehicleID)

	// The association in force at arrival time is baked into the track record
	d.Registry.Associate("dev-1", "bus-2")
	track := d.Tracks.QueryByDevice("dev-1", 0, 200)
	require.Len(t, track, 1)
	assert.Equal(t, "bus-1", track[0].VehicleID)
}

func TestSaveFixRejectsEmptyDeviceID(t *testing.T) {
	d := newSaveFix()
	assert.Error(t, d.Run(telemetry.Fix{Latitude: 1, Longitude: 2}, false))
	assert.Empty(t, d.Latest.All())
}

func TestSaveFixSinkErrorDoesNotBlock(t *testing.T) {
	d := newSaveFix()
	d.Sinks = saverFunc(func(data interface{ ToBytes() ([]byte, error) }) error {
		return errors.New("sink is down")
	})

	f := telemetry.Fix{DeviceID: "dev-1", Latitude: 1, Longitude: 2, ReceivedTimestamp: 100}
	require.NoError(t, d.Run(f, false))

	_, ok := d.Latest.Get("dev-1")
	assert.True(t, ok)
}

func TestSaveFixPublishesToHub(t *testing.T) {
	d := newSaveFix()
	sub := d.Hub.Subscribe()
	defer d.Hub.Unsubscribe(sub)

	f := telemetry.Fix{DeviceID: "dev-1", VehicleID: "bus-1", Latitude: 1, Longitude: 2, ReceivedTimestamp: 100}
	require.NoError(t, d.Run(f, true))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, hub.EventLatest, ev.Type)
		var got telemetry.Fix
		require.NoError(t, json.Unmarshal(ev.Data, &got))
		assert.Equal(t, f, got)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}
