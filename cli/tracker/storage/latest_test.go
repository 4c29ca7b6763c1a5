package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestLatestStoreUpsertAndGet(t *testing.T) {
	s := NewLatestStore()

	_, ok := s.Get("dev-1")
	assert.False(t, ok)

	s.Upsert(telemetry.Fix{DeviceID: "dev-1", Latitude: 1, Longitude: 2, ReceivedTimestamp: 100})
	f, ok := s.Get("dev-1")
	assert.True(t, ok)
	assert.Equal(t, 1.0, f.Latitude)

	s.Upsert(telemetry.Fix{DeviceID: "dev-1", Latitude: 3, Longitude: 4, ReceivedTimestamp: 200})
	f, _ = s.Get("dev-1")
	assert.Equal(t, 3.0, f.Latitude)
	assert.Equal(t, int64(200), f.ReceivedTimestamp)
}

func TestLatestStoreUnconditionalOverwrite(t *testing.T) {
	// Upsert does not compare timestamps: a late-arriving older fix
	// overwrites a newer one. External callers rely on last-write-wins.
	s := NewLatestStore()

	s.Upsert(telemetry.Fix{DeviceID: "dev-1", Latitude: 3, ReceivedTimestamp: 200})
	s.Upsert(telemetry.Fix{DeviceID: "dev-1", Latitude: 1, ReceivedTimestamp: 100})

	f, ok := s.Get("dev-1")
	assert.True(t, ok)
	assert.Equal(t, int64(100), f.ReceivedTimestamp)
	assert.Equal(t, 1.0, f.Latitude)
}

func TestLatestStoreConcurrentDevices(t *testing.T) {
	s := NewLatestStore()

	const devices = 16
	const writes = 200

	var wg sync.WaitGroup
	for d := 0; d < devices; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			id := fmt.Sprintf("dev-%d", d)
			for i := 1; i <= writes; i++ {
				s.Upsert(telemetry.Fix{DeviceID: id, ReceivedTimestamp: int64(i)})
				_, _ = s.Get(id)
			}
		}(d)
	}
	wg.Wait()

	for d := 0; d < devices; d++ {
		f, ok := s.Get(fmt.Sprintf("dev-%d", d))
		assert.True(t, ok)
		assert.Equal(t, int64(writes), f.ReceivedTimestamp)
	}

	assert.Len(t, s.All(), devices)
}
