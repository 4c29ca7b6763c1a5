package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishFix(h *Hub, device string, ts int64) {
	f := telemetry.Fix{DeviceID: device, ReceivedTimestamp: ts}
	h.Publish(&f)
}

func TestHubDeliversToSubscriber(t *testing.T) {
	h := New(4)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	publishFix(h, "dev-1", 100)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, EventLatest, ev.Type)

		var f telemetry.Fix
		require.NoError(t, json.Unmarshal(ev.Data, &f))
		assert.Equal(t, "dev-1", f.DeviceID)
		assert.Equal(t, int64(100), f.ReceivedTimestamp)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHubNoReplayForLateSubscriber(t *testing.T) {
	h := New(4)

	early := h.Subscribe()
	defer h.Unsubscribe(early)

	publishFix(h, "dev-1", 100)

	late := h.Subscribe()
	defer h.Unsubscribe(late)

	// The early subscriber sees the event, the late one does not
	select {
	case <-early.Events():
	case <-time.After(time.Second):
		t.Fatal("event not delivered to early subscriber")
	}

	select {
	case ev := <-late.Events():
		t.Fatalf("unexpected replayed event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := New(2)
	sub := h.Subscribe() // never read
	defer h.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			publishFix(h, "dev-1", int64(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestHubDropOldestOnOverflow(t *testing.T) {
	h := New(2)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	for ts := int64(1); ts <= 5; ts++ {
		publishFix(h, "dev-1", ts)
	}

	// Buffer of two keeps the most recent events
	var got []int64
	for len(got) < 2 {
		select {
		case ev := <-sub.Events():
			var f telemetry.Fix
			require.NoError(t, json.Unmarshal(ev.Data, &f))
			got = append(got, f.ReceivedTimestamp)
		case <-time.After(time.Second):
			t.Fatal("expected buffered events")
		}
	}
	assert.Equal(t, []int64{4, 5}, got)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := New(4)
	sub := h.Subscribe()

	h.Unsubscribe(sub)
	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Repeated unsubscribe is a no-op
	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Len())

	// Publishing with no subscribers is safe
	publishFix(h, "dev-1", 1)
}
