package events_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tripwise-agent/internal/adapters/events"
	"github.com/PabloGalante/tripwise-agent/internal/domain"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := events.NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, domain.EventTripPlanned)
	require.NoError(t, err)

	occurred := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(ctx, domain.Event{
		Type:       domain.EventTripPlanned,
		SessionID:  "s1",
		PlanID:     "p1",
		OccurredAt: occurred,
	}))
	// other topics are not delivered here
	require.NoError(t, bus.Publish(ctx, domain.Event{Type: domain.EventTripBooked, BookingID: "b1"}))

	select {
	case evt := <-ch:
		assert.Equal(t, domain.EventTripPlanned, evt.Type)
		assert.Equal(t, domain.PlanID("p1"), evt.PlanID)
		assert.True(t, evt.OccurredAt.Equal(occurred))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishRequiresType(t *testing.T) {
	bus := events.NewBus(nil)
	t.Cleanup(func() { _ = bus.Close() })

	err := bus.Publish(context.Background(), domain.Event{PlanID: "p1"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestLogEvents(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))
	bus := events.NewBus(logger)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, bus.LogEvents(ctx, domain.EventTripBooked))

	require.NoError(t, bus.Publish(ctx, domain.Event{Type: domain.EventTripBooked, BookingID: "b42"}))

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte(`"booking_id":"b42"`))
	}, 2*time.Second, 10*time.Millisecond)
}
