package airsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQueueFIFOPerAircraft verifies that records queued for the same
// aircraft during one tick come back out in emission order.
func TestQueueFIFOPerAircraft(t *testing.T) {
	s := sendingSession()

	// Tick second chosen so the freshly assigned group 1 is not due.
	first := testAircraft(42)
	s.BeginTick(time.Unix(1001, 0))
	s.EnqueueAircraft(first) // new: full detail
	moved := *first
	moved.Lat += 0.00001
	s.EnqueueAircraft(&moved) // cached now: delta
	s.EndTick()

	items := s.drainItems()
	require.Len(t, items, 3)
	assert.Equal(t, workAcDetail, items[0].kind)
	assert.Equal(t, workAcPosUpdate, items[1].kind)
	assert.Equal(t, workFlush, items[2].kind)
	assert.Equal(t, uint32(42), items[0].detail.ModeSID)
	assert.Equal(t, uint32(42), items[1].pos.ModeSID)
}

// TestEndTickSignalsOnce verifies one tick produces exactly one pending
// wake, however many aircraft were enqueued.
func TestEndTickSignalsOnce(t *testing.T) {
	s := sendingSession()

	s.BeginTick(time.Unix(0, 0))
	for id := uint32(1); id <= 50; id++ {
		s.EnqueueAircraft(testAircraft(id))
	}
	s.EndTick()

	select {
	case <-s.wake:
	default:
		t.Fatal("expected a pending wake signal")
	}
	select {
	case <-s.wake:
		t.Fatal("expected only a single wake signal")
	default:
	}
}

func TestDrainItemsEmptiesQueue(t *testing.T) {
	s := sendingSession()
	s.BeginTick(time.Unix(0, 0))
	s.EnqueueAircraft(testAircraft(1))
	s.EndTick()

	require.NotEmpty(t, s.drainItems())
	assert.Empty(t, s.drainItems())
}
