package otel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counts(evs []Event) []int {
	out := make([]int, len(evs))
	for i, e := range evs {
		out[i] = e.Count
	}
	return out
}

func pushN(r *RingBuffer, n int) {
	for i := 0; i < n; i++ {
		r.Push(Event{Kind: KindLoadStart, Count: i})
	}
}

func TestRingBufferOrder(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		pushed int
		last   int
		want   []int
	}{
		{"partial", 8, 5, 3, []int{2, 3, 4}},
		{"exactly full", 4, 4, 4, []int{0, 1, 2, 3}},
		{"wrapped", 4, 6, 2, []int{4, 5}},
		{"wrapped twice", 3, 10, 3, []int{7, 8, 9}},
		{"more than held", 8, 2, 100, []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRingBuffer(tt.size)
			pushN(r, tt.pushed)
			assert.Equal(t, tt.want, counts(r.Last(tt.last)))
			assert.Equal(t, min(tt.pushed, tt.size), r.Len())
		})
	}
}

func TestSnapshotEvictsOldest(t *testing.T) {
	r := NewRingBuffer(4)
	assert.Nil(t, r.Snapshot())

	pushN(r, 8)
	assert.Equal(t, []int{4, 5, 6, 7}, counts(r.Snapshot()))
}

func TestLastNonPositive(t *testing.T) {
	r := NewRingBuffer(8)
	pushN(r, 2)
	assert.Nil(t, r.Last(0))
	assert.Nil(t, r.Last(-1))
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultRingSize, NewRingBuffer(0).Cap())
	assert.Equal(t, DefaultRingSize, NewRingBuffer(-3).Cap())
	assert.Equal(t, 64, NewRingBuffer(64).Cap())
}

func TestStatsByKind(t *testing.T) {
	r := NewRingBuffer(4)
	// the first two are evicted
	for _, k := range []EventKind{KindLoadStale, KindLoadStale, KindLoadStart, KindFetchError, KindFetchError, KindLoadReady} {
		r.Push(Event{Kind: k})
	}

	stats := r.Stats()
	assert.Equal(t, 0, stats[KindLoadStale])
	assert.Equal(t, 1, stats[KindLoadStart])
	assert.Equal(t, 2, stats[KindFetchError])
	assert.Equal(t, 1, stats[KindLoadReady])
}

func TestPushClonesExtra(t *testing.T) {
	r := NewRingBuffer(4)
	extra := map[string]any{"item": "abc"}
	r.Push(Event{Kind: KindVoteStub, Extra: extra})
	extra["item"] = "changed"

	assert.Equal(t, "abc", r.Snapshot()[0].Extra["item"])
}

func TestLastMatchingSkipsNoise(t *testing.T) {
	r := NewRingBuffer(6)
	for i := 0; i < 9; i++ {
		kind := KindKeyPress
		if i%3 == 0 {
			kind = KindLoadReady
		}
		r.Push(Event{Kind: kind, Count: i})
	}

	// buffer holds 3..8; non-key events among them are 3 and 6
	got := r.LastMatching(5, func(e Event) bool { return e.Kind != KindKeyPress })
	assert.Equal(t, []int{3, 6}, counts(got))
	assert.Equal(t, []int{7, 8}, counts(r.LastMatching(2, nil)))
}

func TestByActivation(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindLoadStart, ActivationID: "a1"})
	r.Push(Event{Kind: KindLoadStart, ActivationID: "a2"})
	r.Push(Event{Kind: KindLoadStale, ActivationID: "a1"})

	got := r.ByActivation("a1")
	require.Len(t, got, 2)
	assert.Equal(t, KindLoadStart, got[0].Kind)
	assert.Equal(t, KindLoadStale, got[1].Kind)
	assert.Nil(t, r.ByActivation(""))
}

func TestRingBufferConcurrentUse(t *testing.T) {
	r := NewRingBuffer(256)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			pushN(r, 100)
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Snapshot()
				_ = r.Stats()
				_ = r.ByActivation("x")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 256, r.Len())
}

func TestRingBufferFedByLogger(t *testing.T) {
	r := NewRingBuffer(16)
	l := NewLogger(discard{})
	l.SetRingBuffer(r)

	l.Emit(Event{Kind: KindStartup})
	l.Emit(Event{Kind: KindShutdown})
	l.Close()

	got := r.Last(2)
	require.Len(t, got, 2)
	assert.Equal(t, KindStartup, got[0].Kind)
	assert.Equal(t, KindShutdown, got[1].Kind)
	assert.Equal(t, l.SessionID(), got[0].SessionID)
}
