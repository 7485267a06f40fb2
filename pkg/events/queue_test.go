package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()

	for i := 0; i < 5; i++ {
		require.True(t, q.Put(NewEvent("Tick", fmt.Sprint(i), time.Time{}, nil)))
	}
	assert.Equal(t, 5, q.Len())

	for i := 0; i < 5; i++ {
		event, err := q.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i), event.ID)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PutNil(t *testing.T) {
	q := NewQueue()
	assert.False(t, q.Put(nil))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_GetBlocksUntilPut(t *testing.T) {
	q := NewQueue()

	result := make(chan *Event, 1)
	go func() {
		event, err := q.Get(context.Background())
		if err == nil {
			result <- event
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Put(NewEvent("KeyPressed", "1", time.Time{}, nil))

	select {
	case event := <-result:
		assert.Equal(t, "KeyPressed", event.Name)
	case <-time.After(time.Second):
		t.Fatal("Get did not wake up after Put")
	}
}

func TestQueue_GetContextCancelled(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event, err := q.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, event)
}

func TestQueue_GetTimeout(t *testing.T) {
	q := NewQueue()

	start := time.Now()
	event, err := q.GetTimeout(30 * time.Millisecond)
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Nil(t, event)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestQueue_TryGet(t *testing.T) {
	q := NewQueue()

	_, ok := q.TryGet()
	assert.False(t, ok)

	q.Put(NewEvent("KeyPressed", "1", time.Time{}, nil))
	event, ok := q.TryGet()
	assert.True(t, ok)
	assert.Equal(t, "1", event.ID)
}

func TestQueue_Close(t *testing.T) {
	t.Run("drains_before_closed_error", func(t *testing.T) {
		q := NewQueue()
		q.Put(NewEvent("KeyPressed", "1", time.Time{}, nil))
		require.NoError(t, q.Close())

		assert.False(t, q.Put(NewEvent("KeyPressed", "2", time.Time{}, nil)))

		event, err := q.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "1", event.ID)

		_, err = q.Get(context.Background())
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("wakes_blocked_readers", func(t *testing.T) {
		q := NewQueue()

		var wg sync.WaitGroup
		errs := make(chan error, 3)
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := q.Get(context.Background())
				errs <- err
			}()
		}

		time.Sleep(20 * time.Millisecond)
		require.NoError(t, q.Close())
		require.NoError(t, q.Close())
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.ErrorIs(t, err, ErrQueueClosed)
		}
	})
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	q := NewQueue()
	const producers, perProducer = 4, 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Put(NewEvent("Tick", fmt.Sprintf("%d-%d", p, i), time.Time{}, nil))
			}
		}(p)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(map[string]bool)
	for len(seen) < producers*perProducer {
		event, err := q.Get(ctx)
		require.NoError(t, err)
		seen[event.ID] = true
	}
	wg.Wait()

	assert.Len(t, seen, producers*perProducer)
	assert.Equal(t, 0, q.Len())
}
