package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandscope/logoharvest/internal/progress"
)

type captureSink struct {
	mu     sync.Mutex
	events []progress.Event
	closed bool
}

func (c *captureSink) Consume(_ context.Context, batch []progress.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, batch...)
	return nil
}

func (c *captureSink) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func validEvent(stage progress.Stage) progress.Event {
	return progress.Event{
		RunID:  progress.UUIDToBytes(uuid.New()),
		TS:     time.Now().UTC(),
		Stage:  stage,
		Brand:  "acme",
		Status: "success",
	}
}

func TestHub_FlushesOnClose(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{MaxBatchWait: time.Hour}, sink)

	for i := 0; i < 10; i++ {
		hub.Emit(validEvent(progress.StageFetchDone))
	}
	require.NoError(t, hub.Close(context.Background()))

	assert.Equal(t, 10, sink.count())
	assert.True(t, sink.closed)
}

func TestHub_FlushesOnBatchSize(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{MaxBatchEvents: 5, MaxBatchWait: time.Hour}, sink)
	defer hub.Close(context.Background())

	for i := 0; i < 5; i++ {
		hub.Emit(validEvent(progress.StageAdmit))
	}
	require.Eventually(t, func() bool { return sink.count() == 5 }, time.Second, 10*time.Millisecond)
}

func TestHub_DropsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{}, sink)

	hub.Emit(progress.Event{}) // missing everything
	hub.Emit(progress.Event{
		RunID: progress.UUIDToBytes(uuid.New()),
		TS:    time.Now(),
		Stage: progress.Stage("BOGUS"),
	})
	require.NoError(t, hub.Close(context.Background()))
	assert.Zero(t, sink.count())
}

func TestHub_EmitAfterCloseIsIgnored(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := progress.NewHub(progress.Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(progress.StageRunDone))
	assert.Zero(t, sink.count())
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	id := progress.UUIDToBytes(uuid.New())
	now := time.Now()

	cases := []struct {
		name    string
		evt     progress.Event
		wantErr bool
	}{
		{"run start ok", progress.Event{RunID: id, TS: now, Stage: progress.StageRunStart}, false},
		{"missing run id", progress.Event{TS: now, Stage: progress.StageRunStart}, true},
		{"missing ts", progress.Event{RunID: id, Stage: progress.StageRunStart}, true},
		{"fetch done needs status", progress.Event{RunID: id, TS: now, Stage: progress.StageFetchDone, Brand: "acme"}, true},
		{"fetch done ok", progress.Event{RunID: id, TS: now, Stage: progress.StageFetchDone, Brand: "acme", Status: "success"}, false},
		{"admit needs brand", progress.Event{RunID: id, TS: now, Stage: progress.StageAdmit}, true},
		{"negative duration", progress.Event{RunID: id, TS: now, Stage: progress.StageRunDone, Dur: -time.Second}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.evt.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
