package events

import (
	"testing"
	"time"

	"github.com/poiesic/metasearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe(8)

	bus.Publish(StageEvent{SessionId: "s1", Stage: core.StageInitial})
	bus.Publish(StepEvent{StepId: "search", Status: StepStarted})

	first := <-ch
	stage, ok := first.(StageEvent)
	require.True(t, ok, "first event should be a StageEvent")
	assert.Equal(t, core.StageInitial, stage.Stage)

	second := <-ch
	step, ok := second.(StepEvent)
	require.True(t, ok, "second event should be a StepEvent")
	assert.Equal(t, "search", step.StepId)
}

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a := bus.Subscribe(4)
	b := bus.Subscribe(4)

	bus.Publish(BranchEvent{BranchId: "standard-path", Selected: true})

	for _, ch := range []<-chan Event{a, b} {
		event := <-ch
		branch, ok := event.(BranchEvent)
		require.True(t, ok)
		assert.True(t, branch.Selected)
	}
}

func TestBus_PreservesOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe(64)
	for i := 0; i < 50; i++ {
		bus.Publish(ProgressEvent{StepId: "search", Current: i, Total: 50})
	}

	for i := 0; i < 50; i++ {
		event := <-ch
		progress, ok := event.(ProgressEvent)
		require.True(t, ok)
		assert.Equal(t, i, progress.Current, "events must arrive in publication order")
	}
}

func TestBus_DropsWhenBufferFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe(1)
	bus.Publish(StepEvent{StepId: "planning", Status: StepStarted})
	bus.Publish(StepEvent{StepId: "planning", Status: StepCompleted}) // dropped

	event := <-ch
	step := event.(StepEvent)
	assert.Equal(t, StepStarted, step.Status)

	select {
	case _, open := <-ch:
		assert.False(t, open, "no second event should be delivered")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(4)

	bus.Publish(CustomEvent{Name: "warmup"})
	bus.Close()
	bus.Close() // idempotent
	bus.Publish(CustomEvent{Name: "late"})

	var received []Event
	for event := range ch {
		received = append(received, event)
	}
	require.Len(t, received, 1)
}

func TestBus_SubscribeAfterClose(t *testing.T) {
	bus := NewBus()
	bus.Close()

	ch := bus.Subscribe(4)
	_, open := <-ch
	assert.False(t, open, "subscription on a closed bus yields a closed channel")
}
