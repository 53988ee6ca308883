package signals

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetHandlers(t *testing.T) {
	t.Helper()
	mu.Lock()
	savedReload, savedInterrupt := reloaders, interrupters
	reloaders, interrupters = nil, nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		reloaders, interrupters = savedReload, savedInterrupt
		mu.Unlock()
	})
}

func TestRegisterNilHandler(t *testing.T) {
	resetHandlers(t)
	assert.Equal(t, HandlerID(-1), RegisterInterruptHandler(nil))
	assert.Equal(t, HandlerID(-1), RegisterReloadHandler(nil))
}

func TestInterruptHandlersRunInOrder(t *testing.T) {
	resetHandlers(t)
	var order []int
	RegisterInterruptHandler(func() { order = append(order, 1) })
	RegisterInterruptHandler(func() { order = append(order, 2) })

	dispatch(os.Interrupt)
	assert.Equal(t, []int{1, 2}, order)
}

func TestDeregisterInterruptHandler(t *testing.T) {
	resetHandlers(t)
	var calls int32
	id := RegisterInterruptHandler(func() { atomic.AddInt32(&calls, 1) })
	DeregisterInterruptHandler(id)

	dispatch(os.Interrupt)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	resetHandlers(t)
	called := false
	RegisterInterruptHandler(func() { panic("boom") })
	RegisterInterruptHandler(func() { called = true })

	assert.NotPanics(t, func() { dispatch(os.Interrupt) })
	assert.True(t, called)
}

func TestReloadHandlersIgnoreInterrupt(t *testing.T) {
	resetHandlers(t)
	reloaded := false
	id := RegisterReloadHandler(func() { reloaded = true })

	dispatch(os.Interrupt)
	assert.False(t, reloaded)

	DeregisterReloadHandler(id)
	mu.RLock()
	assert.Empty(t, reloaders)
	mu.RUnlock()
}

func TestHandleReturnsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Handle(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Handle did not return after cancel")
	}
}

func TestHandleDispatchesQueuedSignal(t *testing.T) {
	resetHandlers(t)
	got := make(chan struct{}, 1)
	RegisterInterruptHandler(func() { got <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Handle(ctx)
	sigChan <- os.Interrupt

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt handler not called")
	}
}
