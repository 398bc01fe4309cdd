package workpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllTasks(t *testing.T) {
	p := New(4)
	defer p.Close()

	var (
		wg    sync.WaitGroup
		count atomic.Int64
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()

	assert.EqualValues(t, 100, count.Load())
}

func TestPool_DefaultSize(t *testing.T) {
	p := New(0)
	defer p.Close()
	assert.Positive(t, p.Size())
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()
	p.Close()

	err := p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPool_SubmitCancelled(t *testing.T) {
	p := New(1)
	defer p.Close()

	block := make(chan struct{})
	defer close(block)

	// Occupy the worker and fill the queue.
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() {
		close(started)
		<-block
	}))
	<-started
	for i := 0; i < 2; i++ {
		require.NoError(t, p.Submit(context.Background(), func() {}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}
