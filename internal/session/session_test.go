package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kartoza/boolnet-studio/internal/form"
	"github.com/kartoza/boolnet-studio/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	calls  []form.NetworkConfiguration
	points []models.ScatterPoint
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, cfg form.NetworkConfiguration) ([]models.ScatterPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cfg)
	return f.points, f.err
}

var andPoints = []models.ScatterPoint{
	{X: 0, Y: 0, Z: 0.1},
	{X: 0, Y: 1, Z: 0.9},
	{X: 1, Y: 0, Z: 0.9},
	{X: 1, Y: 1, Z: 0.95},
}

func TestNewSession(t *testing.T) {
	st := New(&fakeDispatcher{}).Snapshot()

	assert.Equal(t, Configuring, st.View)
	assert.Equal(t, form.Default(), st.Config)
	assert.Empty(t, st.Points)
}

func TestSubmitHomeRoundTrip(t *testing.T) {
	d := &fakeDispatcher{points: andPoints}
	s := New(d)
	s.Update(func(c *form.NetworkConfiguration) { c.SetEpochs("250") })
	before := s.Snapshot().Config

	st, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Viewing, st.View)
	assert.Equal(t, andPoints, st.Points)
	require.Len(t, d.calls, 1)
	assert.Equal(t, before, d.calls[0])

	st = s.Home()
	assert.Equal(t, Configuring, st.View)
	assert.Empty(t, st.Points)
	assert.Equal(t, before, st.Config)
}

func TestSubmitFailureKeepsState(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("connection refused")}
	s := New(d)
	s.Update(func(c *form.NetworkConfiguration) { c.SetLayerCount("3") })
	before := s.Snapshot()

	st, err := s.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, before, st)
	assert.Equal(t, Configuring, s.Snapshot().View)
}

func TestSubmitFailureWhileViewing(t *testing.T) {
	d := &fakeDispatcher{points: andPoints}
	s := New(d)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	d.err = errors.New("timeout")
	st, err := s.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Viewing, st.View)
	assert.Equal(t, andPoints, st.Points)
}

func TestSubmitEmptyResult(t *testing.T) {
	s := New(&fakeDispatcher{points: []models.ScatterPoint{}})

	st, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Viewing, st.View)
	assert.Empty(t, st.Points)
}

func TestSubmitReplacesPreviousResult(t *testing.T) {
	d := &fakeDispatcher{points: andPoints}
	s := New(d)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	d.points = andPoints[:1]
	st, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.Points, 1)
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := New(&fakeDispatcher{points: andPoints})
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	st := s.Snapshot()
	st.Config.Layers[0].OutputNeurons = 99
	st.Points[0].Z = 42

	again := s.Snapshot()
	assert.Equal(t, 4, again.Config.Layers[0].OutputNeurons)
	assert.Equal(t, 0.1, again.Points[0].Z)
}

// blockingDispatcher answers each call with the points it is released with
type blockingDispatcher struct {
	started chan struct{}
	release chan []models.ScatterPoint
}

func (b *blockingDispatcher) Dispatch(ctx context.Context, _ form.NetworkConfiguration) ([]models.ScatterPoint, error) {
	b.started <- struct{}{}
	select {
	case p := <-b.release:
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestOverlappingSubmitsLastResponseWins(t *testing.T) {
	d := &blockingDispatcher{started: make(chan struct{}), release: make(chan []models.ScatterPoint)}
	s := New(d)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Submit(context.Background())
		}()
	}
	<-d.started
	<-d.started

	// The form stays editable while requests are pending.
	done := make(chan struct{})
	go func() {
		s.Update(func(c *form.NetworkConfiguration) { c.SetOptimizer("sgd") })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Update blocked while a submit was pending")
	}

	d.release <- andPoints
	require.Eventually(t, func() bool { return len(s.Snapshot().Points) == 4 }, time.Second, time.Millisecond)
	d.release <- andPoints[:2]
	wg.Wait()

	st := s.Snapshot()
	assert.Equal(t, Viewing, st.View)
	assert.Equal(t, andPoints[:2], st.Points)
	assert.Equal(t, form.OptimizerSGD, st.Config.Optimizer)
}
