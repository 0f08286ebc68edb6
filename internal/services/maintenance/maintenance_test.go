package maintenance_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/maintenance"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/memstore"
)

func enable(t *testing.T, st *memstore.Store, on bool, msg string) {
	t.Helper()
	s, err := st.GetSettings(context.Background())
	require.NoError(t, err)
	s.MaintenanceMode = on
	s.MaintenanceMessage = msg
	require.NoError(t, st.SaveSettings(context.Background(), s))
}

func TestCache_RespectsTTL(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	c := maintenance.NewCache(st, 30*time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	assert.False(t, c.Enabled(ctx))

	enable(t, st, true, "")
	now = now.Add(29 * time.Second)
	assert.False(t, c.Enabled(ctx), "stale value served inside the window")

	now = now.Add(2 * time.Second)
	got := c.Current(ctx)
	assert.True(t, got.Enabled)
	assert.Equal(t, maintenance.DefaultMessage, got.Message)
}

func TestCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	c := maintenance.NewCache(st, time.Hour)

	assert.False(t, c.Enabled(ctx))
	enable(t, st, true, "Voltamos às 18h")
	assert.False(t, c.Enabled(ctx))

	c.Invalidate()
	got := c.Current(ctx)
	assert.True(t, got.Enabled)
	assert.Equal(t, "Voltamos às 18h", got.Message)
}

// countingSettings counts store reads.
type countingSettings struct {
	*memstore.Store
	reads atomic.Int32
}

func (c *countingSettings) GetSettings(ctx context.Context) (*models.Settings, error) {
	c.reads.Add(1)
	return c.Store.GetSettings(ctx)
}

func TestCache_FailsOpen(t *testing.T) {
	ctx := context.Background()
	st := &countingSettings{Store: memstore.New()}
	c := maintenance.NewCache(st, 30*time.Second)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	enable(t, st.Store, true, "")
	require.True(t, c.Enabled(ctx))
	require.EqualValues(t, 1, st.reads.Load())

	st.SetSettingsErr(errors.New("connection refused"))
	c.Invalidate()
	for i := 0; i < 100; i++ {
		assert.False(t, c.Enabled(ctx))
		now = now.Add(100 * time.Millisecond)
	}
	assert.EqualValues(t, 2, st.reads.Load(), "one read for the whole outage window")

	st.SetSettingsErr(nil)
	assert.False(t, c.Enabled(ctx), "fail-open value served until the window ends")
	now = now.Add(30 * time.Second)
	assert.True(t, c.Enabled(ctx), "recovers on the next window")
	assert.EqualValues(t, 3, st.reads.Load())
}

// blockingSettings holds every read until release is closed.
type blockingSettings struct {
	*memstore.Store
	reads   atomic.Int32
	release chan struct{}
}

func (b *blockingSettings) GetSettings(ctx context.Context) (*models.Settings, error) {
	b.reads.Add(1)
	<-b.release
	return b.Store.GetSettings(ctx)
}

func TestCache_ConcurrentMissesShareOneRead(t *testing.T) {
	ctx := context.Background()
	st := &blockingSettings{Store: memstore.New(), release: make(chan struct{})}
	enable(t, st.Store, true, "")
	c := maintenance.NewCache(st, time.Minute)

	var wg sync.WaitGroup
	results := make([]bool, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Enabled(ctx)
		}(i)
	}
	// Invalidate must not wait behind the in-flight read
	done := make(chan struct{})
	go func() {
		c.Invalidate()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Invalidate blocked on the store read")
	}

	close(st.release)
	wg.Wait()
	for _, on := range results {
		assert.True(t, on)
	}
	assert.LessOrEqual(t, st.reads.Load(), int32(2))
}
