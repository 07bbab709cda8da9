package pool_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ormkit/ormkit/dialect/sql/pool"
)

func newTestPool(t *testing.T, maxSize int) *pool.Pool {
	t.Helper()
	p := pool.New(
		pool.WithMaxSize(maxSize),
		pool.WithIdleTime(20*time.Millisecond),
		pool.WithMonitorSleep(5*time.Millisecond),
	)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestGetOpensAndReusesConnection(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	p.AddSource(pool.Source{ID: "main", Dialect: "sqlite", DSN: ":memory:"})

	c1, err := p.Get(context.Background(), "main", time.Second)
	require.NoError(t, err)
	require.NotNil(t, c1.Driver)
	drv1 := c1.Driver
	c1.Put(false)

	c2, err := p.Get(context.Background(), "main", time.Second)
	require.NoError(t, err)
	assert.Same(t, drv1, c2.Driver, "a second checkout should reuse the same open driver")
	c2.Put(false)
}

func TestGetUnknownSourceErrors(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	_, err := p.Get(context.Background(), "nope", time.Second)
	assert.Error(t, err)
}

func TestGetBlocksUntilSlotFreed(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	p.AddSource(pool.Source{ID: "main", Dialect: "sqlite", DSN: ":memory:"})

	c1, err := p.Get(context.Background(), "main", time.Second)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		c2, err := p.Get(context.Background(), "main", 200*time.Millisecond)
		if err == nil {
			c2.Put(false)
		}
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("second Get should have blocked while first checkout is held, got err=%v", err)
	case <-time.After(20 * time.Millisecond):
	}

	c1.Put(false)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second Get never unblocked after Put")
	}
}

func TestGetTimesOutWhenPoolExhausted(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	p.AddSource(pool.Source{ID: "main", Dialect: "sqlite", DSN: ":memory:"})

	c1, err := p.Get(context.Background(), "main", time.Second)
	require.NoError(t, err)
	defer c1.Put(false)

	_, err = p.Get(context.Background(), "main", 10*time.Millisecond)
	assert.Error(t, err)
}

func TestStatsReportsInUseCount(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 2)
	p.AddSource(pool.Source{ID: "main", Dialect: "sqlite", DSN: ":memory:"})

	assert.Equal(t, 0, p.Stats("main").InUse)
	c, err := p.Get(context.Background(), "main", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats("main").InUse)
	c.Put(false)
	assert.Equal(t, 0, p.Stats("main").InUse)
}

func TestCloseNowClosesUnderlyingConnection(t *testing.T) {
	t.Parallel()

	p := newTestPool(t, 1)
	p.AddSource(pool.Source{ID: "main", Dialect: "sqlite", DSN: ":memory:"})

	c, err := p.Get(context.Background(), "main", time.Second)
	require.NoError(t, err)
	c.Put(true)

	assert.False(t, p.Stats("main").Open, "close_now should drop the cached driver")
}
