package crawlers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	id        int
	alive     atomic.Bool
	closed    atomic.Int32
	failPages atomic.Int32 // 剩余需要失败的 NewPage 次数

	mu  sync.Mutex
	uas []string
}

func (s *fakeSession) NewPage(_ context.Context, userAgent string) (Page, error) {
	if s.failPages.Add(-1) >= 0 {
		return nil, errors.New("target crashed")
	}
	s.mu.Lock()
	s.uas = append(s.uas, userAgent)
	s.mu.Unlock()
	return NewHTMLPage("about:blank", nil), nil
}

func (s *fakeSession) Alive(time.Duration) bool { return s.alive.Load() }

func (s *fakeSession) Close() error {
	s.closed.Add(1)
	s.alive.Store(false)
	return nil
}

type fakeEngine struct {
	mu        sync.Mutex
	sessions  []*fakeSession
	stops     int
	launchErr error
	delay     time.Duration
	prepare   func(*fakeSession)

	started chan struct{} // 非空时 Launch 开始后发送通知
	gate    chan struct{} // 非空时 Launch 阻塞到其关闭
}

func (e *fakeEngine) Launch(context.Context) (Session, error) {
	if e.started != nil {
		e.started <- struct{}{}
	}
	if e.gate != nil {
		<-e.gate
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	s := &fakeSession{id: len(e.sessions) + 1}
	s.alive.Store(true)
	if e.prepare != nil {
		e.prepare(s)
	}
	e.sessions = append(e.sessions, s)
	return s, nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	return errors.New("already stopped")
}

func (e *fakeEngine) launched() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestPool(engine Engine) (*SessionPool, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	pool := NewSessionPool(engine, SessionPoolConfig{})
	pool.now = clock.Now
	return pool, clock
}

func TestSessionPool_LazyCreateAndReuse(t *testing.T) {
	engine := &fakeEngine{}
	pool, clock := newTestPool(engine)
	assert.Equal(t, 0, engine.launched(), "创建会话池时不应启动浏览器")

	l1, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	l1.Release()

	clock.Advance(599 * time.Second)
	l2, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	l2.Release()

	assert.Equal(t, 1, engine.launched(), "空闲未超时应复用会话")
	assert.NotEqual(t, l1.ID, l2.ID)
}

func TestSessionPool_IdleExpiryRecreates(t *testing.T) {
	engine := &fakeEngine{}
	pool, clock := newTestPool(engine)

	l1, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	l1.Release()

	clock.Advance(601 * time.Second)
	l2, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	l2.Release()

	require.Equal(t, 2, engine.launched())
	assert.Equal(t, int32(1), engine.sessions[0].closed.Load(), "过期会话应被关闭")
}

func TestSessionPool_DeadSessionRecreates(t *testing.T) {
	engine := &fakeEngine{}
	pool, _ := newTestPool(engine)

	l1, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	l1.Release()

	engine.sessions[0].alive.Store(false)

	l2, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	l2.Release()
	assert.Equal(t, 2, engine.launched())
}

func TestSessionPool_PageFailureRetriesOnce(t *testing.T) {
	first := true
	engine := &fakeEngine{prepare: func(s *fakeSession) {
		if first {
			s.failPages.Store(1)
			first = false
		}
	}}
	pool, _ := newTestPool(engine)

	lease, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	lease.Release()
	assert.Equal(t, 2, engine.launched())
	assert.Equal(t, int32(1), engine.sessions[0].closed.Load())
}

func TestSessionPool_LaunchFailure(t *testing.T) {
	engine := &fakeEngine{launchErr: errors.New("chrome not found")}
	pool, _ := newTestPool(engine)

	_, err := pool.AcquirePage(context.Background())
	assert.Error(t, err)

	engine.mu.Lock()
	engine.launchErr = nil
	engine.mu.Unlock()

	lease, err := pool.AcquirePage(context.Background())
	require.NoError(t, err, "启动失败后下一次获取应重新尝试")
	lease.Release()
}

func TestSessionPool_ConcurrentAcquireSingleSession(t *testing.T) {
	engine := &fakeEngine{delay: 20 * time.Millisecond}
	pool, _ := newTestPool(engine)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := pool.AcquirePage(context.Background())
			if err != nil {
				errs <- err
				return
			}
			lease.Release()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("并发获取失败: %v", err)
	}
	assert.Equal(t, 1, engine.launched(), "并发获取只能创建一个会话")
	assert.Equal(t, 0, pool.Stats().ActiveLeases)
}

func TestSessionPool_ShutdownIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	pool, _ := newTestPool(engine)

	lease, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	lease.Release()

	assert.NotPanics(t, func() {
		pool.Shutdown()
		pool.Shutdown()
	})
	assert.Equal(t, 1, engine.stops)
	assert.Equal(t, int32(1), engine.sessions[0].closed.Load())

	_, err = pool.AcquirePage(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.True(t, pool.Stats().Closed)
}

func TestLease_ReleaseIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	pool, _ := newTestPool(engine)

	lease, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Stats().ActiveLeases)

	lease.Release()
	lease.Release()
	assert.Equal(t, 0, pool.Stats().ActiveLeases)
	assert.True(t, lease.Page.(*HTMLPage).Closed())
}

func TestSessionPool_UserAgentFromPool(t *testing.T) {
	engine := &fakeEngine{}
	pool, _ := newTestPool(engine)

	for i := 0; i < 10; i++ {
		lease, err := pool.AcquirePage(context.Background())
		require.NoError(t, err)
		lease.Release()
	}
	for _, ua := range engine.sessions[0].uas {
		assert.Contains(t, config.UserAgents, ua)
	}
}

func TestSessionPool_Stats(t *testing.T) {
	engine := &fakeEngine{}
	pool, clock := newTestPool(engine)

	stats := pool.Stats()
	assert.False(t, stats.SessionAlive)
	assert.Equal(t, 600.0, stats.IdleTimeout)

	lease, err := pool.AcquirePage(context.Background())
	require.NoError(t, err)
	lease.Release()
	clock.Advance(30 * time.Second)

	stats = pool.Stats()
	assert.True(t, stats.SessionAlive)
	assert.Equal(t, 30.0, stats.IdleSeconds)
	assert.Equal(t, 1, stats.SessionsBuilt)
}

func TestSessionPool_LaunchOutsideLock(t *testing.T) {
	engine := &fakeEngine{started: make(chan struct{}, 1), gate: make(chan struct{})}
	pool, _ := newTestPool(engine)

	result := make(chan error, 1)
	go func() {
		lease, err := pool.AcquirePage(context.Background())
		if err == nil {
			lease.Release()
		}
		result <- err
	}()
	<-engine.started

	// 启动浏览器期间其他调用不被阻塞
	statsDone := make(chan struct{})
	go func() {
		_ = pool.Stats()
		close(statsDone)
	}()
	select {
	case <-statsDone:
	case <-time.After(time.Second):
		t.Fatal("启动浏览器时持有了会话池锁")
	}

	// 等待者可以随自己的 ctx 放弃
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := pool.AcquirePage(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(engine.gate)
	require.NoError(t, <-result)
	assert.Equal(t, 1, engine.launched())
}

func TestSessionPool_ShutdownDuringLaunch(t *testing.T) {
	engine := &fakeEngine{started: make(chan struct{}, 1), gate: make(chan struct{})}
	pool, _ := newTestPool(engine)

	result := make(chan error, 1)
	go func() {
		_, err := pool.AcquirePage(context.Background())
		result <- err
	}()
	<-engine.started

	pool.Shutdown()
	close(engine.gate)

	assert.ErrorIs(t, <-result, ErrPoolClosed)
	require.Equal(t, 1, engine.launched())
	assert.Equal(t, int32(1), engine.sessions[0].closed.Load(), "关闭后启动完成的会话必须关掉")
	assert.False(t, pool.Stats().SessionAlive)
}
