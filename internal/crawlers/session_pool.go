package crawlers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/config"
	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// 会话池默认参数
const (
	DefaultIdleTimeout     = 600 * time.Second
	DefaultLivenessTimeout = 5 * time.Second
)

// SessionPoolConfig 会话池配置
type SessionPoolConfig struct {
	IdleTimeout     time.Duration
	LivenessTimeout time.Duration
	Monitor         *ResourceMonitor // 可选,启动浏览器前做资源检查
}

// SessionPool 管理唯一的浏览器会话
// 会话按需创建,空闲超时或失去响应后在下一次获取时重建
type SessionPool struct {
	engine Engine
	cfg    SessionPoolConfig

	now    func() time.Time
	pickUA func() string

	// mu 保护 session/lastUsed/closed/launching,复用、重建、过期的判断都在锁内完成
	mu        sync.Mutex
	session   Session
	lastUsed  time.Time
	closed    bool
	built     int
	launching chan struct{} // 非空表示正在启动浏览器,关闭时唤醒等待者

	active atomic.Int64
}

// NewSessionPool 创建会话池,不会立即启动浏览器
func NewSessionPool(engine Engine, cfg SessionPoolConfig) *SessionPool {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = DefaultLivenessTimeout
	}
	pacer := NewPacer(true)
	return &SessionPool{
		engine: engine,
		cfg:    cfg,
		now:    time.Now,
		pickUA: func() string { return pacer.Pick(config.UserAgents) },
	}
}

// Lease 一次操作独占的标签页
type Lease struct {
	ID   string
	Page Page

	pool *SessionPool
	once sync.Once
}

// Release 关闭标签页,可重复调用
func (l *Lease) Release() {
	l.once.Do(func() {
		if err := l.Page.Close(); err != nil {
			log.Debug().Err(err).Str("lease", l.ID).Msg("关闭标签页失败")
		}
		l.pool.active.Add(-1)
	})
}

// AcquirePage 获取一个新标签页
// 打开标签页失败时视为会话失效,重建后再试一次
func (sp *SessionPool) AcquirePage(ctx context.Context) (*Lease, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		session, err := sp.currentSession(ctx)
		if err != nil {
			return nil, err
		}

		page, err := session.NewPage(ctx, sp.pickUA())
		if err == nil {
			sp.active.Add(1)
			return &Lease{ID: uuid.NewString(), Page: page, pool: sp}, nil
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("打开标签页失败,浏览器可能已崩溃")
		sp.invalidate(session)
	}
	return nil, fmt.Errorf("获取标签页失败: %w", lastErr)
}

// currentSession 返回可用会话,必要时关闭旧会话并创建新会话
// 锁内只做复用/重建/过期的判断,启动浏览器由唯一的胜出者在锁外完成,其他调用等待
func (sp *SessionPool) currentSession(ctx context.Context) (Session, error) {
	for {
		sp.mu.Lock()
		if sp.closed {
			sp.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if wait := sp.launching; wait != nil {
			sp.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		now := sp.now()
		if sp.session != nil {
			idle := now.Sub(sp.lastUsed)
			switch {
			case idle > sp.cfg.IdleTimeout:
				log.Info().Dur("idle", idle).Msg("浏览器空闲超时,重新创建")
				sp.closeSessionLocked()
			case !sp.session.Alive(sp.cfg.LivenessTimeout):
				log.Warn().Msg("浏览器无响应,重新创建")
				sp.closeSessionLocked()
			}
		}

		if sp.session != nil {
			sp.lastUsed = now
			session := sp.session
			sp.mu.Unlock()
			return session, nil
		}

		done := make(chan struct{})
		sp.launching = done
		sp.mu.Unlock()
		return sp.launch(ctx, done)
	}
}

// launch 在锁外启动浏览器,完成后安装会话并唤醒等待者
func (sp *SessionPool) launch(ctx context.Context, done chan struct{}) (Session, error) {
	defer close(done)

	if sp.cfg.Monitor != nil {
		if ok, reason := sp.cfg.Monitor.CheckBeforeLaunch(); !ok {
			log.Warn().Msg(reason)
		}
	}

	var session Session
	err := ctx.Err()
	if err == nil {
		session, err = sp.engine.Launch(ctx)
	}

	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.launching = nil
	if err != nil {
		return nil, err
	}
	// 启动期间会话池已关闭
	if sp.closed {
		if cerr := session.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("关闭浏览器会话失败")
		}
		return nil, ErrPoolClosed
	}

	sp.session = session
	sp.built++
	sp.lastUsed = sp.now()
	log.Debug().Int("sessions_built", sp.built).Msg("浏览器会话已创建")
	return session, nil
}

// invalidate 丢弃指定会话(若仍是当前会话)
func (sp *SessionPool) invalidate(session Session) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.session == session {
		sp.closeSessionLocked()
	}
}

func (sp *SessionPool) closeSessionLocked() {
	if sp.session == nil {
		return
	}
	if err := sp.session.Close(); err != nil {
		log.Debug().Err(err).Msg("关闭浏览器会话失败")
	}
	sp.session = nil
}

// Shutdown 关闭会话和浏览器进程,可重复调用,不返回错误
func (sp *SessionPool) Shutdown() {
	sp.mu.Lock()
	if sp.closed {
		sp.mu.Unlock()
		return
	}
	sp.closed = true
	sp.closeSessionLocked()
	sp.mu.Unlock()

	if err := sp.engine.Stop(); err != nil {
		log.Debug().Err(err).Msg("停止浏览器引擎失败")
	}
	log.Debug().Msg("会话池已关闭")
}

// Stats 会话池状态快照,不做存活探测
func (sp *SessionPool) Stats() models.PoolStats {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	stats := models.PoolStats{
		SessionAlive:  sp.session != nil,
		IdleTimeout:   sp.cfg.IdleTimeout.Seconds(),
		ActiveLeases:  int(sp.active.Load()),
		SessionsBuilt: sp.built,
		Closed:        sp.closed,
	}
	if sp.session != nil {
		stats.IdleSeconds = sp.now().Sub(sp.lastUsed).Seconds()
	}
	return stats
}
