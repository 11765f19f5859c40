package crawlers

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer 在页面操作之间插入随机停顿,模拟人工操作节奏
type Pacer struct {
	enabled bool

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPacer enabled=false 时所有停顿立即返回
func NewPacer(enabled bool) *Pacer {
	return &Pacer{
		enabled: enabled,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Between 返回 [min, max] 内的随机时长
func (p *Pacer) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return min + time.Duration(p.rnd.Int63n(int64(max-min)+1))
}

// Pause 随机停顿,ctx 取消时提前返回
func (p *Pacer) Pause(ctx context.Context, min, max time.Duration) error {
	if !p.enabled {
		return ctx.Err()
	}
	return sleepCtx(ctx, p.Between(min, max))
}

// Sleep 固定停顿
func (p *Pacer) Sleep(ctx context.Context, d time.Duration) error {
	if !p.enabled {
		return ctx.Err()
	}
	return sleepCtx(ctx, d)
}

// Keystroke 两次按键之间的停顿(30-80毫秒)
func (p *Pacer) Keystroke(ctx context.Context) error {
	return p.Pause(ctx, 30*time.Millisecond, 80*time.Millisecond)
}

// Pick 从列表中随机选一个
func (p *Pacer) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return items[p.rnd.Intn(len(items))]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
