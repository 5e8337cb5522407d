package database

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/d60-Lab/gin-posts/pkg/metrics"
)

// Guard 串行化对共享数据库连接的访问：任意时刻只有一个操作在执行语句。
// 读写不区分，List 同样需要独占。等待不可取消，也没有超时。
type Guard struct {
	mu sync.Mutex

	acquisitions atomic.Int64
	contended    atomic.Int64
	waiting      atomic.Int64
}

// GuardStats 守卫的累计计数
type GuardStats struct {
	Acquisitions int64 // 成功获取次数
	Contended    int64 // 获取时需要等待的次数
	Waiting      int64 // 当前阻塞中的操作数
}

func NewGuard() *Guard { return &Guard{} }

// Do 在独占访问下执行 fn；无论 fn 返回错误还是 panic，锁都会被释放。
// ctx 不影响等待；fn 收到的是带 db.guard span 的子 context，语句 span 挂在其下。
func (g *Guard) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer("github.com/d60-Lab/gin-posts/pkg/database").Start(ctx, "db.guard "+op)
	defer span.End()

	start := time.Now()
	if !g.mu.TryLock() {
		g.contended.Add(1)
		g.waiting.Add(1)
		metrics.GuardWaiters.Inc()
		g.mu.Lock()
		metrics.GuardWaiters.Dec()
		g.waiting.Add(-1)
	}
	acquired := time.Now()
	g.acquisitions.Add(1)
	wait := acquired.Sub(start)
	metrics.GuardWaitSeconds.WithLabelValues(op).Observe(wait.Seconds())
	span.SetAttributes(attribute.Int64("db.guard.wait_us", wait.Microseconds()))

	defer func() {
		metrics.GuardHoldSeconds.WithLabelValues(op).Observe(time.Since(acquired).Seconds())
		g.mu.Unlock()
	}()
	return fn(ctx)
}

// Stats 返回采样值
func (g *Guard) Stats() GuardStats {
	return GuardStats{
		Acquisitions: g.acquisitions.Load(),
		Contended:    g.contended.Load(),
		Waiting:      g.waiting.Load(),
	}
}
