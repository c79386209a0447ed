package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/peerstate"
	"github.com/dep2p/go-disservice/internal/core/worldstate"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
)

var logger = log.Logger("app")

// ErrMaintainerStarted 周期任务已在运行
var ErrMaintainerStarted = errors.New("app: maintainer already started")

// HistoryPruner 可清理去重历史的转发控制器
type HistoryPruner interface {
	PruneHistory() int
}

// task 一个周期任务
type task struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
}

// Maintainer 周期维护驱动
//
// 按配置间隔在注入的时钟上运行：
// - 淘汰失联邻居（UpdateNeighbors）
// - 按本地重要性调整带宽份额
// - 广播订阅差量并请求不一致邻居的订阅状态
// - 接触概率老化（仅 topology）与去重历史清理
//
// 间隔为 0 的任务不运行。
type Maintainer struct {
	clock clock.Clock
	tasks []task

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	running bool
}

// NewMaintainer 创建周期维护驱动；bw 与 pruner 可以为 nil
func NewMaintainer(cfg config.MaintenanceConfig, ps peerstate.Service, bw interfaces.BandwidthSharing, pruner HistoryPruner, clk clock.Clock) *Maintainer {
	if clk == nil {
		clk = clock.New()
	}
	m := &Maintainer{clock: clk}

	m.add("update_neighbors", cfg.UpdateNeighborsInterval, func(context.Context) {
		ps.UpdateNeighbors()
	})

	if bw != nil {
		m.add("bandwidth", cfg.BandwidthInterval, func(context.Context) {
			bw.AdjustBandwidthShare(ps.NodeImportance())
		})
	}

	m.add("subscription_state", cfg.SubscriptionStateInterval, func(ctx context.Context) {
		if err := ps.SendSubscriptionState(ctx); err != nil && !errors.Is(err, worldstate.ErrNoSender) {
			logger.Warn("send subscription state failed", "err", err)
		}
		if err := ps.RequestSubscriptionStates(ctx); err != nil && !errors.Is(err, worldstate.ErrNoSender) {
			logger.Warn("request subscription states failed", "err", err)
		}
	})

	ager, _ := ps.(peerstate.Ager)
	if ager != nil || pruner != nil {
		m.add("aging", cfg.AgingInterval, func(context.Context) {
			if ager != nil {
				if n := ager.AgeContactProbabilities(); n > 0 {
					logger.Debug("contact probabilities dropped", "count", n)
				}
			}
			if pruner != nil {
				pruner.PruneHistory()
			}
		})
	}
	return m
}

func (m *Maintainer) add(name string, interval time.Duration, run func(ctx context.Context)) {
	if interval <= 0 {
		logger.Debug("maintenance task disabled", "task", name)
		return
	}
	m.tasks = append(m.tasks, task{name: name, interval: interval, run: run})
}

// Tasks 启用的任务名称
func (m *Maintainer) Tasks() []string {
	names := make([]string, len(m.tasks))
	for i, t := range m.tasks {
		names[i] = t.name
	}
	return names
}

// RunOnce 同步运行每个任务一次
func (m *Maintainer) RunOnce(ctx context.Context) {
	for _, t := range m.tasks {
		t.run(ctx)
	}
}

// Start 启动所有任务；ticker 在返回前创建，之后推进时钟即可触发
func (m *Maintainer) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrMaintainerStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range m.tasks {
		t := t
		ticker := m.clock.Ticker(t.interval)
		g.Go(func() error {
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					t.run(gctx)
				}
			}
		})
	}

	m.cancel = cancel
	m.group = g
	m.running = true
	logger.Info("maintenance started", "tasks", len(m.tasks))
	return nil
}

// Stop 停止所有任务并等待退出，ctx 超时时返回 ctx.Err()
func (m *Maintainer) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	cancel, g := m.cancel, m.group
	m.mu.Unlock()

	cancel()
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		logger.Info("maintenance stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running 是否在运行
func (m *Maintainer) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
