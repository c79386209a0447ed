// Package app 提供 disservice 应用编排层
//
// app 包负责：
// - fx 模块组装
// - 依赖注入协调
// - 周期维护驱动与生命周期管理
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/internal/core/peerstate"
	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// 启停超时
const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// 装配错误
var (
	// ErrNoTransmission 未提供传输服务
	ErrNoTransmission = errors.New("app: transmission service is required")

	// ErrNoSender 未提供消息发送器
	ErrNoSender = errors.New("app: message sender is required")
)

// Bootstrap 应用引导程序
//
// Bootstrap 负责：
// - 校验配置
// - 组装 fx 模块并注入外部协作者（传输服务、消息发送器、时钟）
// - 管理应用生命周期
type Bootstrap struct {
	config *config.Config
	fxApp  *fx.App

	transmission  interfaces.TransmissionService
	sender        interfaces.MessageSender
	clock         clock.Clock
	registerer    prometheus.Registerer
	userFxOptions []fx.Option

	runtime Runtime
}

// NewBootstrap 创建引导程序；cfg 为 nil 时使用默认配置
func NewBootstrap(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{config: cfg}
	for _, opt := range opts {
		opt(b)
	}
	if b.config == nil {
		b.config = config.NewConfig()
	}
	return b
}

// Config 当前配置
func (b *Bootstrap) Config() *config.Config {
	return b.config
}

// BuildRuntime 构建并启动运行时
//
// Runtime.Stop() 会触发 fx OnStop，停止周期维护驱动。
func (b *Bootstrap) BuildRuntime(ctx context.Context) (*Runtime, error) {
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if b.transmission == nil {
		return nil, ErrNoTransmission
	}
	if b.sender == nil {
		return nil, ErrNoSender
	}
	if b.config.Node.NodeID == "" {
		b.config.Node.NodeID = uuid.NewString()
	}

	b.fxApp = fx.New(b.setupModules()...)
	if err := b.fxApp.Err(); err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := b.fxApp.Start(startCtx); err != nil {
		return nil, fmt.Errorf("start application: %w", err)
	}

	rt := b.runtime
	rt.stop = b.Stop
	logger.Info("runtime started",
		"node", rt.PeerState.NodeID(),
		"peerState", b.config.Node.PeerStateType,
		"sharingRule", rt.Bandwidth.SharingRule())
	return &rt, nil
}

// Stop 停止应用
func (b *Bootstrap) Stop(ctx context.Context) error {
	if b.fxApp == nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	return b.fxApp.Stop(stopCtx)
}

// setupModules 组装所有 fx 模块
func (b *Bootstrap) setupModules() []fx.Option {
	modules := []fx.Option{
		// 配置
		fx.Supply(b.config),
		config.Module(),

		// 外部协作者
		b.setupCollaborators(),

		// 组件
		AllModules(),

		// 取出运行时句柄
		fx.Invoke(b.populate),
	}
	modules = append(modules, b.userFxOptions...)

	// 禁用 Fx 日志输出（避免干扰用户日志）
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}))
	return modules
}

// setupCollaborators 注入外部协作者
func (b *Bootstrap) setupCollaborators() fx.Option {
	opts := []fx.Option{
		fx.Provide(
			func() interfaces.TransmissionService { return b.transmission },
			func() interfaces.MessageSender { return b.sender },
		),
	}
	if b.clock != nil {
		opts = append(opts, fx.Provide(func() clock.Clock { return b.clock }))
	}
	if b.registerer != nil {
		opts = append(opts, fx.Provide(func() prometheus.Registerer { return b.registerer }))
	}
	return fx.Options(opts...)
}

// runtimeParams 运行时句柄
type runtimeParams struct {
	fx.In

	PeerState  peerstate.Service
	Forwarding interfaces.ForwardingController
	Bandwidth  interfaces.BandwidthSharing
	Maintainer *Maintainer
	Metrics    *metrics.Metrics
}

func (b *Bootstrap) populate(p runtimeParams) {
	b.runtime = Runtime{
		PeerState:  p.PeerState,
		Forwarding: p.Forwarding,
		Bandwidth:  p.Bandwidth,
		Maintainer: p.Maintainer,
		Metrics:    p.Metrics,
	}
}
