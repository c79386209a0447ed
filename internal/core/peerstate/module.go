package peerstate

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/internal/core/worldstate"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
)

var logger = log.Logger("core/peerstate")

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Node       config.NodeConfig
	WorldState config.WorldStateConfig
	Topology   config.TopologyConfig

	// Sender 订阅状态消息发送器（可选）
	Sender interfaces.MessageSender `optional:"true"`

	Metrics *metrics.Metrics `optional:"true"`
	Clock   clock.Clock      `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Service    Service
	PeerState  interfaces.PeerState
	Forwarding interfaces.ForwardingStateProvider
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	opts := []worldstate.Option{
		worldstate.WithSender(input.Sender),
		worldstate.WithMetrics(input.Metrics),
	}
	if input.Clock != nil {
		opts = append(opts, worldstate.WithClock(input.Clock))
	}

	svc, err := New(input.Node, input.WorldState, input.Topology, opts...)
	if err != nil {
		return ModuleOutput{}, err
	}
	logger.Info("peer state created", "type", input.Node.PeerStateType, "node", log.TruncateID(svc.NodeID(), 8))

	return ModuleOutput{
		Service:    svc,
		PeerState:  svc,
		Forwarding: svc,
	}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("peerstate",
		fx.Provide(ProvideServices),
	)
}
