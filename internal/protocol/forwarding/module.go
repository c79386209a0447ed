package forwarding

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config config.ForwardingConfig
	State  interfaces.ForwardingStateProvider
	Sender interfaces.MessageSender

	Metrics *metrics.Metrics `optional:"true"`
	Clock   clock.Clock      `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Controller           *TopologyController
	ForwardingController interfaces.ForwardingController
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	c, err := New(input.Config, input.State, input.Sender,
		WithMetrics(input.Metrics),
		WithClock(input.Clock),
	)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{
		Controller:           c,
		ForwardingController: c,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("forwarding",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "forwarding"
	Description = "转发控制器，按拓扑、有状态或泛洪策略重新广播入站消息"
)
