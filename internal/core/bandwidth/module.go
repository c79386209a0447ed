package bandwidth

import (
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

	// Config 带宽共享配置
	Config config.BandwidthConfig

	// PeerState 提供邻居快照
	PeerState interfaces.PeerState

	// Transmission 传输服务
	Transmission interfaces.TransmissionService

	Metrics *metrics.Metrics `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Sharing          *Sharing
	BandwidthSharing interfaces.BandwidthSharing
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	s, err := New(input.Config, input.PeerState, input.Transmission, input.Metrics)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{
		Sharing:          s,
		BandwidthSharing: s,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("bandwidth",
		fx.Provide(ProvideServices),
	)
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "bandwidth"
	Description = "带宽共享模块，按邻居重要性与队列长度为每个接口设置发送速率限制"
)
