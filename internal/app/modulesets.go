// Package app 提供模块集合清单
//
// modulesets.go 集中维护组件模块的装配顺序，是 Bootstrap 组装的唯一模块来源。
package app

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/bandwidth"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/internal/core/peerstate"
	"github.com/dep2p/go-disservice/internal/protocol/forwarding"
	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// ============================================================================
//                              固定模块集合
// ============================================================================

// StateModules 节点状态与指标
func StateModules() fx.Option {
	return fx.Options(
		metrics.Module,
		peerstate.Module(),
	)
}

// PolicyModules 转发控制器与带宽共享
func PolicyModules() fx.Option {
	return fx.Options(
		forwarding.Module(),
		bandwidth.Module(),
	)
}

// MaintenanceModule 周期维护驱动，生命周期绑定到 fx
func MaintenanceModule() fx.Option {
	return fx.Module("maintenance",
		fx.Provide(provideMaintainer),
		fx.Invoke(registerMaintainer),
	)
}

// AllModules 所有组件模块（不含配置与外部协作者）
func AllModules() fx.Option {
	return fx.Options(
		StateModules(),
		PolicyModules(),
		MaintenanceModule(),
	)
}

// ============================================================================
//                              周期维护装配
// ============================================================================

// maintainerInput 周期维护依赖
type maintainerInput struct {
	fx.In

	Config     config.MaintenanceConfig
	PeerState  peerstate.Service
	Bandwidth  interfaces.BandwidthSharing   `optional:"true"`
	Forwarding *forwarding.TopologyController `optional:"true"`
	Clock      clock.Clock                    `optional:"true"`
}

func provideMaintainer(in maintainerInput) *Maintainer {
	var pruner HistoryPruner
	if in.Forwarding != nil {
		pruner = in.Forwarding
	}
	return NewMaintainer(in.Config, in.PeerState, in.Bandwidth, pruner, in.Clock)
}

func registerMaintainer(lc fx.Lifecycle, m *Maintainer) {
	lc.Append(fx.Hook{
		OnStart: m.Start,
		OnStop:  m.Stop,
	})
}
