package config

import "go.uber.org/fx"

// Provider 配置提供者
//
// Provider 负责将配置分发给各个组件
type Provider struct {
	config *Config
}

// NewProvider 创建配置提供者
func NewProvider(config *Config) *Provider {
	return &Provider{config: config}
}

// GetConfig 获取完整配置
func (p *Provider) GetConfig() *Config { return p.config }

// GetNode 获取节点配置
func (p *Provider) GetNode() NodeConfig { return p.config.Node }

// GetWorldState 获取节点图配置
func (p *Provider) GetWorldState() WorldStateConfig { return p.config.WorldState }

// GetTopology 获取拓扑配置
func (p *Provider) GetTopology() TopologyConfig { return p.config.Topology }

// GetForwarding 获取转发配置
func (p *Provider) GetForwarding() ForwardingConfig { return p.config.Forwarding }

// GetBandwidth 获取带宽共享配置
func (p *Provider) GetBandwidth() BandwidthConfig { return p.config.Bandwidth }

// GetMaintenance 获取周期任务配置
func (p *Provider) GetMaintenance() MaintenanceConfig { return p.config.Maintenance }

// Module 从 *Config 提供各组件的子配置
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewProvider,
			(*Provider).GetNode,
			(*Provider).GetWorldState,
			(*Provider).GetTopology,
			(*Provider).GetForwarding,
			(*Provider).GetBandwidth,
			(*Provider).GetMaintenance,
		),
	)
}
