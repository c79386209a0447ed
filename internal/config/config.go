// Package config 提供 disservice 内部配置
//
// config 包负责：
// - 定义各组件的配置结构
// - 提供默认值
// - 配置校验
// - 从配置文件加载 aci.disService.* 键
package config

import (
	"time"

	"github.com/dep2p/go-disservice/pkg/types"
)

// 节点状态实现类型
const (
	PeerStateWorldState = "worldstate"
	PeerStateTopology   = "topology"
)

// Config 内部配置结构
type Config struct {
	// Node 本地节点
	Node NodeConfig

	// WorldState 节点图维护
	WorldState WorldStateConfig

	// Topology 拓扑接触概率
	Topology TopologyConfig

	// Forwarding 转发控制器
	Forwarding ForwardingConfig

	// Bandwidth 带宽共享
	Bandwidth BandwidthConfig

	// Maintenance 周期任务
	Maintenance MaintenanceConfig
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Node:        DefaultNodeConfig(),
		WorldState:  DefaultWorldStateConfig(),
		Topology:    DefaultTopologyConfig(),
		Forwarding:  DefaultForwardingConfig(),
		Bandwidth:   DefaultBandwidthConfig(),
		Maintenance: DefaultMaintenanceConfig(),
	}
}

// ============================================================================
//                              节点配置
// ============================================================================

// NodeConfig 本地节点配置
type NodeConfig struct {
	// NodeID 节点 ID，为空时生成 UUID
	NodeID string

	// IP 默认 IP
	IP string

	Importance types.NodeImportance
	Bandwidth  types.BandwidthClass
	Memory     uint8

	// PeerStateType worldstate 或 topology
	PeerStateType string
}

// DefaultNodeConfig 默认节点配置
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Importance:    DefaultNodeImportance,
		Bandwidth:     types.BandwidthMedium,
		PeerStateType: PeerStateTopology,
	}
}

// ============================================================================
//                              WorldState 配置
// ============================================================================

// WorldStateConfig 节点图配置
type WorldStateConfig struct {
	// DeadPeerInterval 邻居失联阈值
	DeadPeerInterval time.Duration

	// ConnectivityHistoryWindow 连接历史窗口（重复度统计）
	ConnectivityHistoryWindow time.Duration

	// ConnectivityHistoryCapacity 连接历史容量
	ConnectivityHistoryCapacity int

	// FallbackStrategy 无拓扑信息时的转发策略
	FallbackStrategy types.ForwardingStrategy
}

// DefaultWorldStateConfig 默认节点图配置
func DefaultWorldStateConfig() WorldStateConfig {
	return WorldStateConfig{
		DeadPeerInterval:            DefaultDeadPeerInterval,
		ConnectivityHistoryWindow:   DefaultConnectivityHistoryWindow,
		ConnectivityHistoryCapacity: DefaultConnectivityHistoryCapacity,
		FallbackStrategy:            types.StrategyStateful,
	}
}

// ============================================================================
//                              拓扑配置
// ============================================================================

// TopologyConfig 接触概率参数
type TopologyConfig struct {
	// ProbContact 每次相遇增加的概率系数
	ProbContact float64

	// ProbThreshold 选择中继的最低概率
	ProbThreshold float64

	// TransitiveParam 传递性系数
	TransitiveParam float64

	// AgeParam 每个老化单位的衰减系数
	AgeParam float64

	// AgingUnit 老化时间单位
	AgingUnit time.Duration
}

// DefaultTopologyConfig 默认拓扑配置
func DefaultTopologyConfig() TopologyConfig {
	return TopologyConfig{
		ProbContact:     DefaultProbContact,
		ProbThreshold:   DefaultProbThreshold,
		TransitiveParam: DefaultTransitiveParam,
		AgeParam:        DefaultAgeParam,
		AgingUnit:       DefaultAgingUnit,
	}
}

// ============================================================================
//                              转发配置
// ============================================================================

// ForwardingConfig 转发控制器配置
type ForwardingConfig struct {
	EnableDataMsgs           bool
	EnableDataRequestMsgs    bool
	EnableChunkQueryMsgs     bool
	EnableChunkQueryHitsMsgs bool
	EnableSearchMsgs         bool
	EnableSearchReplyMsgs    bool

	// EnableTargetedMsgs 是否转发带目标列表的消息
	EnableTargetedMsgs bool

	// HistoryTTL 去重窗口
	HistoryTTL time.Duration

	// HistoryCapacity 去重历史容量
	HistoryCapacity int

	// StatefulMinProbability 有状态转发的最低概率（百分比）
	StatefulMinProbability int
}

// DefaultForwardingConfig 默认转发配置
func DefaultForwardingConfig() ForwardingConfig {
	return ForwardingConfig{
		EnableDataMsgs:           true,
		EnableDataRequestMsgs:    true,
		EnableChunkQueryMsgs:     true,
		EnableChunkQueryHitsMsgs: true,
		EnableSearchMsgs:         true,
		EnableSearchReplyMsgs:    true,
		EnableTargetedMsgs:       true,
		HistoryTTL:               DefaultHistoryTTL,
		HistoryCapacity:          DefaultHistoryCapacity,
		StatefulMinProbability:   DefaultStatefulMinProbability,
	}
}

// Enabled 指定消息类型是否允许转发
func (c ForwardingConfig) Enabled(t types.MessageType) bool {
	switch t {
	case types.MsgData:
		return c.EnableDataMsgs
	case types.MsgDataRequest:
		return c.EnableDataRequestMsgs
	case types.MsgChunkQuery:
		return c.EnableChunkQueryMsgs
	case types.MsgChunkQueryHits:
		return c.EnableChunkQueryHitsMsgs
	case types.MsgSearch:
		return c.EnableSearchMsgs
	case types.MsgSearchReply:
		return c.EnableSearchReplyMsgs
	default:
		return false
	}
}

// ============================================================================
//                              带宽共享配置
// ============================================================================

// BandwidthConfig 带宽共享配置
type BandwidthConfig struct {
	// Rule 初始共享规则
	Rule types.SharingRule

	// MinGuaranteedKbps 每条规则输出的下限（Kbps）
	MinGuaranteedKbps uint32
}

// DefaultBandwidthConfig 默认带宽共享配置
func DefaultBandwidthConfig() BandwidthConfig {
	return BandwidthConfig{
		Rule:              types.RuleEqualSharing,
		MinGuaranteedKbps: DefaultMinGuaranteedKbps,
	}
}

// MinGuaranteedBytesPerSec 下限换算为 bytes/sec
func (c BandwidthConfig) MinGuaranteedBytesPerSec() uint32 {
	return c.MinGuaranteedKbps * 1024 / 8
}

// ============================================================================
//                              周期任务配置
// ============================================================================

// MaintenanceConfig 周期任务间隔，0 表示不运行该任务
type MaintenanceConfig struct {
	UpdateNeighborsInterval   time.Duration
	BandwidthInterval         time.Duration
	SubscriptionStateInterval time.Duration
	AgingInterval             time.Duration
}

// DefaultMaintenanceConfig 默认周期任务配置
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		UpdateNeighborsInterval:   DefaultUpdateNeighborsInterval,
		BandwidthInterval:         DefaultBandwidthInterval,
		SubscriptionStateInterval: DefaultSubscriptionStateInterval,
		AgingInterval:             DefaultAgingInterval,
	}
}
