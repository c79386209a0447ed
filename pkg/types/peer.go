// Package types 定义 disservice 核心共享的值类型
package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              节点重要性
// ============================================================================

// NodeImportance 节点重要性，0 为最高，7 为最低
type NodeImportance uint8

const (
	// HighestImportance 最高重要性
	HighestImportance NodeImportance = 0

	// LowestImportance 最低重要性
	LowestImportance NodeImportance = 7
)

// Valid 是否在 [0,7] 范围内
func (i NodeImportance) Valid() bool {
	return i <= LowestImportance
}

// MoreImportantThan 数值越小越重要
func (i NodeImportance) MoreImportantThan(other NodeImportance) bool {
	return i < other
}

// ============================================================================
//                              带宽等级
// ============================================================================

// BandwidthClass 节点上报的带宽等级
type BandwidthClass uint8

const (
	BandwidthUnknown BandwidthClass = iota
	BandwidthVeryLow
	BandwidthLow
	BandwidthMedium
	BandwidthHigh
	BandwidthVeryHigh
)

// String 返回等级名称
func (b BandwidthClass) String() string {
	switch b {
	case BandwidthVeryLow:
		return "VERY_LOW"
	case BandwidthLow:
		return "LOW"
	case BandwidthMedium:
		return "MEDIUM"
	case BandwidthHigh:
		return "HIGH"
	case BandwidthVeryHigh:
		return "VERY_HIGH"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(b))
	}
}

// ParseBandwidthClass 解析配置中的带宽等级名称
func ParseBandwidthClass(s string) (BandwidthClass, error) {
	switch s {
	case "VERY_LOW", "very_low", "verylow":
		return BandwidthVeryLow, nil
	case "LOW", "low":
		return BandwidthLow, nil
	case "MEDIUM", "medium":
		return BandwidthMedium, nil
	case "HIGH", "high":
		return BandwidthHigh, nil
	case "VERY_HIGH", "very_high", "veryhigh":
		return BandwidthVeryHigh, nil
	}
	return BandwidthUnknown, fmt.Errorf("unknown bandwidth class %q", s)
}

// ============================================================================
//                              Keep-alive 摘要
// ============================================================================

// PeerSummary keep-alive（WorldStateSeqId）消息携带的节点摘要
type PeerSummary struct {
	ActiveNeighbors            uint16
	Memory                     uint8
	Bandwidth                  BandwidthClass
	NodesInConnectivityHistory uint16
	NodesRepetitivity          uint8
	Importance                 NodeImportance

	// SubscriptionStateCRC 发送方当前的订阅状态指纹
	SubscriptionStateCRC uint16

	TopologyStateSeqID     uint32
	SubscriptionStateSeqID uint32
	DataCacheStateSeqID    uint32

	// NeighborIDs 发送方的一跳邻居（拓扑边）
	NeighborIDs []string

	// ContactProbabilities 发送方的接触概率表（仅拓扑模式）
	ContactProbabilities map[string]float64
}

// ============================================================================
//                              节点快照
// ============================================================================

// LinkInfo 到某个邻居的一条链路
type LinkInfo struct {
	Interface string
	IP        string
	LastHeard time.Time
}

// PeerInfo RemoteNodeInfo 的值快照
//
// 快照不与内部图共享任何可变状态，可以跨 goroutine 传递。
type PeerInfo struct {
	NodeID    string
	DefaultIP string
	Links     []LinkInfo

	Importance                   NodeImportance
	Bandwidth                    BandwidthClass
	Memory                       uint8
	ActiveNeighbors              uint16
	NodesInConnectivityHistory   uint16
	NodesRepetitivity            uint8
	ExpectedSubscriptionStateCRC uint16
	DataCacheStateSeqID          uint32

	LastHeard  time.Time
	Occurrence uint32
	Groups     []string
	Neighbors  []string
}

// IPs 返回所有链路上的 IP（去重，保持链路顺序）
func (p PeerInfo) IPs() []string {
	ips := make([]string, 0, len(p.Links))
	seen := make(map[string]struct{}, len(p.Links))
	for _, l := range p.Links {
		if _, ok := seen[l.IP]; ok {
			continue
		}
		seen[l.IP] = struct{}{}
		ips = append(ips, l.IP)
	}
	return ips
}

// IPOnInterface 返回该邻居在指定接口上的 IP，没有则返回默认 IP
func (p PeerInfo) IPOnInterface(iface string) string {
	for _, l := range p.Links {
		if l.Interface == iface {
			return l.IP
		}
	}
	return p.DefaultIP
}

// ============================================================================
//                              状态更新事件
// ============================================================================

// UpdateKind 节点状态更新类型
type UpdateKind uint8

const (
	// UpdateSubscriptionState 订阅状态已合并
	UpdateSubscriptionState UpdateKind = iota + 1

	// UpdateDataCacheState 对端数据缓存序号变化
	UpdateDataCacheState
)

// String 返回更新类型名称
func (k UpdateKind) String() string {
	switch k {
	case UpdateSubscriptionState:
		return "subscription_state"
	case UpdateDataCacheState:
		return "data_cache_state"
	default:
		return "unknown"
	}
}

// PeerStateUpdate 通过 StateUpdateForPeer 通知的更新内容
type PeerStateUpdate struct {
	Kind  UpdateKind
	SeqID uint32
}
