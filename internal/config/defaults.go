package config

import "time"

// ============================================================================
//                              预设默认值
// ============================================================================

// 节点默认值
const (
	DefaultNodeImportance = 4
)

// 节点图默认值
const (
	// DefaultDeadPeerInterval 邻居失联阈值
	DefaultDeadPeerInterval = 30 * time.Second

	// DefaultConnectivityHistoryWindow 连接历史窗口
	DefaultConnectivityHistoryWindow = 5 * time.Minute

	// DefaultConnectivityHistoryCapacity 连接历史容量
	DefaultConnectivityHistoryCapacity = 1024
)

// 拓扑默认值
const (
	DefaultProbContact     = 0.75
	DefaultProbThreshold   = 0.1
	DefaultTransitiveParam = 0.25
	DefaultAgeParam        = 0.98
	DefaultAgingUnit       = 30 * time.Second
)

// 转发默认值
const (
	// DefaultHistoryTTL 去重窗口
	DefaultHistoryTTL = 30 * time.Second

	// DefaultHistoryCapacity 去重历史容量
	DefaultHistoryCapacity = 8192

	// DefaultStatefulMinProbability 有状态转发最低概率
	DefaultStatefulMinProbability = 10
)

// 带宽默认值
const (
	// DefaultMinGuaranteedKbps 最低保证带宽 10 Kbps
	DefaultMinGuaranteedKbps = 10
)

// 周期任务默认值
const (
	DefaultUpdateNeighborsInterval   = 2 * time.Second
	DefaultBandwidthInterval         = time.Second
	DefaultSubscriptionStateInterval = 5 * time.Second
	DefaultAgingInterval             = 30 * time.Second
)
