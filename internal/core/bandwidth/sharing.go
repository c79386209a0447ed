// Package bandwidth 实现带宽共享策略引擎
//
// 根据邻居的存在与重要性，为每个活动网络接口计算并设置发送速率限制。
// 七种规则：
//   - 0 平均分配
//   - 1 高优先级独占
//   - 2 按重要性比例分配
//   - 3 按重要性与队列长度比例分配
//   - 4 带速率上限的高优先级独占
//   - 5 带速率上限的队列长度比例分配
//   - 255 不共享
//
// 所有规则的结果都不低于最低保证带宽。速率单位为 bytes/sec。
package bandwidth

import (
	"errors"
	"sync"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

var logger = log.Logger("core/bandwidth")

// ErrUnknownSharingRule 未注册的规则，保留之前的规则
var ErrUnknownSharingRule = errors.New("bandwidth: unknown sharing rule")

// NeighborSource 提供一跳邻居快照
type NeighborSource interface {
	AllNeighborNodeInfos() []types.PeerInfo
}

// NeighborSourceFunc 函数形式的 NeighborSource
type NeighborSourceFunc func() []types.PeerInfo

// AllNeighborNodeInfos 实现 NeighborSource
func (f NeighborSourceFunc) AllNeighborNodeInfos() []types.PeerInfo { return f() }

var _ interfaces.BandwidthSharing = (*Sharing)(nil)

// Sharing 带宽共享引擎
type Sharing struct {
	mu            sync.RWMutex
	rule          types.SharingRule
	queueRequired bool

	// queueMu 规则 3 与 5 的两遍读取需要一致的邻居快照
	queueMu sync.Mutex

	minBandwidth uint32

	neighbors NeighborSource
	trans     interfaces.TransmissionService
	metrics   *metrics.Metrics
}

// New 创建带宽共享引擎并应用配置中的初始规则
func New(cfg config.BandwidthConfig, neighbors NeighborSource, trans interfaces.TransmissionService, m *metrics.Metrics) (*Sharing, error) {
	s := &Sharing{
		rule:         types.RuleEqualSharing,
		minBandwidth: cfg.MinGuaranteedBytesPerSec(),
		neighbors:    neighbors,
		trans:        trans,
		metrics:      m,
	}
	if err := s.SetSharingRule(cfg.Rule); err != nil {
		return nil, err
	}
	return s, nil
}

// SetSharingRule 切换共享规则
//
// 未注册的规则返回 ErrUnknownSharingRule 并保留之前的规则；
// 需要队列长度的规则在传输服务不支持时回退到平均分配。
func (s *Sharing) SetSharingRule(rule types.SharingRule) error {
	if !rule.Known() {
		logger.Warn("unknown sharing rule, keeping previous", "rule", uint8(rule), "current", s.SharingRule())
		return ErrUnknownSharingRule
	}

	if rule.NeedsQueueLength() && !(s.trans.AsyncTransmission() && s.trans.SharesQueueLength()) {
		logger.Warn("sharing rule needs async transmission and queue length sharing, falling back",
			"rule", rule, "fallback", types.RuleEqualSharing)
		rule = types.RuleEqualSharing
	}

	s.mu.Lock()
	s.rule = rule
	s.queueRequired = rule.NeedsQueueLength()
	s.mu.Unlock()

	s.metrics.SetSharingRule(rule)
	logger.Info("sharing rule set", "rule", rule)
	return nil
}

// SharingRule 当前规则
func (s *Sharing) SharingRule() types.SharingRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rule
}

// IsQueueSizeRequired 当前规则是否需要邻居队列长度
func (s *Sharing) IsQueueSizeRequired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queueRequired
}

// MinGuaranteedBandwidth 最低保证带宽（bytes/sec）
func (s *Sharing) MinGuaranteedBandwidth() uint32 {
	return s.minBandwidth
}

// AdjustBandwidthShare 为每个活动接口计算并设置速率限制
func (s *Sharing) AdjustBandwidthShare(importance types.NodeImportance) {
	for _, iface := range s.trans.ActiveInterfacesAddress() {
		rate := s.RateLimit(iface, importance)
		if err := s.trans.SetTransmitRateLimit(iface, "", rate); err != nil {
			logger.Warn("set transmit rate limit failed", "iface", iface, "rate", rate, "err", err)
			continue
		}
		s.metrics.SetRateLimit(iface, rate)
		logger.Debug("rate limit applied", "iface", iface, "rate", rate)
	}
}

// RateLimit 按当前规则计算接口的速率限制，不产生副作用
func (s *Sharing) RateLimit(iface string, importance types.NodeImportance) uint32 {
	capacity := s.trans.LinkCapacity(iface)
	infos := s.neighbors.AllNeighborNodeInfos()

	var rate uint32
	switch s.SharingRule() {
	case types.RuleEqualSharing:
		rate = equalSharing(capacity, len(infos))
	case types.RuleHigherPriorityDominates:
		rate = s.higherPriorityDominates(capacity, importance, infos)
	case types.RuleProportionalSharing:
		rate = proportionalSharing(capacity, importance, infos)
	case types.RuleProportionalSharingWithQueueLength:
		s.queueMu.Lock()
		rate = s.proportionalSharingWithQueueLength(iface, capacity, importance, infos)
		s.queueMu.Unlock()
	case types.RuleBandwidthCappedHPD:
		rate = s.bandwidthCappedHPD(capacity, importance, infos)
	case types.RuleBandwidthCappedPSWQL:
		s.queueMu.Lock()
		rate = s.bandwidthCappedPSWQL(iface, capacity, importance, infos)
		s.queueMu.Unlock()
	case types.RuleNoSharing:
		rate = capacity
	}

	if rate < s.minBandwidth {
		rate = s.minBandwidth
	}
	return rate
}
