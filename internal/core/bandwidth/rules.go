package bandwidth

import (
	"github.com/dep2p/go-disservice/pkg/types"
)

// 带宽等级对应的速率上限范围（Kbps）
const (
	MinRateCapKbps = 56
	MaxRateCapKbps = 11000
)

// RateCapFromPeerStateBandwidth 带宽等级换算为速率上限（bytes/sec），未知等级为 0
func RateCapFromPeerStateBandwidth(class types.BandwidthClass) uint32 {
	const span = MaxRateCapKbps - MinRateCapKbps

	var kbps uint32
	switch class {
	case types.BandwidthVeryLow:
		kbps = MinRateCapKbps + span/5
	case types.BandwidthLow:
		kbps = MinRateCapKbps + span/4
	case types.BandwidthMedium:
		kbps = MinRateCapKbps + span/3
	case types.BandwidthHigh:
		kbps = MinRateCapKbps + span/2
	case types.BandwidthVeryHigh:
		kbps = MaxRateCapKbps
	default:
		return 0
	}
	return kbps * 1024 / 8
}

// effectiveCap 0 表示未知，视为不受限
func effectiveCap(c, capacity uint32) uint32 {
	if c == 0 || c > capacity {
		return capacity
	}
	return c
}

func share(capacity uint32, weight, total uint64) uint32 {
	if total == 0 {
		total = 1
	}
	return uint32(uint64(capacity) * weight / total)
}

// ============================================================================
//                              规则 0/1/2
// ============================================================================

func equalSharing(capacity uint32, n int) uint32 {
	return capacity / uint32(n+1)
}

func (s *Sharing) higherPriorityDominates(capacity uint32, importance types.NodeImportance, infos []types.PeerInfo) uint32 {
	same := 0
	for _, info := range infos {
		if info.Importance.MoreImportantThan(importance) {
			return s.minBandwidth
		}
		if info.Importance == importance {
			same++
		}
	}
	return capacity / uint32(same+1)
}

// importanceWeight 规则 2 的权重 2*(8-importance)
func importanceWeight(importance types.NodeImportance) uint64 {
	return 2 * uint64(8-int(importance))
}

func proportionalSharing(capacity uint32, importance types.NodeImportance, infos []types.PeerInfo) uint32 {
	self := importanceWeight(importance)
	total := self
	for _, info := range infos {
		total += importanceWeight(info.Importance)
	}
	return share(capacity, self, total)
}

// ============================================================================
//                              规则 3：队列长度
// ============================================================================

// priorityRange 队列长度 0-255 分桶为 0（最满）到 7（最空）
func priorityRange(queueLen uint8) uint64 {
	return 7 - uint64(queueLen)/32
}

// queueWeight (8-importance) * (8-priorityRange)^3
func queueWeight(importance types.NodeImportance, queueLen uint8) uint64 {
	d := 8 - priorityRange(queueLen)
	return uint64(8-int(importance)) * d * d * d
}

// weighted 规则 3/5 的一次加权快照
type weighted struct {
	selfWeight uint64
	total      uint64
	weights    []uint64
}

func (s *Sharing) queueWeights(iface string, importance types.NodeImportance, infos []types.PeerInfo) weighted {
	w := weighted{
		selfWeight: queueWeight(importance, s.trans.RescaledTransmissionQueueSize(iface)),
		weights:    make([]uint64, len(infos)),
	}
	w.total = w.selfWeight
	for i, info := range infos {
		q := s.trans.NeighborQueueSize(iface, info.IPOnInterface(iface))
		w.weights[i] = queueWeight(info.Importance, q)
		w.total += w.weights[i]
	}
	return w
}

func (s *Sharing) proportionalSharingWithQueueLength(iface string, capacity uint32, importance types.NodeImportance, infos []types.PeerInfo) uint32 {
	w := s.queueWeights(iface, importance, infos)
	return share(capacity, w.selfWeight, w.total)
}

// ============================================================================
//                              规则 4：带上限的 HPD
// ============================================================================

// bandwidthCappedHPD 最重要的一组节点按各自上限取用，剩余带宽平分给其他节点
func (s *Sharing) bandwidthCappedHPD(capacity uint32, importance types.NodeImportance, infos []types.PeerInfo) uint32 {
	top := importance
	for _, info := range infos {
		if info.Importance.MoreImportantThan(top) {
			top = info.Importance
		}
	}

	selfCap := effectiveCap(s.trans.TransmitRateLimitCap(), capacity)

	var (
		cohort  uint32
		others  uint32
		sumCaps uint64
	)
	if importance == top {
		cohort++
		sumCaps += uint64(selfCap)
	} else {
		others++
	}
	for _, info := range infos {
		if info.Importance == top {
			cohort++
			sumCaps += uint64(effectiveCap(RateCapFromPeerStateBandwidth(info.Bandwidth), capacity))
		} else {
			others++
		}
	}

	slack := sumCaps < uint64(capacity)
	if importance == top {
		if slack {
			return selfCap
		}
		return capacity / cohort
	}
	if !slack {
		return s.minBandwidth
	}
	return uint32((uint64(capacity) - sumCaps) / uint64(others))
}

// ============================================================================
//                              规则 5：带上限的 PSWQL
// ============================================================================

// bandwidthCappedPSWQL 其他邻居超出各自上限的份额按权重重新分配给未达上限的节点
//
// 份额恰好等于上限的邻居视为已达上限，不参与分配。
func (s *Sharing) bandwidthCappedPSWQL(iface string, capacity uint32, importance types.NodeImportance, infos []types.PeerInfo) uint32 {
	w := s.queueWeights(iface, importance, infos)
	prelim := share(capacity, w.selfWeight, w.total)

	selfCap := effectiveCap(s.trans.TransmitRateLimitCap(), capacity)
	if prelim >= selfCap {
		return selfCap
	}

	var spare uint64
	uncapped := w.selfWeight
	for i, info := range infos {
		allotted := share(capacity, w.weights[i], w.total)
		c := effectiveCap(RateCapFromPeerStateBandwidth(info.Bandwidth), capacity)
		if allotted >= c {
			spare += uint64(allotted - c)
			continue
		}
		uncapped += w.weights[i]
	}

	rate := uint64(prelim)
	if uncapped > 0 {
		rate += spare * w.selfWeight / uncapped
	}
	if rate > uint64(selfCap) {
		rate = uint64(selfCap)
	}
	return uint32(rate)
}
