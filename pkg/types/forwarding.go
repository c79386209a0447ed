package types

import "fmt"

// ForwardingStrategy 转发策略
type ForwardingStrategy uint8

const (
	StrategyTopology ForwardingStrategy = iota + 1
	StrategyStateful
	StrategyFlooding
	// StrategyProbabilistic 占位，尚未实现，必须作为空操作处理
	StrategyProbabilistic
)

// String 返回策略名称
func (s ForwardingStrategy) String() string {
	switch s {
	case StrategyTopology:
		return "topology"
	case StrategyStateful:
		return "stateful"
	case StrategyFlooding:
		return "flooding"
	case StrategyProbabilistic:
		return "probabilistic"
	default:
		return "unknown"
	}
}

// ParseForwardingStrategy 解析配置中的策略名称
func ParseForwardingStrategy(s string) (ForwardingStrategy, error) {
	switch s {
	case "topology":
		return StrategyTopology, nil
	case "stateful":
		return StrategyStateful, nil
	case "flooding":
		return StrategyFlooding, nil
	case "probabilistic":
		return StrategyProbabilistic, nil
	}
	return 0, fmt.Errorf("unknown forwarding strategy %q", s)
}

// SharingRule 带宽共享规则 ID
type SharingRule uint8

const (
	RuleEqualSharing                       SharingRule = 0
	RuleHigherPriorityDominates            SharingRule = 1
	RuleProportionalSharing                SharingRule = 2
	RuleProportionalSharingWithQueueLength SharingRule = 3
	RuleBandwidthCappedHPD                 SharingRule = 4
	RuleBandwidthCappedPSWQL               SharingRule = 5
	RuleNoSharing                          SharingRule = 255
)

// Known 是否为已注册的规则
func (r SharingRule) Known() bool {
	switch r {
	case RuleEqualSharing, RuleHigherPriorityDominates, RuleProportionalSharing,
		RuleProportionalSharingWithQueueLength, RuleBandwidthCappedHPD,
		RuleBandwidthCappedPSWQL, RuleNoSharing:
		return true
	}
	return false
}

// NeedsQueueLength 规则 3 和 5 需要邻居队列长度
func (r SharingRule) NeedsQueueLength() bool {
	return r == RuleProportionalSharingWithQueueLength || r == RuleBandwidthCappedPSWQL
}

// String 返回规则名称
func (r SharingRule) String() string {
	switch r {
	case RuleEqualSharing:
		return "equal_sharing"
	case RuleHigherPriorityDominates:
		return "higher_priority_dominates"
	case RuleProportionalSharing:
		return "proportional_sharing"
	case RuleProportionalSharingWithQueueLength:
		return "proportional_sharing_with_queue_length"
	case RuleBandwidthCappedHPD:
		return "bandwidth_capped_hpd"
	case RuleBandwidthCappedPSWQL:
		return "bandwidth_capped_pswql"
	case RuleNoSharing:
		return "no_sharing"
	default:
		return fmt.Sprintf("rule(%d)", uint8(r))
	}
}

// Decision 转发控制器对一条入站消息的处理结果
type Decision uint8

const (
	DropFilteredType Decision = iota + 1
	DropDoNotForward
	DropTargetedDisabled
	DropTooFewNeighbors
	DropMalformed
	DropOwnMessage
	DropDuplicate
	DropNotTarget
	DropNoTargets
	DropProbability
	DropSendFailed
	NoopProbabilistic
	ForwardTopology
	ForwardStateful
	ForwardFlood
)

var decisionNames = map[Decision]string{
	DropFilteredType:     "drop_filtered_type",
	DropDoNotForward:     "drop_do_not_forward",
	DropTargetedDisabled: "drop_targeted_disabled",
	DropTooFewNeighbors:  "drop_too_few_neighbors",
	DropMalformed:        "drop_malformed",
	DropOwnMessage:       "drop_own_message",
	DropDuplicate:        "drop_duplicate",
	DropNotTarget:        "drop_not_target",
	DropNoTargets:        "drop_no_targets",
	DropProbability:      "drop_probability",
	DropSendFailed:       "drop_send_failed",
	NoopProbabilistic:    "noop_probabilistic",
	ForwardTopology:      "forward_topology",
	ForwardStateful:      "forward_stateful",
	ForwardFlood:         "forward_flood",
}

// String 返回结果名称，同时用作指标标签
func (d Decision) String() string {
	if n, ok := decisionNames[d]; ok {
		return n
	}
	return "unknown"
}

// Forwarded 是否实际转发了
func (d Decision) Forwarded() bool {
	return d == ForwardTopology || d == ForwardStateful || d == ForwardFlood
}
