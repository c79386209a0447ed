package forwarding

import (
	"context"
	"log/slog"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

var _ interfaces.ForwardingController = (*TopologyController)(nil)

// TopologyController 按节点状态选择的策略转发入站消息
type TopologyController struct {
	*Controller
}

// New 创建转发控制器
func New(cfg config.ForwardingConfig, state interfaces.ForwardingStateProvider, sender interfaces.MessageSender, opts ...Option) (*TopologyController, error) {
	c, err := newController(cfg, state, sender, opts...)
	if err != nil {
		return nil, err
	}
	return &TopologyController{Controller: c}, nil
}

// NewIncomingMessage 处理一条入站消息，返回转发结果
//
// 消息在调用方交给节点状态之后再交给这里；结果同时计入指标。
func (c *TopologyController) NewIncomingMessage(ctx context.Context, msg interfaces.Message, sourceIP, iface string) types.Decision {
	d := c.decide(ctx, msg)
	c.metrics.ObserveDecision(d)

	if logger.Enabled(slog.LevelDebug) && msg != nil {
		logger.Debug("forwarding decision",
			"type", msg.Type(),
			"sender", log.TruncateID(msg.SenderNodeID(), 8),
			"source", sourceIP,
			"iface", iface,
			"decision", d)
	}
	return d
}

func (c *TopologyController) decide(ctx context.Context, msg interfaces.Message) types.Decision {
	if msg == nil {
		return types.DropMalformed
	}
	if !c.cfg.Enabled(msg.Type()) {
		return types.DropFilteredType
	}
	if dm, ok := msg.(interfaces.DataMessage); ok && dm.DoNotForward() {
		return types.DropDoNotForward
	}
	if msg.TargetNodeIDs() != "" && !c.cfg.EnableTargetedMsgs {
		return types.DropTargetedDisabled
	}
	if c.state.NumberOfActiveNeighbors() < 2 {
		return types.DropTooFewNeighbors
	}

	switch strategy := c.state.ForwardingStrategy(msg); strategy {
	case types.StrategyTopology:
		dm, ok := msg.(interfaces.DataMessage)
		if !ok {
			return c.statefulForward(ctx, msg)
		}
		return c.topologyForward(ctx, dm)
	case types.StrategyStateful:
		return c.statefulForward(ctx, msg)
	case types.StrategyFlooding:
		return c.floodForward(ctx, msg)
	case types.StrategyProbabilistic:
		return types.NoopProbabilistic
	default:
		logger.Warn("unknown forwarding strategy", "strategy", strategy)
		return types.DropMalformed
	}
}

// ============================================================================
//                              拓扑转发
// ============================================================================

// topologyForward 把消息定向转发给感兴趣的下游节点
//
// 去重发生在目标检查之前，同一 msgID 在窗口内只处理一次。
func (c *TopologyController) topologyForward(ctx context.Context, msg interfaces.DataMessage) types.Decision {
	sender := msg.SenderNodeID()
	publisher := msg.PublisherNodeID()
	if sender == "" || publisher == "" || msg.MsgID() == "" {
		return types.DropMalformed
	}
	self := c.state.NodeID()
	if publisher == self {
		return types.DropOwnMessage
	}
	if !c.firstSeen(msg.MsgID()) {
		return types.DropDuplicate
	}

	existing := types.SplitTargets(msg.TargetNodeIDs())
	if len(existing) > 0 && !types.ContainsTarget(msg.TargetNodeIDs(), self) {
		return types.DropNotTarget
	}

	skip := make(map[string]struct{}, len(existing)+3)
	for _, id := range existing {
		skip[id] = struct{}{}
	}
	skip[self] = struct{}{}
	skip[sender] = struct{}{}
	skip[publisher] = struct{}{}

	var targets []string
	for _, id := range c.state.TargetNodes(msg) {
		if _, ok := skip[id]; ok {
			continue
		}
		skip[id] = struct{}{}
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return types.DropNoTargets
	}

	msg.SetTargetNodeIDs(types.JoinTargets(targets))
	return c.send(ctx, msg, types.ForwardTopology)
}

// ============================================================================
//                              有状态转发与泛洪
// ============================================================================

// statefulForward 每个 id 最多转发一次，概率 max(最低概率, 100/N)
func (c *TopologyController) statefulForward(ctx context.Context, msg interfaces.Message) types.Decision {
	key, d := c.admit(msg)
	if d != 0 {
		return d
	}
	if !c.firstSeen(key) {
		return types.DropDuplicate
	}
	if c.intn(100) >= c.statefulProbability() {
		return types.DropProbability
	}
	return c.send(ctx, msg, types.ForwardStateful)
}

// floodForward 每个 id 转发一次
func (c *TopologyController) floodForward(ctx context.Context, msg interfaces.Message) types.Decision {
	key, d := c.admit(msg)
	if d != 0 {
		return d
	}
	if !c.firstSeen(key) {
		return types.DropDuplicate
	}
	return c.send(ctx, msg, types.ForwardFlood)
}

// admit 取去重键并丢弃本地发布的数据消息，返回非零结果表示丢弃
func (c *TopologyController) admit(msg interfaces.Message) (string, types.Decision) {
	key, ok := dedupKey(msg)
	if !ok {
		return "", types.DropMalformed
	}
	if dm, isData := msg.(interfaces.DataMessage); isData && dm.PublisherNodeID() == c.state.NodeID() {
		return "", types.DropOwnMessage
	}
	return key, 0
}
