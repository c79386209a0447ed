// Package topology 实现带接触概率的节点图（TopologyWorldState）
//
// 在 WorldState 之上维护 PRoPHET 风格的接触概率：
// - 每次遇到邻居：P(self,n) = P + (1-P)*probContact
// - 每个老化单位：P *= ageParam，低于 probThreshold/10 的条目删除
// - 邻居上报的概率表按传递规则吸收：P(self,c) += (1-P)*P(self,n)*P(n,c)*transitiveParam
//
// 转发控制器通过 ForwardingStrategy/TargetNodes 获取拓扑转发决策。
package topology

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/worldstate"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

var logger = log.Logger("core/topology")

var (
	_ interfaces.PeerState               = (*TopologyWorldState)(nil)
	_ interfaces.ForwardingStateProvider = (*TopologyWorldState)(nil)
)

// TopologyWorldState 带接触概率的节点图
type TopologyWorldState struct {
	*worldstate.WorldState

	cfg config.TopologyConfig

	mu sync.RWMutex

	// contact P(self, n)
	contact map[string]float64

	// advertised 邻居上报的原始概率表 P(n, x)
	advertised map[string]map[string]float64

	lastAged time.Time
}

// New 创建 TopologyWorldState
func New(node config.NodeConfig, wsCfg config.WorldStateConfig, cfg config.TopologyConfig, opts ...worldstate.Option) (*TopologyWorldState, error) {
	ws, err := worldstate.New(node, wsCfg, opts...)
	if err != nil {
		return nil, err
	}
	t := &TopologyWorldState{
		WorldState: ws,
		cfg:        cfg,
		contact:    make(map[string]float64),
		advertised: make(map[string]map[string]float64),
		lastAged:   ws.Clock().Now(),
	}
	if _, err := ws.RegisterListener(contactListener{t: t}); err != nil {
		return nil, err
	}
	return t, nil
}

// ============================================================================
//                              入站消息
// ============================================================================

// NewIncomingMessage 先更新节点图，再吸收 keep-alive 携带的接触概率表
func (t *TopologyWorldState) NewIncomingMessage(ctx context.Context, msg interfaces.Message, sourceIP, iface string) {
	t.WorldState.NewIncomingMessage(ctx, msg, sourceIP, iface)

	if msg == nil || msg.Type() != types.MsgWorldStateSeqID {
		return
	}
	sender := msg.SenderNodeID()
	if sender == "" || sender == t.NodeID() {
		return
	}
	ka, ok := msg.(interfaces.WorldStateSeqIDMessage)
	if !ok {
		return
	}
	t.absorb(sender, ka.Summary().ContactProbabilities)
}

// KeepAliveMsg keep-alive 额外携带本地接触概率表
func (t *TopologyWorldState) KeepAliveMsg() interfaces.WorldStateSeqIDMessage {
	return t.BuildKeepAliveMsg(func(s *types.PeerSummary) {
		s.ContactProbabilities = t.ContactProbabilities()
	})
}

// ============================================================================
//                              接触概率
// ============================================================================

// contactListener 在 NewNeighbor 事件上更新直接接触概率
type contactListener struct {
	t *TopologyWorldState
}

func (l contactListener) NewNeighbor(nodeID, _, _ string) { l.t.met(nodeID) }

func (l contactListener) DeadNeighbor(nodeID string) {
	l.t.mu.Lock()
	delete(l.t.advertised, nodeID)
	l.t.mu.Unlock()
}

func (contactListener) NewLinkToNeighbor(string, string, string) {}

func (contactListener) DroppedLinkToNeighbor(string, string) {}

func (contactListener) StateUpdateForPeer(string, types.PeerStateUpdate) {}

func (t *TopologyWorldState) met(nodeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.contact[nodeID]
	t.contact[nodeID] = p + (1-p)*t.cfg.ProbContact
}

// absorb 保存邻居的概率表并按传递规则更新本地概率
func (t *TopologyWorldState) absorb(neighbor string, table map[string]float64) {
	self := t.NodeID()

	t.mu.Lock()
	defer t.mu.Unlock()

	raw := make(map[string]float64, len(table))
	for id, p := range table {
		raw[id] = p
	}
	t.advertised[neighbor] = raw

	pn := t.contact[neighbor]
	if pn == 0 {
		return
	}
	for c, pnc := range table {
		if c == self || c == neighbor || pnc <= 0 {
			continue
		}
		p := t.contact[c]
		t.contact[c] = p + (1-p)*pn*pnc*t.cfg.TransitiveParam
	}
}

// AgeContactProbabilities 按经过的老化单位衰减所有概率，返回删除的条目数
func (t *TopologyWorldState) AgeContactProbabilities() int {
	now := t.Clock().Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cfg.AgingUnit <= 0 {
		return 0
	}
	k := int(now.Sub(t.lastAged) / t.cfg.AgingUnit)
	if k <= 0 {
		return 0
	}
	t.lastAged = t.lastAged.Add(time.Duration(k) * t.cfg.AgingUnit)

	factor := math.Pow(t.cfg.AgeParam, float64(k))
	floor := t.cfg.ProbThreshold / 10
	removed := 0
	for id, p := range t.contact {
		p *= factor
		if p < floor {
			delete(t.contact, id)
			removed++
			continue
		}
		t.contact[id] = p
	}
	if removed > 0 {
		logger.Debug("contact probabilities aged out", "removed", removed, "units", k)
	}
	return removed
}

// ContactProbability P(self, nodeID)
func (t *TopologyWorldState) ContactProbability(nodeID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.contact[nodeID]
}

// ContactProbabilities 本地概率表副本
func (t *TopologyWorldState) ContactProbabilities() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.contact))
	for id, p := range t.contact {
		out[id] = p
	}
	return out
}

// ============================================================================
//                              转发决策
// ============================================================================

// ForwardingStrategy 数据消息的组有除发布者与本地以外的已知订阅者时使用拓扑转发
func (t *TopologyWorldState) ForwardingStrategy(msg interfaces.Message) types.ForwardingStrategy {
	dm, ok := msg.(interfaces.DataMessage)
	if !ok || msg.Type() != types.MsgData || dm.GroupName() == "" {
		return t.WorldState.ForwardingStrategy(msg)
	}

	self := t.NodeID()
	publisher := dm.PublisherNodeID()
	known := false
	t.WithLockedView(func(v worldstate.View) {
		for _, s := range v.Subscribers(dm.GroupName()) {
			if s != self && s != publisher {
				known = true
				return
			}
		}
	})
	if known {
		return types.StrategyTopology
	}
	return t.WorldState.ForwardingStrategy(msg)
}

// TargetNodes 对消息感兴趣的下游节点（已排序去重）
//
// 是一跳邻居的订阅者直接作为目标；其余订阅者选 P(self,n)*P(n,s) 最大且不低于
// probThreshold 的邻居作为中继，没有时用 ProbTarget 选一个中继。
// 发送方与发布者不作为中继。
func (t *TopologyWorldState) TargetNodes(msg interfaces.DataMessage) []string {
	if msg == nil || msg.GroupName() == "" {
		return nil
	}
	self := t.NodeID()
	publisher := msg.PublisherNodeID()
	sender := msg.SenderNodeID()

	set := make(map[string]struct{})
	t.WithLockedView(func(v worldstate.View) {
		t.mu.RLock()
		defer t.mu.RUnlock()

		neighbors := v.Neighbors()
		for _, s := range v.Subscribers(msg.GroupName()) {
			if s == self || s == publisher {
				continue
			}
			if v.IsNeighbor(s) {
				set[s] = struct{}{}
				continue
			}
			if relay := t.bestRelayLocked(neighbors, s, sender, publisher); relay != "" {
				set[relay] = struct{}{}
				continue
			}
			if relay := v.ProbTarget(sender, publisher); relay != "" {
				set[relay] = struct{}{}
			}
		}
	})

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (t *TopologyWorldState) bestRelayLocked(neighbors []string, dst string, exclude ...string) string {
	best, bestP := "", 0.0
	for _, n := range neighbors {
		if slices.Contains(exclude, n) {
			continue
		}
		p := t.contact[n] * t.advertised[n][dst]
		if p > bestP {
			best, bestP = n, p
		}
	}
	if bestP < t.cfg.ProbThreshold {
		return ""
	}
	return best
}
