package worldstate

import (
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/types"
)

// probTargetBias 选择高连接度子集的概率（百分比）
const probTargetBias = 80

// maxStatefulNeighbors 有状态转发概率计算时邻居数的上限
const maxStatefulNeighbors = 10

// ============================================================================
//                              邻居查询
// ============================================================================

// NumberOfActiveNeighbors 当前一跳邻居数
func (w *WorldState) NumberOfActiveNeighbors() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.neighbors)
}

// NumberOfActiveNeighborsWithImportance 指定重要性的邻居数
func (w *WorldState) NumberOfActiveNeighborsWithImportance(importance types.NodeImportance) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c := 0
	for _, n := range w.neighbors {
		if n.importance == importance {
			c++
		}
	}
	return c
}

// ActiveNeighbors 当前一跳邻居 ID（已排序）
func (w *WorldState) ActiveNeighbors() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.neighbors)
}

// PeerNodeInfo 节点图中任意跳数节点的快照
func (w *WorldState) PeerNodeInfo(nodeID string) (types.PeerInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n, ok := w.graph[nodeID]
	if !ok {
		return types.PeerInfo{}, false
	}
	return n.snapshot(w.subGroups[nodeID]), true
}

// AllNeighborNodeInfos 所有一跳邻居的快照（按 ID 排序）
func (w *WorldState) AllNeighborNodeInfos() []types.PeerInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]types.PeerInfo, 0, len(w.neighbors))
	for _, id := range sortedKeys(w.neighbors) {
		out = append(out, w.neighbors[id].snapshot(w.subGroups[id]))
	}
	return out
}

// IsActiveNeighbor 是否为一跳邻居
func (w *WorldState) IsActiveNeighbor(nodeID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.neighbors[nodeID]
	return ok
}

// IsActivePeer 是否在节点图中
func (w *WorldState) IsActivePeer(nodeID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.graph[nodeID]
	return ok
}

// IsPeerUpToDate 对端上报的订阅指纹是否与本地一致
func (w *WorldState) IsPeerUpToDate(nodeID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n, ok := w.graph[nodeID]
	if !ok || !n.summarized {
		return false
	}
	return n.expectedCRC == w.subCRC
}

// DeadPeers 失联归档中的节点（已排序）
func (w *WorldState) DeadPeers() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.dead)
}

// PeerCount 节点图中的节点数（任意跳数）
func (w *WorldState) PeerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.graph)
}

// ============================================================================
//                              序号
// ============================================================================

// TopologyStateSeqID 拓扑状态序号
func (w *WorldState) TopologyStateSeqID() uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.topologySeq
}

// SubscriptionStateSeqID 本地订阅序号
func (w *WorldState) SubscriptionStateSeqID() uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.subscriptionSeq
}

// DataCacheStateSeqID 数据缓存序号
func (w *WorldState) DataCacheStateSeqID() uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dataCacheSeq
}

// IncrementDataCacheStateSeqID 数据缓存变化时由缓存调用，返回新序号
func (w *WorldState) IncrementDataCacheStateSeqID() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataCacheSeq++
	w.refreshMetricsLocked()
	return w.dataCacheSeq
}

// Repetitiveness 连接历史重复度（百分比）
func (w *WorldState) Repetitiveness() uint8 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.repetitivenessLocked()
}

// ============================================================================
//                              转发支持
// ============================================================================

// ProbTarget 选择一个转发方向的邻居，没有候选时返回空串
//
// 80% 的概率从上报邻居数最多的子集中选，否则从其余邻居中选，子集内均匀随机。
func (w *WorldState) ProbTarget(exclude ...string) string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.probTargetLocked(exclude...)
}

func (w *WorldState) probTargetLocked(exclude ...string) string {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	var (
		high, low []string
		best      uint16
	)
	for _, id := range sortedKeys(w.neighbors) {
		if _, ok := skip[id]; ok {
			continue
		}
		c := w.neighbors[id].activeNeighbors
		switch {
		case len(high) == 0 || c > best:
			low = append(low, high...)
			high = []string{id}
			best = c
		case c == best:
			high = append(high, id)
		default:
			low = append(low, id)
		}
	}
	if len(high) == 0 {
		return ""
	}

	subset := high
	if len(low) > 0 && w.intn(100) >= probTargetBias {
		subset = low
	}
	return subset[w.intn(len(subset))]
}

// IsolatedNeighbors 只能通过本地节点到达的邻居（已排序）
//
// 如果所有邻居都是孤立的，说明本地节点是唯一的中继，返回空。
func (w *WorldState) IsolatedNeighbors() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var isolated []string
	for _, id := range sortedKeys(w.neighbors) {
		reachable := false
		for otherID, other := range w.neighbors {
			if otherID != id && other.hasEdge(id) {
				reachable = true
				break
			}
		}
		if !reachable {
			isolated = append(isolated, id)
		}
	}
	if len(isolated) == len(w.neighbors) {
		return nil
	}
	return isolated
}

// StatefulForwardProbability 100 / clamp(对端上报的邻居数, 1, 10)
func (w *WorldState) StatefulForwardProbability(nodeID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.statefulForwardProbabilityLocked(nodeID)
}

func (w *WorldState) statefulForwardProbabilityLocked(nodeID string) int {
	n := 0
	if node, ok := w.graph[nodeID]; ok {
		n = int(node.activeNeighbors)
	}
	if n < 1 {
		n = 1
	}
	if n > maxStatefulNeighbors {
		n = maxStatefulNeighbors
	}
	return 100 / n
}

// ForwardingStrategy 没有拓扑信息，始终使用配置的后备策略
func (w *WorldState) ForwardingStrategy(interfaces.Message) types.ForwardingStrategy {
	return w.cfg.FallbackStrategy
}

// TargetNodes 没有拓扑信息，不提供目标
func (w *WorldState) TargetNodes(interfaces.DataMessage) []string {
	return nil
}

// ============================================================================
//                              keep-alive
// ============================================================================

// KeepAliveMsg 构造 keep-alive 消息
func (w *WorldState) KeepAliveMsg() interfaces.WorldStateSeqIDMessage {
	return w.BuildKeepAliveMsg(nil)
}

// BuildKeepAliveMsg 构造 keep-alive 消息，decorate 可在发送前补充摘要
func (w *WorldState) BuildKeepAliveMsg(decorate func(*types.PeerSummary)) *types.WorldStateSeqIDMsg {
	w.mu.Lock()
	summary := types.PeerSummary{
		ActiveNeighbors:            uint16(len(w.neighbors)),
		Memory:                     w.memory,
		Bandwidth:                  w.bandwidth,
		NodesInConnectivityHistory: uint16(w.history.Len()),
		NodesRepetitivity:          w.repetitivenessLocked(),
		Importance:                 w.importance,
		SubscriptionStateCRC:       w.subCRC,
		TopologyStateSeqID:         w.topologySeq,
		SubscriptionStateSeqID:     w.subscriptionSeq,
		DataCacheStateSeqID:        w.dataCacheSeq,
		NeighborIDs:                sortedKeys(w.neighbors),
	}
	seq := w.nextCtrlSeqLocked()
	w.mu.Unlock()

	if decorate != nil {
		decorate(&summary)
	}
	return types.NewWorldStateSeqIDMsg(w.nodeID, seq, summary)
}

// ============================================================================
//                              加锁视图
// ============================================================================

// View 在持有读锁期间对节点图的一致性只读访问
type View interface {
	NodeID() string
	IsNeighbor(nodeID string) bool
	Neighbors() []string
	Subscribers(group string) []string
	ProbTarget(exclude ...string) string
}

type lockedView struct {
	w *WorldState
}

func (v lockedView) NodeID() string { return v.w.nodeID }

func (v lockedView) IsNeighbor(nodeID string) bool {
	_, ok := v.w.neighbors[nodeID]
	return ok
}

func (v lockedView) Neighbors() []string { return sortedKeys(v.w.neighbors) }

func (v lockedView) Subscribers(group string) []string { return v.w.subscribersLocked(group) }

func (v lockedView) ProbTarget(exclude ...string) string { return v.w.probTargetLocked(exclude...) }

// WithLockedView 持有读锁调用 fn，fn 内不得调用 WorldState 的其它方法
func (w *WorldState) WithLockedView(fn func(View)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn(lockedView{w: w})
}
