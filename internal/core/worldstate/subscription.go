package worldstate

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/howeyc/crc16"

	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

// ============================================================================
//                              本地订阅
// ============================================================================

// Subscribe 订阅组，返回订阅集合是否变化
func (w *WorldState) Subscribe(group string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.localGroups[group]; ok || group == "" {
		return false
	}
	w.localGroups[group] = struct{}{}
	w.incrementSubscriptionStateSeqIDLocked()
	return true
}

// Unsubscribe 取消订阅组，返回订阅集合是否变化
func (w *WorldState) Unsubscribe(group string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.localGroups[group]; !ok {
		return false
	}
	delete(w.localGroups, group)
	w.incrementSubscriptionStateSeqIDLocked()
	return true
}

// LocalSubscriptions 本地订阅的组（已排序）
func (w *WorldState) LocalSubscriptions() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.subGroups[w.nodeID]...)
}

// incrementSubscriptionStateSeqIDLocked 本地订阅变化：序号加一、重算指纹、记录差量
func (w *WorldState) incrementSubscriptionStateSeqIDLocked() {
	w.subscriptionSeq++
	w.subStates[w.nodeID] = w.subscriptionSeq

	groups := make([]string, 0, len(w.localGroups))
	for g := range w.localGroups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	w.subGroups[w.nodeID] = groups

	w.pendingDiff[w.nodeID] = struct{}{}
	w.recomputeCRCLocked()
	w.refreshMetricsLocked()
}

// ============================================================================
//                              订阅指纹
// ============================================================================

// computeCRCLocked 按 nodeID 字典序计算订阅状态表的 CRC16
//
// 每个条目编码为 nodeID 字节加 4 字节大端序号。
func (w *WorldState) computeCRCLocked() uint16 {
	ids := sortedKeys(w.subStates)
	buf := make([]byte, 0, len(ids)*40)
	for _, id := range ids {
		buf = append(buf, id...)
		buf = binary.BigEndian.AppendUint32(buf, w.subStates[id])
	}
	return crc16.Checksum(buf, crc16.CCITTTable)
}

// recomputeCRCLocked 重算指纹并刷新过期邻居集合
func (w *WorldState) recomputeCRCLocked() {
	w.subCRC = w.computeCRCLocked()
	for id := range w.outdated {
		delete(w.outdated, id)
	}
	for _, n := range w.neighbors {
		w.markOutdatedLocked(n)
	}
}

// markOutdatedLocked 邻居上报的指纹与本地不一致时标记为待请求
func (w *WorldState) markOutdatedLocked(n *remoteNode) {
	if _, ok := w.neighbors[n.id]; !ok || !n.summarized {
		return
	}
	if n.expectedCRC != w.subCRC {
		w.outdated[n.id] = struct{}{}
	} else {
		delete(w.outdated, n.id)
	}
}

// ============================================================================
//                              远端订阅合并
// ============================================================================

// updateSubscriptionStateLocked 合并远端订阅表
//
// 只有序号严格大于本地记录时才应用，应用时替换该节点的组列表。
func (w *WorldState) updateSubscriptionStateLocked(states map[string]uint32, groups map[string][]string, events []event) []event {
	applied := false
	for _, id := range sortedKeys(states) {
		if id == "" || id == w.nodeID {
			continue
		}
		seq := states[id]
		if cur, ok := w.subStates[id]; ok && seq <= cur {
			continue
		}

		w.subStates[id] = seq
		g := append([]string(nil), groups[id]...)
		sort.Strings(g)
		w.subGroups[id] = g
		w.pendingDiff[id] = struct{}{}
		applied = true

		// 通过订阅传播得知的节点作为多跳节点加入节点图
		if _, ok := w.graph[id]; !ok {
			if _, dead := w.dead[id]; !dead {
				w.graph[id] = newRemoteNode(id)
			}
		}
		events = append(events, event{
			kind:   evUpdate,
			nodeID: id,
			update: types.PeerStateUpdate{Kind: types.UpdateSubscriptionState, SeqID: seq},
		})
	}
	if applied {
		w.recomputeCRCLocked()
	}
	return events
}

// subStateReplyLocked 处理订阅状态请求，返回需要发送的应答
//
// 本地为显式目标时立即应答；无目标时以有状态转发概率应答，避免应答风暴。
func (w *WorldState) subStateReplyLocked(requester, targets string) interfaces.Message {
	if targets != "" {
		if !types.ContainsTarget(targets, w.nodeID) {
			return nil
		}
	} else if w.intn(100) >= w.statefulForwardProbabilityLocked(requester) {
		return nil
	}

	reply := w.buildSubStateMsgLocked(sortedKeys(w.subStates))
	reply.SetTargetNodeIDs(requester)
	return reply
}

func (w *WorldState) buildSubStateMsgLocked(ids []string) *types.SubStateMsg {
	msg := types.NewSubStateMsg(w.nodeID, w.nextCtrlSeqLocked())
	for _, id := range ids {
		seq, ok := w.subStates[id]
		if !ok {
			continue
		}
		msg.States[id] = seq
		msg.Groups[id] = append([]string(nil), w.subGroups[id]...)
	}
	return msg
}

// ============================================================================
//                              周期发送
// ============================================================================

// SendSubscriptionState 广播自上次发送以来变化的订阅条目
//
// 所有邻居上报的指纹都已等于本地指纹时不发送，差量直接丢弃。
func (w *WorldState) SendSubscriptionState(ctx context.Context) error {
	w.mu.Lock()
	if len(w.pendingDiff) == 0 {
		w.mu.Unlock()
		return nil
	}
	if w.allNeighborsUpToDateLocked() {
		w.pendingDiff = make(map[string]struct{})
		w.mu.Unlock()
		return nil
	}
	if w.sender == nil {
		w.mu.Unlock()
		return ErrNoSender
	}
	ids := sortedKeys(w.pendingDiff)
	msg := w.buildSubStateMsgLocked(ids)
	w.pendingDiff = make(map[string]struct{})
	w.mu.Unlock()

	if err := w.sender.Broadcast(ctx, msg); err != nil {
		w.mu.Lock()
		for _, id := range ids {
			w.pendingDiff[id] = struct{}{}
		}
		w.mu.Unlock()
		return fmt.Errorf("send subscription state: %w", err)
	}
	logger.Debug("subscription state sent", "entries", len(ids))
	return nil
}

// RequestSubscriptionStates 向指纹不一致的邻居发送一条订阅状态请求
func (w *WorldState) RequestSubscriptionStates(ctx context.Context) error {
	w.mu.Lock()
	if len(w.outdated) == 0 {
		w.mu.Unlock()
		return nil
	}
	if w.sender == nil {
		w.mu.Unlock()
		return ErrNoSender
	}
	targets := sortedKeys(w.outdated)
	msg := types.NewSubStateReqMsg(w.nodeID, w.nextCtrlSeqLocked(), types.JoinTargets(targets))
	w.mu.Unlock()

	if err := w.sender.Broadcast(ctx, msg); err != nil {
		return fmt.Errorf("request subscription states: %w", err)
	}
	logger.Debug("subscription state requested", "targets", len(targets), "first", log.TruncateID(targets[0], 8))
	return nil
}

func (w *WorldState) allNeighborsUpToDateLocked() bool {
	for _, n := range w.neighbors {
		if n.expectedCRC != w.subCRC {
			return false
		}
	}
	return true
}

// ============================================================================
//                              订阅查询
// ============================================================================

// SubscriptionStateCRC 当前订阅指纹
func (w *WorldState) SubscriptionStateCRC() uint16 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.subCRC
}

// SubscriptionStates 订阅状态表副本
func (w *WorldState) SubscriptionStates() map[string]uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]uint32, len(w.subStates))
	for id, seq := range w.subStates {
		out[id] = seq
	}
	return out
}

// Subscribers 订阅了 group 的节点（含本地节点，已排序）
func (w *WorldState) Subscribers(group string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.subscribersLocked(group)
}

func (w *WorldState) subscribersLocked(group string) []string {
	var out []string
	for _, id := range sortedKeys(w.subGroups) {
		for _, g := range w.subGroups[id] {
			if g == group {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
