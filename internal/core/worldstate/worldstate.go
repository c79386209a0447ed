package worldstate

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/lib/timeset"
	"github.com/dep2p/go-disservice/pkg/types"
)

var logger = log.Logger("core/worldstate")

var (
	_ interfaces.PeerState               = (*WorldState)(nil)
	_ interfaces.ForwardingStateProvider = (*WorldState)(nil)
)

// WorldState 节点图
type WorldState struct {
	// notifyMu 串行化 NewIncomingMessage 与 UpdateNeighbors 的通知顺序
	notifyMu sync.Mutex

	// mu 保护以下所有节点图与订阅状态
	mu sync.RWMutex

	nodeID     string
	ip         string
	importance types.NodeImportance
	bandwidth  types.BandwidthClass
	memory     uint8

	cfg config.WorldStateConfig

	// graph 所有已知节点（任意跳数），neighbors 是其中的一跳子集
	graph     map[string]*remoteNode
	neighbors map[string]*remoteNode
	dead      map[string]*remoteNode

	// subStates nodeID -> 订阅序号，subGroups nodeID -> 订阅的组（已排序）
	subStates   map[string]uint32
	subGroups   map[string][]string
	localGroups map[string]struct{}
	subCRC      uint16

	// pendingDiff 上次发送后变化过的订阅条目
	pendingDiff map[string]struct{}

	// outdated 上报指纹与本地不一致的邻居
	outdated map[string]struct{}

	topologySeq     uint32
	subscriptionSeq uint32
	dataCacheSeq    uint32
	ctrlSeq         uint32

	// 连接历史与重复度统计
	history    *timeset.Set
	newPeers   uint32
	totalPeers uint32

	listenersMu    sync.RWMutex
	listeners      map[int]interfaces.PeerStateListener
	nextListenerID int

	rndMu sync.Mutex
	rnd   *rand.Rand

	clock   clock.Clock
	sender  interfaces.MessageSender
	metrics *metrics.Metrics
}

// Option WorldState 选项
type Option func(*WorldState)

// WithClock 注入时钟
func WithClock(c clock.Clock) Option {
	return func(w *WorldState) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithRand 注入随机源
func WithRand(r *rand.Rand) Option {
	return func(w *WorldState) {
		if r != nil {
			w.rnd = r
		}
	}
}

// WithSender 注入消息发送器，用于订阅状态消息与应答
func WithSender(s interfaces.MessageSender) Option {
	return func(w *WorldState) {
		w.sender = s
	}
}

// WithMetrics 注入指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *WorldState) {
		w.metrics = m
	}
}

// New 创建 WorldState
func New(node config.NodeConfig, cfg config.WorldStateConfig, opts ...Option) (*WorldState, error) {
	w := &WorldState{
		nodeID:      node.NodeID,
		ip:          node.IP,
		importance:  node.Importance,
		bandwidth:   node.Bandwidth,
		memory:      node.Memory,
		cfg:         cfg,
		graph:       make(map[string]*remoteNode),
		neighbors:   make(map[string]*remoteNode),
		dead:        make(map[string]*remoteNode),
		subStates:   make(map[string]uint32),
		subGroups:   make(map[string][]string),
		localGroups: make(map[string]struct{}),
		pendingDiff: make(map[string]struct{}),
		outdated:    make(map[string]struct{}),
		listeners:   make(map[int]interfaces.PeerStateListener),
		clock:       clock.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rnd == nil {
		w.rnd = rand.New(rand.NewSource(w.clock.Now().UnixNano()))
	}
	if !w.importance.Valid() {
		return nil, ErrInvalidImportance
	}

	history, err := timeset.New(cfg.ConnectivityHistoryWindow, cfg.ConnectivityHistoryCapacity, w.clock)
	if err != nil {
		return nil, err
	}
	w.history = history

	w.subCRC = w.computeCRCLocked()
	return w, nil
}

// ============================================================================
//                              本地节点
// ============================================================================

// NodeID 本地节点 ID
func (w *WorldState) NodeID() string {
	return w.nodeID
}

// IP 本地默认 IP
func (w *WorldState) IP() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ip
}

// SetIP 设置本地默认 IP
func (w *WorldState) SetIP(ip string) {
	w.mu.Lock()
	w.ip = ip
	w.mu.Unlock()
}

// NodeImportance 本地节点重要性
func (w *WorldState) NodeImportance() types.NodeImportance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.importance
}

// SetNodeImportance 设置本地节点重要性
func (w *WorldState) SetNodeImportance(importance types.NodeImportance) error {
	if !importance.Valid() {
		return ErrInvalidImportance
	}
	w.mu.Lock()
	w.importance = importance
	w.mu.Unlock()
	return nil
}

// ============================================================================
//                              入站消息
// ============================================================================

// NewIncomingMessage 处理一条入站消息
//
// 节点图修改在 mu 内完成，监听器在 mu 释放后、notifyMu 释放前被通知。
// 订阅状态请求的应答在两把锁都释放后发送。
func (w *WorldState) NewIncomingMessage(ctx context.Context, msg interfaces.Message, sourceIP, iface string) {
	if msg == nil {
		return
	}
	sender := msg.SenderNodeID()
	if sender == "" || sender == w.nodeID {
		return
	}

	w.notifyMu.Lock()

	var (
		events []event
		reply  interfaces.Message
	)

	w.mu.Lock()
	switch msg.Type() {
	case types.MsgWorldStateSeqID:
		var summary *types.PeerSummary
		if ka, ok := msg.(interfaces.WorldStateSeqIDMessage); ok {
			s := ka.Summary()
			summary = &s
		}
		events = w.addOrActivateNeighborLocked(sender, sourceIP, iface, summary, events)

	case types.MsgSubState:
		events = w.addOrActivateNeighborLocked(sender, sourceIP, iface, nil, events)
		if sm, ok := msg.(interfaces.SubStateMessage); ok {
			events = w.updateSubscriptionStateLocked(sm.SubscriptionStates(), sm.Subscriptions(), events)
		}

	case types.MsgSubStateReq:
		events = w.addOrActivateNeighborLocked(sender, sourceIP, iface, nil, events)
		reply = w.subStateReplyLocked(sender, msg.TargetNodeIDs())

	default:
		events = w.addOrActivateNeighborLocked(sender, sourceIP, iface, nil, events)
	}
	w.refreshMetricsLocked()
	w.mu.Unlock()

	w.dispatch(events)
	w.notifyMu.Unlock()

	if reply != nil {
		w.broadcast(ctx, reply)
	}
}

// addOrActivateNeighborLocked 查找或创建节点并确保其为一跳邻居
//
// 查找顺序：邻居、节点图、失联归档（复活并增加 occurrence）、新建。
// 非活动邻居被激活时 topologySeq 恰好加一。
func (w *WorldState) addOrActivateNeighborLocked(nodeID, ip, iface string, summary *types.PeerSummary, events []event) []event {
	now := w.clock.Now()

	n, active := w.neighbors[nodeID]
	if !active {
		if g, ok := w.graph[nodeID]; ok {
			n = g
		} else if d, ok := w.dead[nodeID]; ok {
			delete(w.dead, nodeID)
			d.occurrence++
			w.graph[nodeID] = d
			n = d
			logger.Debug("dead peer resurrected", "peer", log.TruncateID(nodeID, 8), "occurrence", d.occurrence)
		} else {
			n = newRemoteNode(nodeID)
			w.graph[nodeID] = n
		}
		w.neighbors[nodeID] = n
		w.topologySeq++
		w.recordContactLocked(nodeID)
	}

	linkChanged := n.touch(ip, iface, now)
	if !active {
		events = append(events, event{kind: evNewNeighbor, nodeID: nodeID, ip: ip, iface: iface})
	} else if linkChanged {
		events = append(events, event{kind: evNewLink, nodeID: nodeID, ip: ip, iface: iface})
	}

	if summary != nil {
		if n.applySummary(summary) {
			events = append(events, event{
				kind:   evUpdate,
				nodeID: nodeID,
				update: types.PeerStateUpdate{Kind: types.UpdateDataCacheState, SeqID: summary.DataCacheStateSeqID},
			})
		}
		w.setEdgesLocked(n, summary.NeighborIDs)
		w.markOutdatedLocked(n)
	}
	return events
}

// setEdgesLocked 用 keep-alive 的邻居列表替换该节点的边，并把新出现的节点作为多跳节点加入节点图
func (w *WorldState) setEdgesLocked(n *remoteNode, ids []string) {
	n.setEdges(ids)
	for id := range n.edges {
		if id == w.nodeID {
			continue
		}
		if _, ok := w.graph[id]; ok {
			continue
		}
		if _, ok := w.dead[id]; ok {
			continue
		}
		w.graph[id] = newRemoteNode(id)
	}
}

// recordContactLocked 记录一次与非活动邻居的接触
func (w *WorldState) recordContactLocked(nodeID string) {
	w.totalPeers++
	if w.history.Put(nodeID) {
		w.newPeers++
	}
}

// repetitivenessLocked 连接历史中重复出现的比例（百分比，四舍五入）
func (w *WorldState) repetitivenessLocked() uint8 {
	if w.totalPeers == 0 {
		return 0
	}
	ratio := float64(w.totalPeers-w.newPeers) / float64(w.totalPeers)
	return uint8(math.Round(100 * ratio))
}

// ============================================================================
//                              周期维护
// ============================================================================

// UpdateNeighbors 淘汰失联邻居并清理过期链路
//
// 失联邻居离开邻居集合时 topologySeq 加一；只有当没有其他活动邻居
// 把它列为一跳邻居时，才从节点图移入失联归档。
func (w *WorldState) UpdateNeighbors() {
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()

	var events []event

	w.mu.Lock()
	now := w.clock.Now()
	interval := w.cfg.DeadPeerInterval

	for _, id := range sortedKeys(w.neighbors) {
		n := w.neighbors[id]
		if n.alive(now, interval) {
			for _, iface := range n.getAndRemoveLinksToDrop(now, interval) {
				events = append(events, event{kind: evDroppedLink, nodeID: id, iface: iface})
			}
			continue
		}
		delete(w.neighbors, id)
		delete(w.outdated, id)
		n.dropLinks()
		w.topologySeq++
		events = append(events, event{kind: evDeadNeighbor, nodeID: id})
		logger.Debug("neighbor dead", "peer", log.TruncateID(id, 8))
	}

	// 曾经直接联系过、现在不是邻居且没有邻居指向它的节点归档
	for _, id := range sortedKeys(w.graph) {
		if _, ok := w.neighbors[id]; ok {
			continue
		}
		n := w.graph[id]
		if n.lastHeard.IsZero() || w.countLocked(id) > 0 {
			continue
		}
		delete(w.graph, id)
		w.dead[id] = n
	}
	w.refreshMetricsLocked()
	w.mu.Unlock()

	w.dispatch(events)
}

// countLocked 把 nodeID 列为一跳邻居的活动邻居数量
func (w *WorldState) countLocked(nodeID string) int {
	c := 0
	for _, n := range w.neighbors {
		if n.hasEdge(nodeID) {
			c++
		}
	}
	return c
}

func (w *WorldState) refreshMetricsLocked() {
	if w.metrics == nil {
		return
	}
	w.metrics.SetPeerCounts(len(w.neighbors), len(w.graph), len(w.dead))
	w.metrics.SetSeqIDs(w.topologySeq, w.subscriptionSeq, w.dataCacheSeq)
}

func (w *WorldState) broadcast(ctx context.Context, msg interfaces.Message) {
	if w.sender == nil {
		return
	}
	if err := w.sender.Broadcast(ctx, msg); err != nil {
		logger.Error("broadcast failed", "type", msg.Type(), "err", err)
	}
}

func (w *WorldState) nextCtrlSeqLocked() uint32 {
	w.ctrlSeq++
	return w.ctrlSeq
}

// intn 线程安全的 [0,n) 随机数
func (w *WorldState) intn(n int) int {
	w.rndMu.Lock()
	defer w.rndMu.Unlock()
	return w.rnd.Intn(n)
}

// Clock 返回注入的时钟
func (w *WorldState) Clock() clock.Clock {
	return w.clock
}
