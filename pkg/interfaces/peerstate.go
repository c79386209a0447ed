package interfaces

import (
	"context"

	"github.com/dep2p/go-disservice/pkg/types"
)

// ============================================================================
//                              PeerState 能力集
// ============================================================================

// PeerState 节点状态能力集
//
// WorldState 与 TopologyWorldState 是它的两种实现，
// 由 peerstate.New 按类型创建。
type PeerState interface {
	// NodeID 本地节点 ID
	NodeID() string

	// IP 本地节点默认 IP
	IP() string
	SetIP(ip string)

	// NodeImportance 本地节点重要性
	NodeImportance() types.NodeImportance
	SetNodeImportance(importance types.NodeImportance) error

	// NewIncomingMessage 处理一条入站消息，更新节点图并通知监听器
	NewIncomingMessage(ctx context.Context, msg Message, sourceIP, iface string)

	// UpdateNeighbors 周期性维护：淘汰失联邻居、清理过期链路
	UpdateNeighbors()

	// KeepAliveMsg 构造 keep-alive 消息
	KeepAliveMsg() WorldStateSeqIDMessage

	// NumberOfActiveNeighbors 当前一跳邻居数
	NumberOfActiveNeighbors() int

	// NumberOfActiveNeighborsWithImportance 指定重要性的邻居数
	NumberOfActiveNeighborsWithImportance(importance types.NodeImportance) int

	// ActiveNeighbors 当前一跳邻居 ID
	ActiveNeighbors() []string

	// PeerNodeInfo 任意跳数节点的快照
	PeerNodeInfo(nodeID string) (types.PeerInfo, bool)

	// AllNeighborNodeInfos 所有一跳邻居的快照
	AllNeighborNodeInfos() []types.PeerInfo

	// IsActiveNeighbor 是否为一跳邻居
	IsActiveNeighbor(nodeID string) bool

	// IsActivePeer 是否在节点图中（任意跳数）
	IsActivePeer(nodeID string) bool

	// IsPeerUpToDate 对端上报的订阅指纹是否与本地一致
	IsPeerUpToDate(nodeID string) bool

	// RegisterListener 注册状态监听器
	RegisterListener(l PeerStateListener) (int, error)
	DeregisterListener(id int) error
}

// PeerStateListener 节点状态监听器
//
// 回调在状态锁释放后按发现顺序调用，返回值不被使用。
type PeerStateListener interface {
	NewNeighbor(nodeID, ip, iface string)
	DeadNeighbor(nodeID string)
	NewLinkToNeighbor(nodeID, ip, iface string)
	DroppedLinkToNeighbor(nodeID, iface string)
	StateUpdateForPeer(nodeID string, update types.PeerStateUpdate)
}

// ForwardingStateProvider 转发控制器需要从节点状态读取的内容
type ForwardingStateProvider interface {
	NodeID() string
	NumberOfActiveNeighbors() int

	// ForwardingStrategy 为消息选择转发策略
	ForwardingStrategy(msg Message) types.ForwardingStrategy

	// TargetNodes 对该消息感兴趣的下游节点
	TargetNodes(msg DataMessage) []string
}

// MessageSender 广播出站消息（传输服务之上的分发层）
type MessageSender interface {
	Broadcast(ctx context.Context, msg Message) error
}
