package interfaces

import "github.com/dep2p/go-disservice/pkg/types"

// ============================================================================
//                              消息访问器契约
// ============================================================================
//
// 编解码器不属于本核心，这里只约定核心需要读取的字段。

// Message 所有消息共有的访问器
type Message interface {
	// Type 消息类型判别值
	Type() types.MessageType

	// SenderNodeID 直接发送方（上一跳）
	SenderNodeID() string

	// TargetNodeIDs 冒号分隔的目标节点列表，空串表示无目标限制
	TargetNodeIDs() string

	// SetTargetNodeIDs 转发前改写目标列表
	SetTargetNodeIDs(targets string)
}

// DataMessage 数据消息
type DataMessage interface {
	Message

	MsgID() string
	PublisherNodeID() string
	GroupName() string

	// DoNotForward 发布方禁止转发
	DoNotForward() bool
}

// ControlMessage 控制消息，没有 msgID，使用控制序号去重
type ControlMessage interface {
	Message

	CtrlMsgSeqNo() uint32
}

// WorldStateSeqIDMessage keep-alive 消息
type WorldStateSeqIDMessage interface {
	ControlMessage

	Summary() types.PeerSummary
}

// SubStateMessage 订阅状态消息
type SubStateMessage interface {
	ControlMessage

	// SubscriptionStates nodeID -> 订阅序号
	SubscriptionStates() map[string]uint32

	// Subscriptions nodeID -> 订阅的组
	Subscriptions() map[string][]string
}
