package types

import "strings"

// ============================================================================
//                              消息类型
// ============================================================================

// MessageType 消息类型判别值
type MessageType uint8

const (
	MsgUnknown MessageType = iota
	MsgData
	MsgDataRequest
	MsgChunkQuery
	MsgChunkQueryHits
	MsgSearch
	MsgSearchReply
	MsgWorldStateSeqID
	MsgSubState
	MsgSubStateReq
)

var messageTypeNames = map[MessageType]string{
	MsgData:            "data",
	MsgDataRequest:     "data_request",
	MsgChunkQuery:      "chunk_query",
	MsgChunkQueryHits:  "chunk_query_hits",
	MsgSearch:          "search",
	MsgSearchReply:     "search_reply",
	MsgWorldStateSeqID: "world_state_seq_id",
	MsgSubState:        "sub_state",
	MsgSubStateReq:     "sub_state_req",
}

// String 返回消息类型名称
func (t MessageType) String() string {
	if n, ok := messageTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

// TargetSeparator 目标节点列表分隔符
const TargetSeparator = ":"

// SplitTargets 拆分冒号分隔的目标节点列表，忽略空项
func SplitTargets(targets string) []string {
	if targets == "" {
		return nil
	}
	parts := strings.Split(targets, TargetSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTargets 组合目标节点列表
func JoinTargets(ids []string) string {
	return strings.Join(ids, TargetSeparator)
}

// ContainsTarget 目标列表中是否包含 nodeID
func ContainsTarget(targets, nodeID string) bool {
	for _, t := range SplitTargets(targets) {
		if t == nodeID {
			return true
		}
	}
	return false
}

// ============================================================================
//                              参考消息实现
// ============================================================================
//
// 编解码不属于本模块，下面的结构体只实现访问器契约，
// 供上层服务和测试直接构造。

// header 所有消息共有的字段
type header struct {
	Kind    MessageType
	Sender  string
	Targets string
}

// Type 实现 interfaces.Message
func (h *header) Type() MessageType { return h.Kind }

// SenderNodeID 实现 interfaces.Message
func (h *header) SenderNodeID() string { return h.Sender }

// TargetNodeIDs 实现 interfaces.Message
func (h *header) TargetNodeIDs() string { return h.Targets }

// SetTargetNodeIDs 实现 interfaces.Message
func (h *header) SetTargetNodeIDs(targets string) { h.Targets = targets }

// DataMsg 数据消息
type DataMsg struct {
	header
	ID        string
	Publisher string
	Group     string
	NoForward bool
	Payload   []byte
}

// NewDataMsg 创建数据消息
func NewDataMsg(sender, publisher, group, msgID string) *DataMsg {
	return &DataMsg{
		header:    header{Kind: MsgData, Sender: sender},
		ID:        msgID,
		Publisher: publisher,
		Group:     group,
	}
}

// MsgID 实现 interfaces.DataMessage
func (m *DataMsg) MsgID() string { return m.ID }

// PublisherNodeID 实现 interfaces.DataMessage
func (m *DataMsg) PublisherNodeID() string { return m.Publisher }

// GroupName 实现 interfaces.DataMessage
func (m *DataMsg) GroupName() string { return m.Group }

// DoNotForward 实现 interfaces.DataMessage
func (m *DataMsg) DoNotForward() bool { return m.NoForward }

// CtrlMsg 通用控制消息（DataRequest、ChunkQuery、Search 等）
type CtrlMsg struct {
	header
	SeqNo   uint32
	Payload []byte
}

// NewCtrlMsg 创建控制消息
func NewCtrlMsg(kind MessageType, sender string, seqNo uint32) *CtrlMsg {
	return &CtrlMsg{
		header: header{Kind: kind, Sender: sender},
		SeqNo:  seqNo,
	}
}

// CtrlMsgSeqNo 实现 interfaces.ControlMessage
func (m *CtrlMsg) CtrlMsgSeqNo() uint32 { return m.SeqNo }

// WorldStateSeqIDMsg keep-alive 消息
type WorldStateSeqIDMsg struct {
	CtrlMsg
	State PeerSummary
}

// NewWorldStateSeqIDMsg 创建 keep-alive 消息
func NewWorldStateSeqIDMsg(sender string, seqNo uint32, summary PeerSummary) *WorldStateSeqIDMsg {
	return &WorldStateSeqIDMsg{
		CtrlMsg: *NewCtrlMsg(MsgWorldStateSeqID, sender, seqNo),
		State:   summary,
	}
}

// Summary 实现 interfaces.WorldStateSeqIDMessage
func (m *WorldStateSeqIDMsg) Summary() PeerSummary { return m.State }

// SubStateMsg 订阅状态消息
type SubStateMsg struct {
	CtrlMsg
	States map[string]uint32
	Groups map[string][]string
}

// NewSubStateMsg 创建订阅状态消息
func NewSubStateMsg(sender string, seqNo uint32) *SubStateMsg {
	return &SubStateMsg{
		CtrlMsg: *NewCtrlMsg(MsgSubState, sender, seqNo),
		States:  make(map[string]uint32),
		Groups:  make(map[string][]string),
	}
}

// SubscriptionStates 实现 interfaces.SubStateMessage
func (m *SubStateMsg) SubscriptionStates() map[string]uint32 { return m.States }

// Subscriptions 实现 interfaces.SubStateMessage
func (m *SubStateMsg) Subscriptions() map[string][]string { return m.Groups }

// NewSubStateReqMsg 创建订阅状态请求
func NewSubStateReqMsg(sender string, seqNo uint32, targets string) *CtrlMsg {
	m := NewCtrlMsg(MsgSubStateReq, sender, seqNo)
	m.Targets = targets
	return m
}
