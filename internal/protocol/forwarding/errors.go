package forwarding

import "errors"

// 错误定义
var (
	// ErrNilState 未提供节点状态
	ErrNilState = errors.New("forwarding: peer state is nil")

	// ErrNilSender 未提供消息发送器
	ErrNilSender = errors.New("forwarding: message sender is nil")
)
