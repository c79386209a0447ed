package worldstate

import "errors"

var (
	// ErrNilListener 监听器为空
	ErrNilListener = errors.New("worldstate: nil listener")

	// ErrListenerNotFound 监听器 ID 未注册
	ErrListenerNotFound = errors.New("worldstate: listener not found")

	// ErrInvalidImportance 重要性超出 [0,7]
	ErrInvalidImportance = errors.New("worldstate: importance out of range")

	// ErrNoSender 未配置消息发送器
	ErrNoSender = errors.New("worldstate: no message sender")
)
