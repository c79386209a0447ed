// Package interfaces 定义 disservice 的公共接口
//
//   - message.go      - 消息访问器契约（Message、DataMessage、ControlMessage 等）
//   - peerstate.go    - 节点状态能力集、监听器、转发所需的状态视图、出站发送器
//   - transmission.go - 传输服务、带宽共享、转发控制器
//
// 传输服务与出站发送器由宿主提供，本模块只消费它们。
package interfaces
