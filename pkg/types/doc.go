// Package types 定义 disservice 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - message.go    - MessageType、目标列表编解码、参考消息实现
//   - peer.go       - NodeImportance、BandwidthClass、PeerSummary、PeerInfo、PeerStateUpdate
//   - forwarding.go - ForwardingStrategy、Decision、SharingRule
//
// 消息的编解码不在本包范围内，消息结构体只实现 pkg/interfaces 中的访问器契约。
package types
