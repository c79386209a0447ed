// Package mocks 提供测试使用的 Mock 实现
//
//   - MockListener: 记录 PeerStateListener 回调，支持 XxxFunc 注入
//   - MockSender: 记录广播的消息，支持注入错误
//   - MockTransmissionService: gomock 生成的 TransmissionService
//
// 手写的 Mock 采用函数式注入加调用记录。
package mocks
