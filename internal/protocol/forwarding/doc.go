// Package forwarding 实现消息转发控制器
//
// 对每条入站的应用/控制消息决定是否重新广播，依次经过：
//
//  1. 类型过滤：每种可转发的消息类型可单独开关，数据消息还遵守发布方的禁止转发标志
//  2. 目标过滤：带目标列表的消息在禁用定向转发时丢弃
//  3. 邻居数过滤：活动邻居少于 2 个时没有可转发的对象
//  4. 策略分派：由节点状态选择 topology / stateful / flooding / probabilistic
//
// 去重历史是一个带时间窗口的集合（pkg/lib/timeset），窗口内同一消息最多转发一次。
// 数据消息用 msgID 去重，控制消息用 "senderNodeID:ctrlMsgSeqNo" 去重。
//
// probabilistic 策略尚未实现，作为空操作返回 NoopProbabilistic。
package forwarding
