// Package worldstate 实现节点图维护（WorldState）
//
// WorldState 负责：
// - 一跳邻居与多跳节点组成的节点图
// - 失联节点归档与复活
// - 订阅状态表、订阅指纹（CRC16）与三个状态序号
// - 为转发控制器提供查询（概率目标、孤立邻居、有状态转发概率）
//
// 锁顺序：notifyMu → mu。入站消息与 UpdateNeighbors 在 mu 内修改节点图、
// 收集事件，释放 mu 后仍持有 notifyMu 按发现顺序通知监听器。
package worldstate
