// Package metrics 提供 disservice 核心的监控指标
//
// 基于 prometheus client_golang：
//   - 转发决策计数（按结果）
//   - 邻居数 / 节点图大小 / 失联节点数
//   - 拓扑、订阅、数据缓存序号
//   - 节点状态事件计数（按类型）
//   - 每个接口当前速率限制、当前共享规则
//
// 所有方法对 nil *Metrics 安全，组件可以不注入指标。
//
//	m := metrics.New(prometheus.NewRegistry())
//	m.ObserveDecision(types.ForwardFlood)
package metrics
