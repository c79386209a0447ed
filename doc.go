// Package disservice 提供容断网络组通信覆盖层的节点状态与转发核心
//
// 节点跟踪一跳邻居与多跳节点，与它们交换订阅与拓扑摘要，
// 对每条入站消息决定是否以及如何重新转发，并按邻居的存在与重要性
// 决定每个网络接口可用的发送带宽。
//
// # 核心概念
//
//   - PeerState: 节点图（worldstate 或带接触概率的 topology）
//   - ForwardingController: 入站消息的转发决策
//   - BandwidthSharing: 按规则为每个接口设置发送速率限制
//   - Maintainer: 周期维护（淘汰失联邻居、老化、带宽调整、订阅状态传播）
//
// 传输服务与出站消息发送器是外部协作者，由调用方注入。
//
// # 快速开始
//
//	node, err := disservice.New(
//	    disservice.WithConfigFile("disservice.yaml"),
//	    disservice.WithTransmission(trans),
//	    disservice.WithSender(sender),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	// 每条入站消息
//	decision := node.HandleMessage(ctx, msg, sourceIP, iface)
//
// # 文件组织
//
//   - node.go: Node 门面与生命周期
//   - options.go: 用户配置选项
//   - errors.go: 公共错误
package disservice
