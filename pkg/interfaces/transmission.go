package interfaces

import (
	"context"

	"github.com/dep2p/go-disservice/pkg/types"
)

// TransmissionService 传输服务中被带宽共享使用的部分
//
// 速率单位统一为 bytes/sec。
type TransmissionService interface {
	// ActiveInterfacesAddress 当前活动网络接口地址
	ActiveInterfacesAddress() []string

	// LinkCapacity 接口链路容量
	LinkCapacity(iface string) uint32

	// SetTransmitRateLimit 设置接口速率限制，dst 为空表示整个接口
	SetTransmitRateLimit(iface, dst string, rateLimit uint32) error

	// TransmitRateLimitCap 本地硬件速率上限
	TransmitRateLimitCap() uint32

	AsyncTransmission() bool
	SharesQueueLength() bool

	// RescaledTransmissionQueueSize 本地发送队列长度，缩放到 0-255
	RescaledTransmissionQueueSize(iface string) uint8

	// NeighborQueueSize 邻居上报的发送队列长度，缩放到 0-255
	NeighborQueueSize(iface, neighborIP string) uint8
}

// BandwidthSharing 带宽共享策略引擎
type BandwidthSharing interface {
	SetSharingRule(rule types.SharingRule) error
	SharingRule() types.SharingRule
	IsQueueSizeRequired() bool
	AdjustBandwidthShare(importance types.NodeImportance)
}

// ForwardingController 转发控制器
type ForwardingController interface {
	NewIncomingMessage(ctx context.Context, msg Message, sourceIP, iface string) types.Decision
}
