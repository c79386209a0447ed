package main

import (
	"context"

	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// logTransmission 只记录速率限制的传输服务
type logTransmission struct {
	ifaces   []string
	capacity uint32
}

var _ interfaces.TransmissionService = (*logTransmission)(nil)

func newLogTransmission(ifaces []string, capacity uint32) *logTransmission {
	return &logTransmission{ifaces: ifaces, capacity: capacity}
}

func (t *logTransmission) ActiveInterfacesAddress() []string { return t.ifaces }

func (t *logTransmission) LinkCapacity(string) uint32 { return t.capacity }

func (t *logTransmission) SetTransmitRateLimit(iface, dst string, rateLimit uint32) error {
	logger.Info("transmit rate limit", "iface", iface, "dst", dst, "rate", rateLimit)
	return nil
}

// TransmitRateLimitCap 0 表示无上限
func (t *logTransmission) TransmitRateLimitCap() uint32 { return 0 }

func (t *logTransmission) AsyncTransmission() bool { return false }
func (t *logTransmission) SharesQueueLength() bool { return false }

func (t *logTransmission) RescaledTransmissionQueueSize(string) uint8 { return 0 }

func (t *logTransmission) NeighborQueueSize(string, string) uint8 { return 0 }

// logSender 只记录出站消息的发送器
type logSender struct{}

func (logSender) Broadcast(_ context.Context, msg interfaces.Message) error {
	logger.Info("broadcast", "type", msg.Type().String(), "sender", msg.SenderNodeID())
	return nil
}
