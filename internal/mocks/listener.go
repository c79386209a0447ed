package mocks

import (
	"fmt"
	"sync"

	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/types"
)

var _ interfaces.PeerStateListener = (*MockListener)(nil)

// MockListener 记录所有回调，Events 按调用顺序保存 "kind:nodeID[:iface]"
type MockListener struct {
	mu     sync.Mutex
	Events []string

	NewNeighborFunc  func(nodeID, ip, iface string)
	DeadNeighborFunc func(nodeID string)
}

// NewMockListener 创建 MockListener
func NewMockListener() *MockListener {
	return &MockListener{}
}

func (m *MockListener) record(format string, args ...any) {
	m.mu.Lock()
	m.Events = append(m.Events, fmt.Sprintf(format, args...))
	m.mu.Unlock()
}

// NewNeighbor 实现 PeerStateListener
func (m *MockListener) NewNeighbor(nodeID, ip, iface string) {
	m.record("new:%s", nodeID)
	if m.NewNeighborFunc != nil {
		m.NewNeighborFunc(nodeID, ip, iface)
	}
}

// DeadNeighbor 实现 PeerStateListener
func (m *MockListener) DeadNeighbor(nodeID string) {
	m.record("dead:%s", nodeID)
	if m.DeadNeighborFunc != nil {
		m.DeadNeighborFunc(nodeID)
	}
}

// NewLinkToNeighbor 实现 PeerStateListener
func (m *MockListener) NewLinkToNeighbor(nodeID, ip, iface string) {
	m.record("link:%s:%s", nodeID, iface)
}

// DroppedLinkToNeighbor 实现 PeerStateListener
func (m *MockListener) DroppedLinkToNeighbor(nodeID, iface string) {
	m.record("droplink:%s:%s", nodeID, iface)
}

// StateUpdateForPeer 实现 PeerStateListener
func (m *MockListener) StateUpdateForPeer(nodeID string, update types.PeerStateUpdate) {
	m.record("update:%s:%s", nodeID, update.Kind)
}

// Recorded 返回事件副本
func (m *MockListener) Recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Events...)
}

// Reset 清空记录
func (m *MockListener) Reset() {
	m.mu.Lock()
	m.Events = nil
	m.mu.Unlock()
}
