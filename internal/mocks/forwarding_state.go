package mocks

import (
	"sync"

	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/types"
)

var _ interfaces.ForwardingStateProvider = (*MockForwardingState)(nil)

// MockForwardingState 可配置的转发状态
type MockForwardingState struct {
	mu sync.Mutex

	ID        string
	Neighbors int
	Strategy  types.ForwardingStrategy
	Targets   []string

	// TargetCalls TargetNodes 被调用的次数
	TargetCalls int

	ForwardingStrategyFunc func(msg interfaces.Message) types.ForwardingStrategy
	TargetNodesFunc        func(msg interfaces.DataMessage) []string
}

// NewMockForwardingState 创建默认为 stateful 策略的 MockForwardingState
func NewMockForwardingState(id string, neighbors int) *MockForwardingState {
	return &MockForwardingState{
		ID:        id,
		Neighbors: neighbors,
		Strategy:  types.StrategyStateful,
	}
}

// NodeID 实现 ForwardingStateProvider
func (m *MockForwardingState) NodeID() string { return m.ID }

// NumberOfActiveNeighbors 实现 ForwardingStateProvider
func (m *MockForwardingState) NumberOfActiveNeighbors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Neighbors
}

// SetNeighbors 修改邻居数
func (m *MockForwardingState) SetNeighbors(n int) {
	m.mu.Lock()
	m.Neighbors = n
	m.mu.Unlock()
}

// ForwardingStrategy 实现 ForwardingStateProvider
func (m *MockForwardingState) ForwardingStrategy(msg interfaces.Message) types.ForwardingStrategy {
	if m.ForwardingStrategyFunc != nil {
		return m.ForwardingStrategyFunc(msg)
	}
	return m.Strategy
}

// TargetNodes 实现 ForwardingStateProvider
func (m *MockForwardingState) TargetNodes(msg interfaces.DataMessage) []string {
	m.mu.Lock()
	m.TargetCalls++
	m.mu.Unlock()
	if m.TargetNodesFunc != nil {
		return m.TargetNodesFunc(msg)
	}
	return append([]string(nil), m.Targets...)
}
