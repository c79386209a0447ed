package mocks

import (
	"context"
	"sync"

	"github.com/dep2p/go-disservice/pkg/interfaces"
)

var _ interfaces.MessageSender = (*MockSender)(nil)

// MockSender 记录广播的消息
type MockSender struct {
	mu   sync.Mutex
	Sent []interfaces.Message

	// Targets 每次广播时消息的目标列表快照
	Targets []string

	BroadcastFunc func(ctx context.Context, msg interfaces.Message) error
}

// NewMockSender 创建 MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Broadcast 实现 MessageSender
func (m *MockSender) Broadcast(ctx context.Context, msg interfaces.Message) error {
	if m.BroadcastFunc != nil {
		if err := m.BroadcastFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.Targets = append(m.Targets, msg.TargetNodeIDs())
	m.mu.Unlock()
	return nil
}

// Count 已广播数量
func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// Last 最后一条广播，没有则为 nil
func (m *MockSender) Last() interfaces.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

// LastTargets 最后一次广播时的目标列表
func (m *MockSender) LastTargets() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Targets) == 0 {
		return ""
	}
	return m.Targets[len(m.Targets)-1]
}
