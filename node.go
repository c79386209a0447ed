package disservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-disservice/internal/app"
	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

var logger = log.Logger("disservice")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已停止（可重新启动）
	StateStopped

	// StateClosed 已关闭
	StateClosed
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Node disservice 节点
//
// Node 是一个门面（Facade），聚合节点状态、转发控制器、带宽共享与周期维护。
// 每条入站消息先交给节点状态更新节点图，再交给转发控制器决定是否重新广播。
type Node struct {
	mu sync.RWMutex

	config    *config.Config
	opts      *options
	bootstrap *app.Bootstrap
	runtime   *app.Runtime
	state     NodeState
}

// New 创建节点（不启动）
func New(opts ...Option) (*Node, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &Node{config: cfg, opts: o}, nil
}

// Start 组装并启动所有组件
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateClosed:
		return ErrNodeClosed
	case StateRunning:
		return ErrAlreadyStarted
	}

	b := app.NewBootstrap(n.config, n.opts.bootstrapOptions()...)
	rt, err := b.BuildRuntime(ctx)
	if err != nil {
		logger.Error("node start failed", "err", err)
		return err
	}
	n.bootstrap = b
	n.runtime = rt
	n.state = StateRunning
	logger.Info("node started", "node", log.TruncateID(n.config.Node.NodeID, 8))
	return nil
}

// Stop 停止节点，之后可以再次 Start
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopLocked(ctx)
}

func (n *Node) stopLocked(ctx context.Context) error {
	if n.state != StateRunning {
		return nil
	}
	err := n.runtime.Stop(ctx)
	n.runtime = nil
	n.bootstrap = nil
	n.state = StateStopped
	logger.Info("node stopped")
	return err
}

// Close 停止并关闭节点
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateClosed {
		return nil
	}
	err := n.stopLocked(context.Background())
	n.state = StateClosed
	return err
}

// State 当前状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// NodeID 本地节点 ID，未显式配置时在首次启动时生成
func (n *Node) NodeID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.config.Node.NodeID
}

// Config 最终配置
func (n *Node) Config() *config.Config {
	return n.config
}

func (n *Node) running() (*app.Runtime, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch n.state {
	case StateRunning:
		return n.runtime, nil
	case StateClosed:
		return nil, ErrNodeClosed
	default:
		return nil, ErrNotStarted
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              消息处理
// ════════════════════════════════════════════════════════════════════════════

// HandleMessage 处理一条入站消息：更新节点图，然后做转发决策
func (n *Node) HandleMessage(ctx context.Context, msg interfaces.Message, sourceIP, iface string) (types.Decision, error) {
	rt, err := n.running()
	if err != nil {
		return 0, err
	}
	rt.PeerState.NewIncomingMessage(ctx, msg, sourceIP, iface)
	return rt.Forwarding.NewIncomingMessage(ctx, msg, sourceIP, iface), nil
}

// KeepAliveMsg 构造 keep-alive 消息
func (n *Node) KeepAliveMsg() (interfaces.WorldStateSeqIDMessage, error) {
	rt, err := n.running()
	if err != nil {
		return nil, err
	}
	return rt.PeerState.KeepAliveMsg(), nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              订阅与状态
// ════════════════════════════════════════════════════════════════════════════

// Subscribe 本地订阅组，返回是否为新订阅
func (n *Node) Subscribe(group string) (bool, error) {
	rt, err := n.running()
	if err != nil {
		return false, err
	}
	return rt.PeerState.Subscribe(group), nil
}

// Unsubscribe 本地取消订阅，返回之前是否已订阅
func (n *Node) Unsubscribe(group string) (bool, error) {
	rt, err := n.running()
	if err != nil {
		return false, err
	}
	return rt.PeerState.Unsubscribe(group), nil
}

// IncrementDataCacheStateSeqID 数据缓存内容变化时调用
func (n *Node) IncrementDataCacheStateSeqID() (uint32, error) {
	rt, err := n.running()
	if err != nil {
		return 0, err
	}
	return rt.PeerState.IncrementDataCacheStateSeqID(), nil
}

// PeerState 节点状态
func (n *Node) PeerState() (interfaces.PeerState, error) {
	rt, err := n.running()
	if err != nil {
		return nil, err
	}
	return rt.PeerState, nil
}

// Neighbors 当前一跳邻居
func (n *Node) Neighbors() []string {
	rt, err := n.running()
	if err != nil {
		return nil
	}
	return rt.PeerState.ActiveNeighbors()
}

// RegisterListener 注册节点状态监听器
func (n *Node) RegisterListener(l interfaces.PeerStateListener) (int, error) {
	rt, err := n.running()
	if err != nil {
		return 0, err
	}
	return rt.PeerState.RegisterListener(l)
}

// ════════════════════════════════════════════════════════════════════════════
//                              带宽与维护
// ════════════════════════════════════════════════════════════════════════════

// SetSharingRule 切换带宽共享规则
func (n *Node) SetSharingRule(rule types.SharingRule) error {
	rt, err := n.running()
	if err != nil {
		return err
	}
	return rt.Bandwidth.SetSharingRule(rule)
}

// SharingRule 当前带宽共享规则
func (n *Node) SharingRule() (types.SharingRule, error) {
	rt, err := n.running()
	if err != nil {
		return 0, err
	}
	return rt.Bandwidth.SharingRule(), nil
}

// RunMaintenance 立即运行一轮周期任务
func (n *Node) RunMaintenance(ctx context.Context) error {
	rt, err := n.running()
	if err != nil {
		return err
	}
	rt.Maintainer.RunOnce(ctx)
	return nil
}
