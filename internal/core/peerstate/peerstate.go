// Package peerstate 按配置类型创建节点状态实现
//
// 支持两种实现：
// - worldstate：只维护节点图，转发总是使用后备策略
// - topology：额外维护接触概率，支持拓扑转发
package peerstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/topology"
	"github.com/dep2p/go-disservice/internal/core/worldstate"
	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// ErrUnknownType 未知的节点状态类型
var ErrUnknownType = errors.New("peerstate: unknown type")

// Service 节点状态服务，两种实现共有的能力
type Service interface {
	interfaces.PeerState
	interfaces.ForwardingStateProvider

	// Subscribe 本地订阅组
	Subscribe(group string) bool

	// Unsubscribe 本地取消订阅
	Unsubscribe(group string) bool

	// IncrementDataCacheStateSeqID 数据缓存变化
	IncrementDataCacheStateSeqID() uint32

	// SendSubscriptionState 广播订阅差量
	SendSubscriptionState(ctx context.Context) error

	// RequestSubscriptionStates 向指纹不一致的邻居请求订阅状态
	RequestSubscriptionStates(ctx context.Context) error
}

// Ager 需要周期老化的实现（topology）
type Ager interface {
	AgeContactProbabilities() int
}

var (
	_ Service = (*worldstate.WorldState)(nil)
	_ Service = (*topology.TopologyWorldState)(nil)
	_ Ager    = (*topology.TopologyWorldState)(nil)
)

// New 按 node.PeerStateType 创建实现
func New(node config.NodeConfig, wsCfg config.WorldStateConfig, topoCfg config.TopologyConfig, opts ...worldstate.Option) (Service, error) {
	switch node.PeerStateType {
	case config.PeerStateWorldState:
		ws, err := worldstate.New(node, wsCfg, opts...)
		if err != nil {
			return nil, err
		}
		return ws, nil
	case config.PeerStateTopology, "":
		tws, err := topology.New(node, wsCfg, topoCfg, opts...)
		if err != nil {
			return nil, err
		}
		return tws, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, node.PeerStateType)
	}
}
