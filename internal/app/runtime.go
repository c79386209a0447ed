package app

import (
	"context"

	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/internal/core/peerstate"
	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// Runtime 表示一个已通过 fx 组装完成的 disservice 运行时。
//
// 根包的 Node Facade 组合 Runtime 对外暴露 API。
type Runtime struct {
	PeerState  peerstate.Service
	Forwarding interfaces.ForwardingController
	Bandwidth  interfaces.BandwidthSharing
	Maintainer *Maintainer
	Metrics    *metrics.Metrics

	stop func(ctx context.Context) error
}

// Stop 停止运行时（触发 fx 生命周期 OnStop）。
func (r *Runtime) Stop(ctx context.Context) error {
	if r.stop == nil {
		return nil
	}
	return r.stop(ctx)
}
