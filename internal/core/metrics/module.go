package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	// Registerer 可选，缺省使用独立 Registry
	Registerer prometheus.Registerer `optional:"true"`
}

// NewFromParams 从参数创建 Metrics
func NewFromParams(p Params) *Metrics {
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return New(reg)
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewFromParams),
)
