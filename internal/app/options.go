package app

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/pkg/interfaces"
)

// BootstrapOption Bootstrap 配置选项
type BootstrapOption func(*Bootstrap)

// WithConfig 设置配置
func WithConfig(cfg *config.Config) BootstrapOption {
	return func(b *Bootstrap) {
		b.config = cfg
	}
}

// WithTransmission 设置传输服务
func WithTransmission(t interfaces.TransmissionService) BootstrapOption {
	return func(b *Bootstrap) {
		b.transmission = t
	}
}

// WithSender 设置出站消息发送器
func WithSender(s interfaces.MessageSender) BootstrapOption {
	return func(b *Bootstrap) {
		b.sender = s
	}
}

// WithClock 设置时钟（测试注入 clock.Mock）
func WithClock(c clock.Clock) BootstrapOption {
	return func(b *Bootstrap) {
		b.clock = c
	}
}

// WithRegisterer 设置指标注册器
func WithRegisterer(reg prometheus.Registerer) BootstrapOption {
	return func(b *Bootstrap) {
		b.registerer = reg
	}
}

// WithFxOptions 追加用户自定义 fx 选项
func WithFxOptions(opts ...fx.Option) BootstrapOption {
	return func(b *Bootstrap) {
		b.userFxOptions = append(b.userFxOptions, opts...)
	}
}
