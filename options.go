package disservice

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-disservice/internal/app"
	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 配置来源：显式配置优先于配置文件
	config     *config.Config
	configFile string

	// 覆盖项，在加载配置之后应用
	nodeID        string
	peerStateType string
	importance    *types.NodeImportance
	sharingRule   *types.SharingRule

	// 外部协作者
	transmission interfaces.TransmissionService
	sender       interfaces.MessageSender
	clock        clock.Clock
	registerer   prometheus.Registerer

	userFxOptions []fx.Option
}

// WithConfig 使用给定配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidOption)
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从配置文件加载（格式按扩展名识别）
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configFile = path
		return nil
	}
}

// WithNodeID 设置节点 ID
func WithNodeID(id string) Option {
	return func(o *options) error {
		o.nodeID = id
		return nil
	}
}

// WithPeerStateType 选择节点状态实现（worldstate 或 topology）
func WithPeerStateType(kind string) Option {
	return func(o *options) error {
		o.peerStateType = kind
		return nil
	}
}

// WithImportance 设置本地节点重要性
func WithImportance(importance types.NodeImportance) Option {
	return func(o *options) error {
		if !importance.Valid() {
			return fmt.Errorf("%w: importance %d", ErrInvalidOption, importance)
		}
		o.importance = &importance
		return nil
	}
}

// WithSharingRule 设置初始带宽共享规则
func WithSharingRule(rule types.SharingRule) Option {
	return func(o *options) error {
		o.sharingRule = &rule
		return nil
	}
}

// WithTransmission 设置传输服务（必需）
func WithTransmission(t interfaces.TransmissionService) Option {
	return func(o *options) error {
		o.transmission = t
		return nil
	}
}

// WithSender 设置出站消息发送器（必需）
func WithSender(s interfaces.MessageSender) Option {
	return func(o *options) error {
		o.sender = s
		return nil
	}
}

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(o *options) error {
		o.clock = c
		return nil
	}
}

// WithRegisterer 设置指标注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithFxOptions 追加自定义 fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}

// ============================================================================
//                              选项应用
// ============================================================================

// resolveConfig 按选项得到最终配置
func (o *options) resolveConfig() (*config.Config, error) {
	cfg := o.config
	if cfg == nil && o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	if o.nodeID != "" {
		cfg.Node.NodeID = o.nodeID
	}
	if o.peerStateType != "" {
		cfg.Node.PeerStateType = o.peerStateType
	}
	if o.importance != nil {
		cfg.Node.Importance = *o.importance
	}
	if o.sharingRule != nil {
		cfg.Bandwidth.Rule = *o.sharingRule
	}
	return cfg, nil
}

// bootstrapOptions 转换为 app.Bootstrap 选项
func (o *options) bootstrapOptions() []app.BootstrapOption {
	opts := []app.BootstrapOption{
		app.WithTransmission(o.transmission),
		app.WithSender(o.sender),
		app.WithFxOptions(o.userFxOptions...),
	}
	if o.clock != nil {
		opts = append(opts, app.WithClock(o.clock))
	}
	if o.registerer != nil {
		opts = append(opts, app.WithRegisterer(o.registerer))
	}
	return opts
}
