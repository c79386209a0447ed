package forwarding

import (
	"context"
	"math/rand"
	"strconv"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/lib/timeset"
	"github.com/dep2p/go-disservice/pkg/types"
)

var logger = log.Logger("protocol/forwarding")

// ============================================================================
//                              选项
// ============================================================================

// Option 控制器选项
type Option func(*Controller)

// WithClock 注入时钟，去重窗口按它计时
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) {
		if c != nil {
			ctl.clock = c
		}
	}
}

// WithRand 注入随机源
func WithRand(r *rand.Rand) Option {
	return func(ctl *Controller) {
		if r != nil {
			ctl.rnd = r
		}
	}
}

// WithMetrics 注入指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(ctl *Controller) {
		ctl.metrics = m
	}
}

// ============================================================================
//                              基础控制器
// ============================================================================

// Controller 各策略共用的部分：去重历史、随机源、发送与指标
type Controller struct {
	cfg    config.ForwardingConfig
	state  interfaces.ForwardingStateProvider
	sender interfaces.MessageSender

	history *timeset.Set
	clock   clock.Clock

	rndMu sync.Mutex
	rnd   *rand.Rand

	metrics *metrics.Metrics
}

func newController(cfg config.ForwardingConfig, state interfaces.ForwardingStateProvider, sender interfaces.MessageSender, opts ...Option) (*Controller, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if sender == nil {
		return nil, ErrNilSender
	}

	c := &Controller{
		cfg:    cfg,
		state:  state,
		sender: sender,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(c.clock.Now().UnixNano()))
	}

	history, err := timeset.New(cfg.HistoryTTL, cfg.HistoryCapacity, c.clock)
	if err != nil {
		return nil, err
	}
	c.history = history
	return c, nil
}

// PruneHistory 清理过期的去重记录，返回清理数量
func (c *Controller) PruneHistory() int {
	return c.history.Prune()
}

// HistorySize 去重窗口内的记录数
func (c *Controller) HistorySize() int {
	return c.history.Len()
}

// firstSeen 记录 key，窗口内第一次出现返回 true
func (c *Controller) firstSeen(key string) bool {
	return c.history.Put(key)
}

func (c *Controller) intn(n int) int {
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.rnd.Intn(n)
}

// statefulProbability max(最低概率, 100/N)，N 为活动邻居数
func (c *Controller) statefulProbability() int {
	p := 100
	if n := c.state.NumberOfActiveNeighbors(); n > 0 {
		p = 100 / n
	}
	if p < c.cfg.StatefulMinProbability {
		p = c.cfg.StatefulMinProbability
	}
	return p
}

func (c *Controller) send(ctx context.Context, msg interfaces.Message, forwarded types.Decision) types.Decision {
	if err := c.sender.Broadcast(ctx, msg); err != nil {
		logger.Error("forward failed", "type", msg.Type(), "sender", msg.SenderNodeID(), "err", err)
		return types.DropSendFailed
	}
	return forwarded
}

// dedupKey 数据消息取 msgID，控制消息取 sender:seqNo
func dedupKey(msg interfaces.Message) (string, bool) {
	switch m := msg.(type) {
	case interfaces.DataMessage:
		if m.MsgID() == "" {
			return "", false
		}
		return m.MsgID(), true
	case interfaces.ControlMessage:
		if m.SenderNodeID() == "" {
			return "", false
		}
		return m.SenderNodeID() + types.TargetSeparator + strconv.FormatUint(uint64(m.CtrlMsgSeqNo()), 10), true
	}
	return "", false
}
