package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-disservice/pkg/types"
)

const namespace = "disservice"

// Metrics 核心指标集合
type Metrics struct {
	forwardDecisions *prometheus.CounterVec
	peerEvents       *prometheus.CounterVec

	activeNeighbors prometheus.Gauge
	graphPeers      prometheus.Gauge
	deadPeers       prometheus.Gauge
	seqIDs          *prometheus.GaugeVec

	rateLimit   *prometheus.GaugeVec
	sharingRule prometheus.Gauge
}

// New 创建并注册指标；reg 为 nil 时只创建不注册
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		forwardDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forwarding",
			Name:      "decisions_total",
			Help:      "Forwarding decisions by outcome.",
		}, []string{"decision"}),
		peerEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "peerstate",
			Name:      "events_total",
			Help:      "Peer state listener events by kind.",
		}, []string{"kind"}),
		activeNeighbors: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peerstate",
			Name:      "active_neighbors",
			Help:      "Current number of 1-hop neighbors.",
		}),
		graphPeers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peerstate",
			Name:      "graph_peers",
			Help:      "Peers in the node graph at any hop distance.",
		}),
		deadPeers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peerstate",
			Name:      "dead_peers",
			Help:      "Peers in the dead-peer archive.",
		}),
		seqIDs: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peerstate",
			Name:      "seq_id",
			Help:      "Local state sequence ids.",
		}, []string{"state"}),
		rateLimit: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bandwidth",
			Name:      "rate_limit_bytes",
			Help:      "Transmit rate limit applied per interface (bytes/sec).",
		}, []string{"iface"}),
		sharingRule: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bandwidth",
			Name:      "sharing_rule",
			Help:      "Active bandwidth sharing rule id.",
		}),
	}
}

// ObserveDecision 记录一次转发决策
func (m *Metrics) ObserveDecision(d types.Decision) {
	if m == nil {
		return
	}
	m.forwardDecisions.WithLabelValues(d.String()).Inc()
}

// ObservePeerEvent 记录一次监听器事件
func (m *Metrics) ObservePeerEvent(kind string) {
	if m == nil {
		return
	}
	m.peerEvents.WithLabelValues(kind).Inc()
}

// SetPeerCounts 更新节点计数
func (m *Metrics) SetPeerCounts(neighbors, graph, dead int) {
	if m == nil {
		return
	}
	m.activeNeighbors.Set(float64(neighbors))
	m.graphPeers.Set(float64(graph))
	m.deadPeers.Set(float64(dead))
}

// SetSeqIDs 更新三个序号
func (m *Metrics) SetSeqIDs(topology, subscription, dataCache uint32) {
	if m == nil {
		return
	}
	m.seqIDs.WithLabelValues("topology").Set(float64(topology))
	m.seqIDs.WithLabelValues("subscription").Set(float64(subscription))
	m.seqIDs.WithLabelValues("data_cache").Set(float64(dataCache))
}

// SetRateLimit 记录接口速率限制
func (m *Metrics) SetRateLimit(iface string, rate uint32) {
	if m == nil {
		return
	}
	m.rateLimit.WithLabelValues(iface).Set(float64(rate))
}

// SetSharingRule 记录当前共享规则
func (m *Metrics) SetSharingRule(r types.SharingRule) {
	if m == nil {
		return
	}
	m.sharingRule.Set(float64(r))
}
