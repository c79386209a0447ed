package worldstate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/internal/mocks"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

const self = "A"

type fixture struct {
	ws       *WorldState
	clk      *clock.Mock
	sender   *mocks.MockSender
	listener *mocks.MockListener
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	log.Discard()

	f := &fixture{
		clk:      clock.NewMock(),
		sender:   mocks.NewMockSender(),
		listener: mocks.NewMockListener(),
	}
	node := config.DefaultNodeConfig()
	node.NodeID = self
	node.IP = "10.0.0.1"
	node.Importance = 2

	base := []Option{WithClock(f.clk), WithRand(rand.New(rand.NewSource(1))), WithSender(f.sender)}
	ws, err := New(node, config.DefaultWorldStateConfig(), append(base, opts...)...)
	require.NoError(t, err)
	f.ws = ws

	_, err = ws.RegisterListener(f.listener)
	require.NoError(t, err)
	return f
}

func (f *fixture) data(sender, iface, ip string) {
	f.ws.NewIncomingMessage(context.Background(), types.NewDataMsg(sender, sender, "g", "m"), ip, iface)
}

func (f *fixture) keepAlive(sender string, s types.PeerSummary) {
	f.ws.NewIncomingMessage(context.Background(), types.NewWorldStateSeqIDMsg(sender, 1, s), "10.0.0.9", "eth0")
}

// ============================================================================
//                              节点图维护
// ============================================================================

func TestNew_RejectsInvalidImportance(t *testing.T) {
	node := config.DefaultNodeConfig()
	node.Importance = 8
	_, err := New(node, config.DefaultWorldStateConfig())
	assert.ErrorIs(t, err, ErrInvalidImportance)
}

func TestNewIncomingMessage_AddsNeighbor(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")

	assert.True(t, f.ws.IsActiveNeighbor("B"))
	assert.True(t, f.ws.IsActivePeer("B"))
	assert.Equal(t, 1, f.ws.NumberOfActiveNeighbors())
	assert.Equal(t, uint32(1), f.ws.TopologyStateSeqID())
	assert.Equal(t, []string{"new:B"}, f.listener.Recorded())

	info, ok := f.ws.PeerNodeInfo("B")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.2", info.DefaultIP)
	assert.Equal(t, "10.0.0.2", info.IPOnInterface("eth0"))
}

func TestNewIncomingMessage_IgnoresOwnAndAnonymous(t *testing.T) {
	f := newFixture(t)

	f.data(self, "eth0", "10.0.0.1")
	f.data("", "eth0", "10.0.0.3")

	assert.Equal(t, 0, f.ws.NumberOfActiveNeighbors())
	assert.Empty(t, f.listener.Recorded())
}

func TestTopologySeq_CountsOnlyStructuralChanges(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")
	f.data("B", "eth0", "10.0.0.2")
	f.keepAlive("B", types.PeerSummary{ActiveNeighbors: 1})
	assert.Equal(t, uint32(1), f.ws.TopologyStateSeqID(), "已激活邻居的后续消息不增加序号")

	f.data("C", "eth0", "10.0.0.3")
	assert.Equal(t, uint32(2), f.ws.TopologyStateSeqID())

	f.clk.Add(31 * time.Second)
	f.ws.UpdateNeighbors()
	assert.Equal(t, uint32(4), f.ws.TopologyStateSeqID(), "每个失联邻居加一")
}

func TestNewIncomingMessage_NewLink(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")
	f.data("B", "eth1", "10.0.1.2")

	assert.Equal(t, []string{"new:B", "link:B:eth1"}, f.listener.Recorded())
	info, _ := f.ws.PeerNodeInfo("B")
	assert.Len(t, info.Links, 2)
	assert.Equal(t, "10.0.1.2", info.DefaultIP)
}

func TestUpdateNeighbors_DeadPeerArchived(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")
	f.clk.Add(30 * time.Second)
	f.ws.UpdateNeighbors()
	assert.True(t, f.ws.IsActiveNeighbor("B"), "阈值内仍然存活")

	f.clk.Add(time.Second)
	f.ws.UpdateNeighbors()

	assert.False(t, f.ws.IsActiveNeighbor("B"))
	assert.False(t, f.ws.IsActivePeer("B"))
	assert.Equal(t, []string{"B"}, f.ws.DeadPeers())
	assert.Equal(t, []string{"new:B", "dead:B"}, f.listener.Recorded())
}

func TestUpdateNeighbors_KeepsReferencedPeerInGraph(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")
	f.clk.Add(20 * time.Second)
	f.keepAlive("C", types.PeerSummary{NeighborIDs: []string{"B", "X", self}})
	f.clk.Add(15 * time.Second)
	f.ws.UpdateNeighbors()

	assert.False(t, f.ws.IsActiveNeighbor("B"))
	assert.True(t, f.ws.IsActivePeer("B"), "C 仍把 B 列为邻居")
	assert.Empty(t, f.ws.DeadPeers())
	assert.True(t, f.ws.IsActivePeer("X"))
	assert.False(t, f.ws.IsActiveNeighbor("X"))
	assert.False(t, f.ws.IsActivePeer(self))

	f.clk.Add(31 * time.Second)
	f.ws.UpdateNeighbors()

	assert.Equal(t, []string{"B", "C"}, f.ws.DeadPeers())
	assert.True(t, f.ws.IsActivePeer("X"), "只通过他人得知的多跳节点保留")
}

func TestGraphAndDeadArchiveAreExclusive(t *testing.T) {
	f := newFixture(t)
	ids := []string{"B", "C", "D"}

	for round := 0; round < 3; round++ {
		for _, id := range ids {
			f.data(id, "eth0", "10.0.0.2")
		}
		f.clk.Add(31 * time.Second)
		f.ws.UpdateNeighbors()

		dead := make(map[string]bool)
		for _, id := range f.ws.DeadPeers() {
			dead[id] = true
		}
		for _, id := range ids {
			assert.False(t, dead[id] && f.ws.IsActivePeer(id), "%s 同时出现在节点图和失联归档", id)
		}
	}
}

func TestNewIncomingMessage_ResurrectsDeadPeer(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")
	f.clk.Add(31 * time.Second)
	f.ws.UpdateNeighbors()
	require.Equal(t, []string{"B"}, f.ws.DeadPeers())

	f.data("B", "eth0", "10.0.0.2")

	assert.Empty(t, f.ws.DeadPeers())
	assert.True(t, f.ws.IsActiveNeighbor("B"))
	info, _ := f.ws.PeerNodeInfo("B")
	assert.Equal(t, uint32(1), info.Occurrence)
	assert.Equal(t, uint32(3), f.ws.TopologyStateSeqID())
	assert.Equal(t, []string{"new:B", "dead:B", "new:B"}, f.listener.Recorded())
}

func TestUpdateNeighbors_DropsStaleLink(t *testing.T) {
	f := newFixture(t)

	f.data("B", "eth0", "10.0.0.2")
	f.clk.Add(20 * time.Second)
	f.data("B", "eth1", "10.0.1.2")
	f.clk.Add(15 * time.Second)
	f.ws.UpdateNeighbors()

	assert.Equal(t, []string{"new:B", "link:B:eth1", "droplink:B:eth0"}, f.listener.Recorded())
	info, _ := f.ws.PeerNodeInfo("B")
	require.Len(t, info.Links, 1)
	assert.Equal(t, "eth1", info.Links[0].Interface)
	assert.Equal(t, "10.0.1.2", info.DefaultIP)
}

func TestKeepAlive_AppliesSummary(t *testing.T) {
	f := newFixture(t)

	s := types.PeerSummary{
		ActiveNeighbors:     3,
		Memory:              2,
		Bandwidth:           types.BandwidthHigh,
		Importance:          1,
		DataCacheStateSeqID: 5,
	}
	f.keepAlive("B", s)
	f.keepAlive("B", s)

	info, ok := f.ws.PeerNodeInfo("B")
	require.True(t, ok)
	assert.Equal(t, uint16(3), info.ActiveNeighbors)
	assert.Equal(t, types.BandwidthHigh, info.Bandwidth)
	assert.Equal(t, types.NodeImportance(1), info.Importance)
	assert.Equal(t, uint32(5), info.DataCacheStateSeqID)
	assert.Equal(t, []string{"new:B", "update:B:data_cache_state"}, f.listener.Recorded())
	assert.Equal(t, 1, f.ws.NumberOfActiveNeighborsWithImportance(1))
}

// ============================================================================
//                              订阅状态
// ============================================================================

func TestSubscribe_BumpsSeqAndCRC(t *testing.T) {
	f := newFixture(t)
	before := f.ws.SubscriptionStateCRC()

	assert.True(t, f.ws.Subscribe("g"))
	assert.False(t, f.ws.Subscribe("g"))
	assert.Equal(t, uint32(1), f.ws.SubscriptionStateSeqID())
	assert.NotEqual(t, before, f.ws.SubscriptionStateCRC())
	assert.Equal(t, []string{self}, f.ws.Subscribers("g"))

	assert.True(t, f.ws.Unsubscribe("g"))
	assert.False(t, f.ws.Unsubscribe("g"))
	assert.Equal(t, uint32(2), f.ws.SubscriptionStateSeqID())
	assert.Empty(t, f.ws.Subscribers("g"))
}

func TestSendSubscriptionState_SendsDiffOnce(t *testing.T) {
	f := newFixture(t)
	f.keepAlive("B", types.PeerSummary{SubscriptionStateCRC: 0xFFFF})
	f.ws.Subscribe("g")

	require.NoError(t, f.ws.SendSubscriptionState(context.Background()))
	require.Equal(t, 1, f.sender.Count())

	msg, ok := f.sender.Last().(*types.SubStateMsg)
	require.True(t, ok)
	assert.Equal(t, map[string]uint32{self: 1}, msg.SubscriptionStates())
	assert.Equal(t, []string{"g"}, msg.Subscriptions()[self])

	require.NoError(t, f.ws.SendSubscriptionState(context.Background()))
	assert.Equal(t, 1, f.sender.Count(), "差量已发送")
}

func TestSendSubscriptionState_SuppressedWhenNeighborsUpToDate(t *testing.T) {
	f := newFixture(t)
	f.ws.Subscribe("g")
	f.keepAlive("B", types.PeerSummary{SubscriptionStateCRC: f.ws.SubscriptionStateCRC()})

	require.NoError(t, f.ws.SendSubscriptionState(context.Background()))
	assert.Equal(t, 0, f.sender.Count())
	assert.True(t, f.ws.IsPeerUpToDate("B"))
}

func TestSendSubscriptionState_RestoresDiffOnError(t *testing.T) {
	f := newFixture(t)
	f.keepAlive("B", types.PeerSummary{SubscriptionStateCRC: 1})
	f.ws.Subscribe("g")

	boom := errors.New("link down")
	f.sender.BroadcastFunc = func(context.Context, interfaces.Message) error { return boom }
	assert.ErrorIs(t, f.ws.SendSubscriptionState(context.Background()), boom)

	f.sender.BroadcastFunc = nil
	require.NoError(t, f.ws.SendSubscriptionState(context.Background()))
	assert.Equal(t, 1, f.sender.Count())
}

func TestSendSubscriptionState_NoSender(t *testing.T) {
	f := newFixture(t, WithSender(nil))
	f.keepAlive("B", types.PeerSummary{SubscriptionStateCRC: 1})
	f.ws.Subscribe("g")

	assert.ErrorIs(t, f.ws.SendSubscriptionState(context.Background()), ErrNoSender)
}

func TestUpdateSubscriptionState_AppliesOnlyNewer(t *testing.T) {
	f := newFixture(t)

	m := types.NewSubStateMsg("B", 1)
	m.States["C"] = 3
	m.Groups["C"] = []string{"g2", "g1"}
	m.States[self] = 99
	f.ws.NewIncomingMessage(context.Background(), m, "10.0.0.2", "eth0")

	assert.Equal(t, []string{"C"}, f.ws.Subscribers("g1"))
	assert.True(t, f.ws.IsActivePeer("C"))
	assert.False(t, f.ws.IsActiveNeighbor("C"))
	assert.Equal(t, []string{"new:B", "update:C:subscription_state"}, f.listener.Recorded())

	info, _ := f.ws.PeerNodeInfo("C")
	assert.Equal(t, []string{"g1", "g2"}, info.Groups)

	stale := types.NewSubStateMsg("B", 2)
	stale.States["C"] = 3
	stale.Groups["C"] = []string{"other"}
	f.ws.NewIncomingMessage(context.Background(), stale, "10.0.0.2", "eth0")

	assert.Equal(t, []string{"C"}, f.ws.Subscribers("g1"), "序号不大于本地记录时忽略")
	assert.Equal(t, uint32(3), f.ws.SubscriptionStates()["C"])
	_, hasSelf := f.ws.SubscriptionStates()[self]
	assert.False(t, hasSelf, "不接受他人对本地条目的覆盖")
}

func TestSubscriptionCRC_IndependentOfArrivalOrder(t *testing.T) {
	f1 := newFixture(t)
	f2 := newFixture(t)

	entries := []struct {
		id  string
		seq uint32
	}{{"N1", 4}, {"N2", 7}, {"N3", 1}}

	for _, e := range entries {
		m := types.NewSubStateMsg("B", 1)
		m.States[e.id] = e.seq
		f1.ws.NewIncomingMessage(context.Background(), m, "", "eth0")
	}
	for i := len(entries) - 1; i >= 0; i-- {
		m := types.NewSubStateMsg("B", 1)
		m.States[entries[i].id] = entries[i].seq
		f2.ws.NewIncomingMessage(context.Background(), m, "", "eth0")
	}

	assert.Equal(t, f1.ws.SubscriptionStateCRC(), f2.ws.SubscriptionStateCRC())
}

func TestSubStateReq_RepliesWhenTargeted(t *testing.T) {
	f := newFixture(t)
	f.ws.Subscribe("g")

	f.ws.NewIncomingMessage(context.Background(), types.NewSubStateReqMsg("B", 1, "Z:"+self), "10.0.0.2", "eth0")
	require.Equal(t, 1, f.sender.Count())
	assert.Equal(t, "B", f.sender.LastTargets())
	assert.Equal(t, types.MsgSubState, f.sender.Last().Type())

	f.ws.NewIncomingMessage(context.Background(), types.NewSubStateReqMsg("B", 2, "Z"), "10.0.0.2", "eth0")
	assert.Equal(t, 1, f.sender.Count(), "目标不是本地节点")
}

func TestSubStateReq_UntargetedReplyUsesStatefulProbability(t *testing.T) {
	f := newFixture(t)

	// 对端未上报邻居数，概率为 100
	f.ws.NewIncomingMessage(context.Background(), types.NewSubStateReqMsg("B", 1, ""), "10.0.0.2", "eth0")
	assert.Equal(t, 1, f.sender.Count())

	f.keepAlive("B", types.PeerSummary{ActiveNeighbors: 10})
	replies := 0
	for i := 0; i < 1000; i++ {
		before := f.sender.Count()
		f.ws.NewIncomingMessage(context.Background(), types.NewSubStateReqMsg("B", uint32(i+2), ""), "10.0.0.2", "eth0")
		replies += f.sender.Count() - before
	}
	assert.InDelta(t, 100, replies, 50)
}

// TestSubStateReq_ReplySentOutsideLocks 应答发送阻塞时，周期维护与其他入站消息不受影响
func TestSubStateReq_ReplySentOutsideLocks(t *testing.T) {
	f := newFixture(t)
	f.ws.Subscribe("g")

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	f.sender.BroadcastFunc = func(ctx context.Context, msg interfaces.Message) error {
		entered <- struct{}{}
		<-release
		return nil
	}
	defer close(release)

	go f.ws.NewIncomingMessage(context.Background(), types.NewSubStateReqMsg("B", 1, self), "10.0.0.2", "eth0")
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("应答未发送")
	}

	done := make(chan struct{})
	go func() {
		f.ws.UpdateNeighbors()
		f.data("C", "eth0", "10.0.0.3")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("发送应答时持有锁")
	}
	assert.True(t, f.ws.IsActiveNeighbor("C"))
}

func TestRequestSubscriptionStates_TargetsOutdatedNeighbors(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ws.RequestSubscriptionStates(context.Background()))
	assert.Equal(t, 0, f.sender.Count())

	f.keepAlive("C", types.PeerSummary{SubscriptionStateCRC: 0x1234})
	f.keepAlive("B", types.PeerSummary{SubscriptionStateCRC: 0x4321})
	f.keepAlive("D", types.PeerSummary{SubscriptionStateCRC: f.ws.SubscriptionStateCRC()})

	require.NoError(t, f.ws.RequestSubscriptionStates(context.Background()))
	require.Equal(t, 1, f.sender.Count())
	assert.Equal(t, types.MsgSubStateReq, f.sender.Last().Type())
	assert.Equal(t, "B:C", f.sender.LastTargets())
	assert.False(t, f.ws.IsPeerUpToDate("B"))
	assert.True(t, f.ws.IsPeerUpToDate("D"))
}

// ============================================================================
//                              转发支持查询
// ============================================================================

func TestProbTarget_PrefersWellConnectedNeighbors(t *testing.T) {
	f := newFixture(t)
	f.keepAlive("B", types.PeerSummary{ActiveNeighbors: 5})
	f.keepAlive("C", types.PeerSummary{ActiveNeighbors: 5})
	f.keepAlive("D", types.PeerSummary{ActiveNeighbors: 1})

	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[f.ws.ProbTarget()]++
	}
	assert.InDelta(t, 1600, counts["B"]+counts["C"], 120)
	assert.InDelta(t, 400, counts["D"], 120)
	assert.InDelta(t, counts["B"], counts["C"], 200)

	assert.Equal(t, "D", f.ws.ProbTarget("B", "C"))
	assert.Equal(t, "", f.ws.ProbTarget("B", "C", "D"))
}

func TestIsolatedNeighbors(t *testing.T) {
	f := newFixture(t)
	f.keepAlive("B", types.PeerSummary{NeighborIDs: []string{self, "C"}})
	f.keepAlive("C", types.PeerSummary{NeighborIDs: []string{self, "B"}})
	f.keepAlive("D", types.PeerSummary{NeighborIDs: []string{self}})

	assert.Equal(t, []string{"D"}, f.ws.IsolatedNeighbors())

	g := newFixture(t)
	g.data("B", "eth0", "10.0.0.2")
	g.data("C", "eth0", "10.0.0.3")
	assert.Empty(t, g.ws.IsolatedNeighbors(), "全部孤立时本地是唯一中继")
}

func TestStatefulForwardProbability_Bounds(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 100, f.ws.StatefulForwardProbability("unknown"))

	for n := 0; n <= 50; n++ {
		id := fmt.Sprintf("P%d", n)
		f.keepAlive(id, types.PeerSummary{ActiveNeighbors: uint16(n)})
		p := f.ws.StatefulForwardProbability(id)
		assert.GreaterOrEqual(t, p, 10)
		assert.LessOrEqual(t, p, 100)
	}
	assert.Equal(t, 25, f.ws.StatefulForwardProbability("P4"))
	assert.Equal(t, 10, f.ws.StatefulForwardProbability("P50"))
}

func TestWorldState_FallbackForwarding(t *testing.T) {
	f := newFixture(t)
	msg := types.NewDataMsg("B", "B", "g", "m1")

	assert.Equal(t, types.StrategyStateful, f.ws.ForwardingStrategy(msg))
	assert.Nil(t, f.ws.TargetNodes(msg))
}

// ============================================================================
//                              keep-alive 与统计
// ============================================================================

func TestKeepAliveMsg_CarriesLocalSummary(t *testing.T) {
	f := newFixture(t)
	f.data("C", "eth0", "10.0.0.3")
	f.data("B", "eth0", "10.0.0.2")
	f.ws.Subscribe("g")
	f.ws.IncrementDataCacheStateSeqID()

	ka := f.ws.KeepAliveMsg()
	s := ka.Summary()

	assert.Equal(t, types.MsgWorldStateSeqID, ka.Type())
	assert.Equal(t, self, ka.SenderNodeID())
	assert.Equal(t, uint16(2), s.ActiveNeighbors)
	assert.Equal(t, types.NodeImportance(2), s.Importance)
	assert.Equal(t, f.ws.SubscriptionStateCRC(), s.SubscriptionStateCRC)
	assert.Equal(t, uint32(2), s.TopologyStateSeqID)
	assert.Equal(t, uint32(1), s.SubscriptionStateSeqID)
	assert.Equal(t, uint32(1), s.DataCacheStateSeqID)
	assert.Equal(t, []string{"B", "C"}, s.NeighborIDs)
	assert.Equal(t, uint16(2), s.NodesInConnectivityHistory)

	next := f.ws.KeepAliveMsg()
	assert.Greater(t, next.CtrlMsgSeqNo(), ka.CtrlMsgSeqNo())
}

func TestRepetitiveness(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, uint8(0), f.ws.Repetitiveness())

	f.data("B", "eth0", "10.0.0.2")
	f.clk.Add(31 * time.Second)
	f.ws.UpdateNeighbors()
	f.data("B", "eth0", "10.0.0.2")
	f.data("C", "eth0", "10.0.0.3")

	// 三次接触，其中一次重复：round(100*1/3)
	assert.Equal(t, uint8(33), f.ws.Repetitiveness())
}

func TestIdentityAccessors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, self, f.ws.NodeID())
	f.ws.SetIP("192.168.1.1")
	assert.Equal(t, "192.168.1.1", f.ws.IP())

	require.NoError(t, f.ws.SetNodeImportance(0))
	assert.Equal(t, types.NodeImportance(0), f.ws.NodeImportance())
	assert.ErrorIs(t, f.ws.SetNodeImportance(8), ErrInvalidImportance)
}

func TestListenerRegistration(t *testing.T) {
	f := newFixture(t)

	_, err := f.ws.RegisterListener(nil)
	assert.ErrorIs(t, err, ErrNilListener)

	second := mocks.NewMockListener()
	id, err := f.ws.RegisterListener(second)
	require.NoError(t, err)

	f.data("B", "eth0", "10.0.0.2")
	require.NoError(t, f.ws.DeregisterListener(id))
	f.data("C", "eth0", "10.0.0.3")

	assert.Equal(t, []string{"new:B"}, second.Recorded())
	assert.Equal(t, []string{"new:B", "new:C"}, f.listener.Recorded())
	assert.ErrorIs(t, f.ws.DeregisterListener(id), ErrListenerNotFound)
}

func TestListener_CanQueryStateFromCallback(t *testing.T) {
	f := newFixture(t)

	var seen int
	f.listener.NewNeighborFunc = func(string, string, string) {
		// 回调在 mu 释放后执行，可以安全地读取状态
		seen = f.ws.NumberOfActiveNeighbors()
	}
	f.data("B", "eth0", "10.0.0.2")
	assert.Equal(t, 1, seen)
}

func TestMetrics_PeerCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := newFixture(t, WithMetrics(m))

	f.data("B", "eth0", "10.0.0.2")
	f.data("C", "eth0", "10.0.0.3")
	f.clk.Add(31 * time.Second)
	f.data("C", "eth0", "10.0.0.3")
	f.ws.UpdateNeighbors()

	expected := `
# HELP disservice_peerstate_dead_peers Peers in the dead-peer archive.
# TYPE disservice_peerstate_dead_peers gauge
disservice_peerstate_dead_peers 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "disservice_peerstate_dead_peers"))
}

func TestConcurrentAccess(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("N%d", (i*100+j)%17)
				f.keepAlive(id, types.PeerSummary{ActiveNeighbors: uint16(j % 5), NeighborIDs: []string{"N1"}})
				_ = f.ws.ProbTarget()
				_ = f.ws.AllNeighborNodeInfos()
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			f.ws.UpdateNeighbors()
			f.ws.Subscribe(fmt.Sprintf("g%d", j))
		}
	}()
	wg.Wait()

	assert.Equal(t, 17, f.ws.NumberOfActiveNeighbors())
}
