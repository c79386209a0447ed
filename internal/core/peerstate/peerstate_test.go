package peerstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/core/metrics"
	"github.com/dep2p/go-disservice/internal/core/topology"
	"github.com/dep2p/go-disservice/internal/core/worldstate"
	"github.com/dep2p/go-disservice/internal/mocks"
	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/lib/log"
	"github.com/dep2p/go-disservice/pkg/types"
)

func nodeConfig(kind string) config.NodeConfig {
	n := config.DefaultNodeConfig()
	n.NodeID = "A"
	n.PeerStateType = kind
	return n
}

func TestNew_DispatchesOnType(t *testing.T) {
	log.Discard()
	ws := config.DefaultWorldStateConfig()
	topo := config.DefaultTopologyConfig()

	svc, err := New(nodeConfig(config.PeerStateWorldState), ws, topo)
	require.NoError(t, err)
	assert.IsType(t, &worldstate.WorldState{}, svc)
	_, isAger := svc.(Ager)
	assert.False(t, isAger)

	svc, err = New(nodeConfig(config.PeerStateTopology), ws, topo)
	require.NoError(t, err)
	assert.IsType(t, &topology.TopologyWorldState{}, svc)
	_, isAger = svc.(Ager)
	assert.True(t, isAger)

	_, err = New(nodeConfig("mesh"), ws, topo)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNew_PropagatesConstructionError(t *testing.T) {
	n := nodeConfig(config.PeerStateWorldState)
	n.Importance = 9
	svc, err := New(n, config.DefaultWorldStateConfig(), config.DefaultTopologyConfig())
	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestService_BehavesAsPeerState(t *testing.T) {
	log.Discard()
	for _, kind := range []string{config.PeerStateWorldState, config.PeerStateTopology} {
		t.Run(kind, func(t *testing.T) {
			svc, err := New(nodeConfig(kind), config.DefaultWorldStateConfig(), config.DefaultTopologyConfig())
			require.NoError(t, err)

			var ps interfaces.PeerState = svc
			ps.NewIncomingMessage(context.Background(), types.NewDataMsg("B", "B", "g", "m"), "10.0.0.2", "eth0")

			assert.Equal(t, 1, ps.NumberOfActiveNeighbors())
			assert.True(t, ps.IsActiveNeighbor("B"))
			assert.Equal(t, uint16(1), ps.KeepAliveMsg().Summary().ActiveNeighbors)
		})
	}
}

func TestModule_ProvidesPeerState(t *testing.T) {
	log.Discard()
	cfg := config.NewConfig()
	cfg.Node.NodeID = "A"

	var (
		ps  interfaces.PeerState
		fwd interfaces.ForwardingStateProvider
		svc Service
	)
	sender := mocks.NewMockSender()

	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() interfaces.MessageSender { return sender }),
		config.Module(),
		metrics.Module,
		Module(),
		fx.Populate(&ps, &fwd, &svc),
	)
	defer app.RequireStart().RequireStop()

	assert.Equal(t, "A", ps.NodeID())
	assert.Equal(t, "A", fwd.NodeID())
	assert.Same(t, svc, ps)

	svc.NewIncomingMessage(context.Background(), types.NewWorldStateSeqIDMsg("B", 1, types.PeerSummary{SubscriptionStateCRC: 7}), "10.0.0.2", "eth0")
	require.NoError(t, svc.RequestSubscriptionStates(context.Background()))
	assert.Equal(t, 1, sender.Count())
}
