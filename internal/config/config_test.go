package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/multierr"

	"github.com/dep2p/go-disservice/pkg/types"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	c := NewConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, 30*time.Second, c.WorldState.DeadPeerInterval)
	assert.Equal(t, types.RuleEqualSharing, c.Bandwidth.Rule)
	assert.Equal(t, uint32(1280), c.Bandwidth.MinGuaranteedBytesPerSec())
	assert.Equal(t, 10, c.Forwarding.StatefulMinProbability)
	assert.Equal(t, types.StrategyStateful, c.WorldState.FallbackStrategy)
}

func TestValidate_AggregatesAllErrors(t *testing.T) {
	c := NewConfig()
	c.Node.Importance = 9
	c.Node.PeerStateType = "mesh"
	c.WorldState.DeadPeerInterval = 0
	c.Topology.AgeParam = 1.5
	c.Bandwidth.Rule = 42

	err := c.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 5)

	var ve *ValidationError
	require.True(t, errors.As(errs[0], &ve))
	assert.Equal(t, "Node.Importance", ve.Field)
}

func TestForwardingConfig_Enabled(t *testing.T) {
	c := DefaultForwardingConfig()
	c.EnableSearchMsgs = false

	assert.True(t, c.Enabled(types.MsgData))
	assert.False(t, c.Enabled(types.MsgSearch))
	assert.False(t, c.Enabled(types.MsgWorldStateSeqID), "控制类消息永不转发")
}

func TestLoadReader_OverridesDefaults(t *testing.T) {
	yaml := `
aci:
  disService:
    nodeUUID: node-A
    nodeImportance: 2
    nodeBandwidth: HIGH
    peerState:
      type: worldstate
    worldstate:
      deadPeerInterval: 5000
    forwarding:
      strategy: flooding
      enable:
        dataMsgs: false
        targetedMsgs: false
      history:
        ttl: 1500
    bandwidthSharing:
      rule: 2
      minGuaranteedBandwidth: 20
`
	c, err := LoadReader(strings.NewReader(yaml), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "node-A", c.Node.NodeID)
	assert.Equal(t, types.NodeImportance(2), c.Node.Importance)
	assert.Equal(t, types.BandwidthHigh, c.Node.Bandwidth)
	assert.Equal(t, PeerStateWorldState, c.Node.PeerStateType)
	assert.Equal(t, 5*time.Second, c.WorldState.DeadPeerInterval)
	assert.Equal(t, types.StrategyFlooding, c.WorldState.FallbackStrategy)
	assert.False(t, c.Forwarding.EnableDataMsgs)
	assert.False(t, c.Forwarding.EnableTargetedMsgs)
	assert.True(t, c.Forwarding.EnableSearchMsgs)
	assert.Equal(t, 1500*time.Millisecond, c.Forwarding.HistoryTTL)
	assert.Equal(t, types.RuleProportionalSharing, c.Bandwidth.Rule)
	assert.Equal(t, uint32(20), c.Bandwidth.MinGuaranteedKbps)

	// 未设置的键保持默认
	assert.Equal(t, DefaultProbContact, c.Topology.ProbContact)
	assert.Equal(t, DefaultUpdateNeighborsInterval, c.Maintenance.UpdateNeighborsInterval)
}

func TestLoadReader_GeneratesNodeID(t *testing.T) {
	c, err := LoadReader(strings.NewReader("aci: {}\n"), "yaml")
	require.NoError(t, err)
	assert.Len(t, c.Node.NodeID, 36)
}

func TestLoadReader_RejectsInvalid(t *testing.T) {
	_, err := LoadReader(strings.NewReader("aci:\n  disService:\n    forwarding:\n      strategy: gossip\n"), "yaml")
	assert.Error(t, err)

	_, err = LoadReader(strings.NewReader("aci:\n  disService:\n    bandwidthSharing:\n      rule: 9\n"), "yaml")
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disservice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aci:\n  disService:\n    nodeUUID: from-file\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", c.Node.NodeID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestModule_ProvidesSubConfigs(t *testing.T) {
	var fwd ForwardingConfig
	var bw BandwidthConfig

	cfg := NewConfig()
	cfg.Bandwidth.Rule = types.RuleNoSharing

	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&fwd, &bw),
	)
	defer app.RequireStart().RequireStop()

	assert.True(t, fwd.EnableDataMsgs)
	assert.Equal(t, types.RuleNoSharing, bw.Rule)
}
