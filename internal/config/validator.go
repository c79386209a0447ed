package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/dep2p/go-disservice/pkg/types"
)

// ValidationError 配置校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config [%s]: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate 校验整棵配置树，所有错误合并返回
func (c *Config) Validate() error {
	var err error

	if !c.Node.Importance.Valid() {
		err = multierr.Append(err, invalid("Node.Importance", "must be in [0,7], got %d", c.Node.Importance))
	}
	if c.Node.Bandwidth > types.BandwidthVeryHigh {
		err = multierr.Append(err, invalid("Node.Bandwidth", "unknown class %d", c.Node.Bandwidth))
	}
	switch c.Node.PeerStateType {
	case PeerStateWorldState, PeerStateTopology:
	default:
		err = multierr.Append(err, invalid("Node.PeerStateType", "unknown type %q", c.Node.PeerStateType))
	}

	if c.WorldState.DeadPeerInterval <= 0 {
		err = multierr.Append(err, invalid("WorldState.DeadPeerInterval", "must be positive"))
	}
	if c.WorldState.ConnectivityHistoryWindow <= 0 {
		err = multierr.Append(err, invalid("WorldState.ConnectivityHistoryWindow", "must be positive"))
	}
	if c.WorldState.FallbackStrategy == types.StrategyTopology {
		err = multierr.Append(err, invalid("WorldState.FallbackStrategy", "topology cannot be a fallback"))
	}

	err = multierr.Append(err, c.Topology.validate())

	if c.Forwarding.HistoryTTL <= 0 {
		err = multierr.Append(err, invalid("Forwarding.HistoryTTL", "must be positive"))
	}
	if p := c.Forwarding.StatefulMinProbability; p < 0 || p > 100 {
		err = multierr.Append(err, invalid("Forwarding.StatefulMinProbability", "must be in [0,100], got %d", p))
	}

	if !c.Bandwidth.Rule.Known() {
		err = multierr.Append(err, invalid("Bandwidth.Rule", "unknown sharing rule %d", c.Bandwidth.Rule))
	}

	m := c.Maintenance
	if m.UpdateNeighborsInterval < 0 || m.BandwidthInterval < 0 ||
		m.SubscriptionStateInterval < 0 || m.AgingInterval < 0 {
		err = multierr.Append(err, invalid("Maintenance", "intervals must not be negative"))
	}

	return err
}

func (t TopologyConfig) validate() error {
	var err error
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"Topology.ProbContact", t.ProbContact},
		{"Topology.ProbThreshold", t.ProbThreshold},
		{"Topology.TransitiveParam", t.TransitiveParam},
		{"Topology.AgeParam", t.AgeParam},
	} {
		if p.v < 0 || p.v > 1 {
			err = multierr.Append(err, invalid(p.name, "must be in [0,1], got %v", p.v))
		}
	}
	if t.AgingUnit <= 0 {
		err = multierr.Append(err, invalid("Topology.AgingUnit", "must be positive"))
	}
	return err
}
