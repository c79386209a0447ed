package config

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/dep2p/go-disservice/pkg/types"
)

// 配置键
const (
	KeyNodeUUID       = "aci.disService.nodeUUID"
	KeyNodeIP         = "aci.disService.nodeIP"
	KeyNodeImportance = "aci.disService.nodeImportance"
	KeyNodeBandwidth  = "aci.disService.nodeBandwidth"
	KeyNodeMemory     = "aci.disService.nodeMemory"
	KeyPeerStateType  = "aci.disService.peerState.type"

	KeyDeadPeerInterval            = "aci.disService.worldstate.deadPeerInterval"
	KeyConnectivityHistoryWindow   = "aci.disService.worldstate.connectivityHistoryWindow"
	KeyConnectivityHistoryCapacity = "aci.disService.worldstate.connectivityHistoryCapacity"

	KeyForwardDataMsgs           = "aci.disService.forwarding.enable.dataMsgs"
	KeyForwardDataRequestMsgs    = "aci.disService.forwarding.enable.dataRequestMsgs"
	KeyForwardChunkQueryMsgs     = "aci.disService.forwarding.enable.chunkQueryMsgs"
	KeyForwardChunkQueryHitsMsgs = "aci.disService.forwarding.enable.chunkQueryHitsMsgs"
	KeyForwardSearchMsgs         = "aci.disService.forwarding.enable.searchMsgs"
	KeyForwardSearchReplyMsgs    = "aci.disService.forwarding.enable.searchReplyMsgs"
	KeyForwardTargetedMsgs       = "aci.disService.forwarding.enable.targetedMsgs"
	KeyForwardingStrategy        = "aci.disService.forwarding.strategy"
	KeyForwardingHistoryTTL      = "aci.disService.forwarding.history.ttl"
	KeyForwardingHistoryCapacity = "aci.disService.forwarding.history.capacity"
	KeyStatefulMinProbability    = "aci.disService.forwarding.stateful.minProbability"

	KeyProbContact     = "aci.disService.topology.probContact"
	KeyProbThreshold   = "aci.disService.topology.probThreshold"
	KeyTransitiveParam = "aci.disService.topology.transitiveParam"
	KeyAgeParam        = "aci.disService.topology.ageParam"
	KeyAgingUnit       = "aci.disService.topology.agingUnit"

	KeySharingRule       = "aci.disService.bandwidthSharing.rule"
	KeyMinGuaranteedKbps = "aci.disService.bandwidthSharing.minGuaranteedBandwidth"

	KeyUpdateNeighborsInterval   = "aci.disService.maintenance.updateNeighborsInterval"
	KeyBandwidthInterval         = "aci.disService.maintenance.bandwidthInterval"
	KeySubscriptionStateInterval = "aci.disService.maintenance.subscriptionStateInterval"
	KeyAgingInterval             = "aci.disService.maintenance.agingInterval"
)

// Load 从配置文件加载（格式按扩展名识别），缺省键使用默认值
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return fromViper(v)
}

// LoadReader 从 reader 加载，format 如 "yaml"、"json"、"toml"
func LoadReader(r io.Reader, format string) (*Config, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	d := NewConfig()

	v.SetDefault(KeyNodeImportance, int(d.Node.Importance))
	v.SetDefault(KeyNodeBandwidth, d.Node.Bandwidth.String())
	v.SetDefault(KeyNodeMemory, int(d.Node.Memory))
	v.SetDefault(KeyPeerStateType, d.Node.PeerStateType)

	v.SetDefault(KeyDeadPeerInterval, millis(d.WorldState.DeadPeerInterval))
	v.SetDefault(KeyConnectivityHistoryWindow, millis(d.WorldState.ConnectivityHistoryWindow))
	v.SetDefault(KeyConnectivityHistoryCapacity, d.WorldState.ConnectivityHistoryCapacity)

	v.SetDefault(KeyForwardDataMsgs, d.Forwarding.EnableDataMsgs)
	v.SetDefault(KeyForwardDataRequestMsgs, d.Forwarding.EnableDataRequestMsgs)
	v.SetDefault(KeyForwardChunkQueryMsgs, d.Forwarding.EnableChunkQueryMsgs)
	v.SetDefault(KeyForwardChunkQueryHitsMsgs, d.Forwarding.EnableChunkQueryHitsMsgs)
	v.SetDefault(KeyForwardSearchMsgs, d.Forwarding.EnableSearchMsgs)
	v.SetDefault(KeyForwardSearchReplyMsgs, d.Forwarding.EnableSearchReplyMsgs)
	v.SetDefault(KeyForwardTargetedMsgs, d.Forwarding.EnableTargetedMsgs)
	v.SetDefault(KeyForwardingStrategy, d.WorldState.FallbackStrategy.String())
	v.SetDefault(KeyForwardingHistoryTTL, millis(d.Forwarding.HistoryTTL))
	v.SetDefault(KeyForwardingHistoryCapacity, d.Forwarding.HistoryCapacity)
	v.SetDefault(KeyStatefulMinProbability, d.Forwarding.StatefulMinProbability)

	v.SetDefault(KeyProbContact, d.Topology.ProbContact)
	v.SetDefault(KeyProbThreshold, d.Topology.ProbThreshold)
	v.SetDefault(KeyTransitiveParam, d.Topology.TransitiveParam)
	v.SetDefault(KeyAgeParam, d.Topology.AgeParam)
	v.SetDefault(KeyAgingUnit, millis(d.Topology.AgingUnit))

	v.SetDefault(KeySharingRule, int(d.Bandwidth.Rule))
	v.SetDefault(KeyMinGuaranteedKbps, d.Bandwidth.MinGuaranteedKbps)

	v.SetDefault(KeyUpdateNeighborsInterval, millis(d.Maintenance.UpdateNeighborsInterval))
	v.SetDefault(KeyBandwidthInterval, millis(d.Maintenance.BandwidthInterval))
	v.SetDefault(KeySubscriptionStateInterval, millis(d.Maintenance.SubscriptionStateInterval))
	v.SetDefault(KeyAgingInterval, millis(d.Maintenance.AgingInterval))

	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := NewConfig()

	c.Node.NodeID = v.GetString(KeyNodeUUID)
	if c.Node.NodeID == "" {
		c.Node.NodeID = uuid.NewString()
	}
	c.Node.IP = v.GetString(KeyNodeIP)
	c.Node.Importance = types.NodeImportance(v.GetUint(KeyNodeImportance))
	bw, err := types.ParseBandwidthClass(v.GetString(KeyNodeBandwidth))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyNodeBandwidth, err)
	}
	c.Node.Bandwidth = bw
	c.Node.Memory = uint8(v.GetUint(KeyNodeMemory))
	c.Node.PeerStateType = v.GetString(KeyPeerStateType)

	c.WorldState.DeadPeerInterval = durationMillis(v, KeyDeadPeerInterval)
	c.WorldState.ConnectivityHistoryWindow = durationMillis(v, KeyConnectivityHistoryWindow)
	c.WorldState.ConnectivityHistoryCapacity = v.GetInt(KeyConnectivityHistoryCapacity)
	strategy, err := types.ParseForwardingStrategy(v.GetString(KeyForwardingStrategy))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyForwardingStrategy, err)
	}
	c.WorldState.FallbackStrategy = strategy

	c.Forwarding.EnableDataMsgs = v.GetBool(KeyForwardDataMsgs)
	c.Forwarding.EnableDataRequestMsgs = v.GetBool(KeyForwardDataRequestMsgs)
	c.Forwarding.EnableChunkQueryMsgs = v.GetBool(KeyForwardChunkQueryMsgs)
	c.Forwarding.EnableChunkQueryHitsMsgs = v.GetBool(KeyForwardChunkQueryHitsMsgs)
	c.Forwarding.EnableSearchMsgs = v.GetBool(KeyForwardSearchMsgs)
	c.Forwarding.EnableSearchReplyMsgs = v.GetBool(KeyForwardSearchReplyMsgs)
	c.Forwarding.EnableTargetedMsgs = v.GetBool(KeyForwardTargetedMsgs)
	c.Forwarding.HistoryTTL = durationMillis(v, KeyForwardingHistoryTTL)
	c.Forwarding.HistoryCapacity = v.GetInt(KeyForwardingHistoryCapacity)
	c.Forwarding.StatefulMinProbability = v.GetInt(KeyStatefulMinProbability)

	c.Topology.ProbContact = v.GetFloat64(KeyProbContact)
	c.Topology.ProbThreshold = v.GetFloat64(KeyProbThreshold)
	c.Topology.TransitiveParam = v.GetFloat64(KeyTransitiveParam)
	c.Topology.AgeParam = v.GetFloat64(KeyAgeParam)
	c.Topology.AgingUnit = durationMillis(v, KeyAgingUnit)

	c.Bandwidth.Rule = types.SharingRule(v.GetUint(KeySharingRule))
	c.Bandwidth.MinGuaranteedKbps = v.GetUint32(KeyMinGuaranteedKbps)

	c.Maintenance.UpdateNeighborsInterval = durationMillis(v, KeyUpdateNeighborsInterval)
	c.Maintenance.BandwidthInterval = durationMillis(v, KeyBandwidthInterval)
	c.Maintenance.SubscriptionStateInterval = durationMillis(v, KeySubscriptionStateInterval)
	c.Maintenance.AgingInterval = durationMillis(v, KeyAgingInterval)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}

func durationMillis(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt64(key)) * time.Millisecond
}
