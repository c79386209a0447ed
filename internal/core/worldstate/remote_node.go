package worldstate

import (
	"sort"
	"time"

	"github.com/dep2p/go-disservice/pkg/types"
)

// link 到邻居的一条链路，按接口区分
type link struct {
	iface     string
	ip        string
	lastHeard time.Time
}

// remoteNode 节点图中的一个节点（RemoteNodeInfo）
//
// 任一时刻只属于 graph 或 dead 之一，跨容器移动是指针转移。
type remoteNode struct {
	id        string
	defaultIP string
	links     map[string]*link

	importance      types.NodeImportance
	bandwidth       types.BandwidthClass
	memory          uint8
	activeNeighbors uint16
	nodesInHistory  uint16
	repetitivity    uint8
	expectedCRC     uint16
	dataCacheSeqID  uint32

	// summarized 至少收到过一次 keep-alive
	summarized bool

	// lastHeard 最近一次直接收到该节点的消息，零值表示只通过他人得知
	lastHeard  time.Time
	occurrence uint32

	// edges 该节点上报的一跳邻居
	edges map[string]struct{}
}

func newRemoteNode(id string) *remoteNode {
	return &remoteNode{
		id:         id,
		links:      make(map[string]*link),
		importance: types.LowestImportance,
		edges:      make(map[string]struct{}),
	}
}

// touch 记录一次直接收到的消息，返回是否观察到新链路或默认 IP 变化
func (n *remoteNode) touch(ip, iface string, now time.Time) bool {
	n.lastHeard = now
	changed := false

	l, ok := n.links[iface]
	if !ok {
		l = &link{iface: iface}
		n.links[iface] = l
		changed = true
	}
	if l.ip != ip {
		l.ip = ip
		changed = true
	}
	l.lastHeard = now

	if ip != "" && n.defaultIP != ip {
		n.defaultIP = ip
		changed = true
	}
	return changed
}

func (n *remoteNode) alive(now time.Time, deadInterval time.Duration) bool {
	return !n.lastHeard.IsZero() && now.Sub(n.lastHeard) <= deadInterval
}

// getAndRemoveLinksToDrop 移除超时的链路，返回被移除的接口（按名称排序）
//
// 节点整体仍存活时才调用，至少保留最近的一条链路。
func (n *remoteNode) getAndRemoveLinksToDrop(now time.Time, deadInterval time.Duration) []string {
	var dropped []string
	for iface, l := range n.links {
		if now.Sub(l.lastHeard) > deadInterval {
			dropped = append(dropped, iface)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	if len(dropped) == len(n.links) {
		return nil
	}
	sort.Strings(dropped)

	droppedDefault := false
	for _, iface := range dropped {
		if n.links[iface].ip == n.defaultIP {
			droppedDefault = true
		}
		delete(n.links, iface)
	}
	if droppedDefault {
		var newest *link
		for _, l := range n.links {
			if newest == nil || l.lastHeard.After(newest.lastHeard) {
				newest = l
			}
		}
		n.defaultIP = newest.ip
	}
	return dropped
}

// dropLinks 节点失联时清空所有链路
func (n *remoteNode) dropLinks() {
	n.links = make(map[string]*link)
}

// applySummary 复制 keep-alive 摘要的标量字段，返回数据缓存序号是否变化
func (n *remoteNode) applySummary(s *types.PeerSummary) bool {
	n.activeNeighbors = s.ActiveNeighbors
	n.memory = s.Memory
	n.bandwidth = s.Bandwidth
	n.nodesInHistory = s.NodesInConnectivityHistory
	n.repetitivity = s.NodesRepetitivity
	if s.Importance.Valid() {
		n.importance = s.Importance
	}
	n.expectedCRC = s.SubscriptionStateCRC

	changed := n.dataCacheSeqID != s.DataCacheStateSeqID
	n.dataCacheSeqID = s.DataCacheStateSeqID
	n.summarized = true
	return changed
}

func (n *remoteNode) setEdges(ids []string) {
	n.edges = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" || id == n.id {
			continue
		}
		n.edges[id] = struct{}{}
	}
}

func (n *remoteNode) hasEdge(id string) bool {
	_, ok := n.edges[id]
	return ok
}

func (n *remoteNode) snapshot(groups []string) types.PeerInfo {
	info := types.PeerInfo{
		NodeID:                       n.id,
		DefaultIP:                    n.defaultIP,
		Importance:                   n.importance,
		Bandwidth:                    n.bandwidth,
		Memory:                       n.memory,
		ActiveNeighbors:              n.activeNeighbors,
		NodesInConnectivityHistory:   n.nodesInHistory,
		NodesRepetitivity:            n.repetitivity,
		ExpectedSubscriptionStateCRC: n.expectedCRC,
		DataCacheStateSeqID:          n.dataCacheSeqID,
		LastHeard:                    n.lastHeard,
		Occurrence:                   n.occurrence,
	}
	if len(groups) > 0 {
		info.Groups = append([]string(nil), groups...)
	}

	ifaces := make([]string, 0, len(n.links))
	for iface := range n.links {
		ifaces = append(ifaces, iface)
	}
	sort.Strings(ifaces)
	for _, iface := range ifaces {
		l := n.links[iface]
		info.Links = append(info.Links, types.LinkInfo{Interface: l.iface, IP: l.ip, LastHeard: l.lastHeard})
	}

	for id := range n.edges {
		info.Neighbors = append(info.Neighbors, id)
	}
	sort.Strings(info.Neighbors)
	return info
}
