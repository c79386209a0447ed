package worldstate

import (
	"sort"

	"github.com/dep2p/go-disservice/pkg/interfaces"
	"github.com/dep2p/go-disservice/pkg/types"
)

// ============================================================================
//                              监听器事件
// ============================================================================

type eventKind uint8

const (
	evNewNeighbor eventKind = iota + 1
	evDeadNeighbor
	evNewLink
	evDroppedLink
	evUpdate
)

func (k eventKind) String() string {
	switch k {
	case evNewNeighbor:
		return "new_neighbor"
	case evDeadNeighbor:
		return "dead_neighbor"
	case evNewLink:
		return "new_link"
	case evDroppedLink:
		return "dropped_link"
	case evUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// event 在 mu 内收集、mu 外分发的监听器事件
type event struct {
	kind   eventKind
	nodeID string
	ip     string
	iface  string
	update types.PeerStateUpdate
}

// RegisterListener 注册状态监听器，返回监听器 ID
func (w *WorldState) RegisterListener(l interfaces.PeerStateListener) (int, error) {
	if l == nil {
		return 0, ErrNilListener
	}
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()

	id := w.nextListenerID
	w.nextListenerID++
	w.listeners[id] = l
	return id, nil
}

// DeregisterListener 注销监听器
func (w *WorldState) DeregisterListener(id int) error {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()

	if _, ok := w.listeners[id]; !ok {
		return ErrListenerNotFound
	}
	delete(w.listeners, id)
	return nil
}

// snapshotListeners 按注册顺序返回监听器
func (w *WorldState) snapshotListeners() []interfaces.PeerStateListener {
	w.listenersMu.RLock()
	defer w.listenersMu.RUnlock()

	ids := make([]int, 0, len(w.listeners))
	for id := range w.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]interfaces.PeerStateListener, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.listeners[id])
	}
	return out
}

// dispatch 按发现顺序通知所有监听器，调用方必须持有 notifyMu 且不持有 mu
func (w *WorldState) dispatch(events []event) {
	if len(events) == 0 {
		return
	}
	listeners := w.snapshotListeners()
	for _, ev := range events {
		w.metrics.ObservePeerEvent(ev.kind.String())
		for _, l := range listeners {
			switch ev.kind {
			case evNewNeighbor:
				l.NewNeighbor(ev.nodeID, ev.ip, ev.iface)
			case evDeadNeighbor:
				l.DeadNeighbor(ev.nodeID)
			case evNewLink:
				l.NewLinkToNeighbor(ev.nodeID, ev.ip, ev.iface)
			case evDroppedLink:
				l.DroppedLinkToNeighbor(ev.nodeID, ev.iface)
			case evUpdate:
				l.StateUpdateForPeer(ev.nodeID, ev.update)
			}
		}
	}
}
