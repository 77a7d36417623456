package node

import "github.com/luxfi/liun/pkg/channel"

// Status classifies a channel by recent activity, mirroring how a node
// tracks which peer links are worth spending signing budget on.
type Status int

const (
	StatusActive Status = iota
	StatusIdle
	StatusExpired
)

// ChannelTable manages a node's set of peer channels, keyed by peer ID.
type ChannelTable struct {
	channels map[int]channel.Channel
	status   map[int]Status
}

// NewChannelTable creates an empty table.
func NewChannelTable() *ChannelTable {
	return &ChannelTable{
		channels: make(map[int]channel.Channel),
		status:   make(map[int]Status),
	}
}

// Add registers ch under peerID, replacing any existing channel for that
// peer.
func (t *ChannelTable) Add(peerID int, ch channel.Channel) {
	t.channels[peerID] = ch
	t.status[peerID] = StatusActive
}

// Get returns the channel to peerID, or nil if none exists.
func (t *ChannelTable) Get(peerID int) channel.Channel {
	return t.channels[peerID]
}

// Remove closes and drops the channel to peerID, if any.
func (t *ChannelTable) Remove(peerID int) {
	if ch, ok := t.channels[peerID]; ok {
		ch.Close()
		delete(t.channels, peerID)
		delete(t.status, peerID)
	}
}

// MarkIdle flags peerID's channel as idle without closing it.
func (t *ChannelTable) MarkIdle(peerID int) {
	if _, ok := t.channels[peerID]; ok {
		t.status[peerID] = StatusIdle
	}
}

// Active returns the peer IDs whose channels are currently active.
func (t *ChannelTable) Active() []int {
	return t.withStatus(StatusActive)
}

// Idle returns the peer IDs whose channels are currently idle.
func (t *ChannelTable) Idle() []int {
	return t.withStatus(StatusIdle)
}

func (t *ChannelTable) withStatus(want Status) []int {
	var out []int
	for peerID, s := range t.status {
		if s == want {
			out = append(out, peerID)
		}
	}
	return out
}

// Count returns the number of tracked channels.
func (t *ChannelTable) Count() int {
	return len(t.channels)
}
