// Package events is the in-process activity channel for the family feed.
// It replaces the original UI's global toast state with an explicit pub/sub
// the websocket handler subscribes to. Reservation events are routed around
// the item's owner so the feed cannot become a spoiler channel.
package events

import "sync"

const (
	TypeItemAdded         = "item_added"
	TypeWishlistPublished = "wishlist_published"
	TypeItemReserved      = "item_reserved"
	TypeItemPurchased     = "item_purchased"
)

// Event is one family activity entry.
type Event struct {
	Type      string `json:"type"`
	ItemID    uint   `json:"item_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
}

type subscriber struct {
	userID uint
	ch     chan Event
}

// Hub fans events out to per-family subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[*subscriber]struct{})}
}

// Subscribe registers a listener for familyID's events. The returned cancel
// func must be called when the listener goes away.
func (h *Hub) Subscribe(familyID, userID uint) (<-chan Event, func()) {
	sub := &subscriber{userID: userID, ch: make(chan Event, 16)}

	h.mu.Lock()
	if h.subs[familyID] == nil {
		h.subs[familyID] = make(map[*subscriber]struct{})
	}
	h.subs[familyID][sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, exists := h.subs[familyID]; exists {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subs, familyID)
			}
		}
		h.mu.Unlock()
	}

	return sub.ch, cancel
}

// Publish delivers ev to every subscriber of familyID. Slow listeners drop
// events rather than block publishers.
func (h *Hub) Publish(familyID uint, ev Event) {
	h.publish(familyID, 0, ev)
}

// PublishExcept delivers ev to every subscriber of familyID except
// exceptUserID. Used for reservation activity, where the item's owner must
// not see the event.
func (h *Hub) PublishExcept(familyID, exceptUserID uint, ev Event) {
	h.publish(familyID, exceptUserID, ev)
}

func (h *Hub) publish(familyID, exceptUserID uint, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[familyID] {
		if exceptUserID != 0 && sub.userID == exceptUserID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
