// services/realtime.go - in-process change notification broker
package services

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent mirrors the row-change payload subscribers receive: the event
// kind plus the new and old row states. New carries the full authoritative
// snapshot; consumers replace their projection wholesale, never field-merge.
type ChangeEvent struct {
	Table string      `json:"table"`
	Type  EventType   `json:"event_type"`
	RowID uint        `json:"row_id"`
	New   interface{} `json:"new,omitempty"`
	Old   interface{} `json:"old,omitempty"`
}

type subscriber struct {
	id    string
	table string
	rowID uint // 0 subscribes to the whole table
	ch    chan ChangeEvent
}

// Broker fans change events out to subscribers keyed by table and optional
// row filter. Constructed once in main and injected; writers publish after
// their database write commits.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*subscriber)}
}

const subscriberBufferSize = 16

// Subscribe registers a listener for table changes. rowID 0 receives every
// row's events. The returned id releases the subscription via Unsubscribe.
func (b *Broker) Subscribe(table string, rowID uint) (string, <-chan ChangeEvent) {
	sub := &subscriber{
		id:    uuid.New().String(),
		table: table,
		rowID: rowID,
		ch:    make(chan ChangeEvent, subscriberBufferSize),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	return sub.id, sub.ch
}

// Unsubscribe releases a listener and closes its channel.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// Publish delivers ev to every matching subscriber. Delivery is best-effort:
// a full buffer drops the event for that subscriber rather than blocking the
// write path.
func (b *Broker) Publish(ev ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.table != ev.Table {
			continue
		}
		if sub.rowID != 0 && sub.rowID != ev.RowID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Printf("realtime: dropping %s event for slow subscriber %s", ev.Type, sub.id)
		}
	}
}

// SubscriberCount reports active listeners, mostly for tests and debugging.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
