// Package events fans out notifications to any number of listeners
package events

import (
	"context"

	"bitbucket.org/kleinnic74/geosnap/logging"
	"go.uber.org/zap"
)

const (
	publishBuffer      = 64
	subscriptionBuffer = 16
)

// Event types published by the application
const (
	CollectionChanged = "collection"
	AddressResolved   = "address"
	PhotoRemoved      = "removed"
)

type Event struct {
	Type   string      `json:"type"`
	Action string      `json:"action,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Stream distributes published events to its listeners. Publish never
// blocks: events are dropped for listeners that do not keep up.
type Stream struct {
	channel chan Event

	subcriptions chan *subscription
	unsubcribes  chan *subscription
	done         chan struct{}
}

type subscription struct {
	events chan Event
}

func NewStream() *Stream {
	return &Stream{
		channel:      make(chan Event, publishBuffer),
		subcriptions: make(chan *subscription),
		unsubcribes:  make(chan *subscription),
		done:         make(chan struct{}),
	}
}

// Publish queues e for dispatching, returns false if the queue is full
func (s *Stream) Publish(e Event) bool {
	select {
	case s.channel <- e:
		return true
	default:
		return false
	}
}

// Listen calls f for every event until ctx is done or the stream stops
func (s *Stream) Listen(ctx context.Context, f func(e Event)) {
	sub := &subscription{events: make(chan Event, subscriptionBuffer)}
	select {
	case s.subcriptions <- sub:
	case <-s.done:
		return
	case <-ctx.Done():
		return
	}
	for {
		select {
		case e := <-sub.events:
			f(e)
		case <-s.done:
			return
		case <-ctx.Done():
			select {
			case s.unsubcribes <- sub:
			case <-s.done:
			}
			return
		}
	}
}

// Dispatch runs the distribution loop until ctx is done
func (s *Stream) Dispatch(ctx context.Context) {
	logger := logging.From(ctx).Named("events")
	defer close(s.done)
	var subscribers []*subscription
	for {
		select {
		case sub := <-s.subcriptions:
			subscribers = append(subscribers, sub)
		case sub := <-s.unsubcribes:
			for i := range subscribers {
				if subscribers[i] == sub {
					subscribers = append(subscribers[:i], subscribers[i+1:]...)
					break
				}
			}
		case e := <-s.channel:
			for _, sub := range subscribers {
				select {
				case sub.events <- e:
				default:
					logger.Warn("Dropping event for slow listener", zap.String("type", e.Type))
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
