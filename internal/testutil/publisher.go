package testutil

import (
	"sync"

	"github.com/kingsgambit/kingsgambit-go/internal/model"
)

// PublishedEvent records one Publish call made against a CapturePublisher
type PublishedEvent struct {
	RoomID  model.RoomID
	Event   any
	Exclude model.ChannelID
}

// CapturePublisher records published events for assertion in tests.
// It satisfies the coordinator Publisher interfaces.
type CapturePublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// NewCapturePublisher creates an empty CapturePublisher
func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

// Publish records the event
func (p *CapturePublisher) Publish(roomID model.RoomID, event any, exclude model.ChannelID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{RoomID: roomID, Event: event, Exclude: exclude})
}

// Events returns a copy of the recorded events
func (p *CapturePublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Last returns the most recently recorded event, or nil if none
func (p *CapturePublisher) Last() *PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	ev := p.events[len(p.events)-1]
	return &ev
}

// Reset discards all recorded events
func (p *CapturePublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
