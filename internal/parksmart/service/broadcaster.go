package service

// Broadcaster fans an event out to connected realtime observers.
// Emission is fire-and-forget: no acknowledgment, no replay, and no
// delivery guarantee for observers that are disconnected or slow.
type Broadcaster interface {
	Publish(event string, payload any)
}

// NopBroadcaster discards all events.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, any) {}
