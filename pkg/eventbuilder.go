package evb

// EventBuilder clusters a time-ordered hit stream into events. A hit belongs
// to the current event if its timestamp lies within the coincidence window of
// the event's first hit; the window is anchored to the first hit, not to the
// most recent one. Input hits must arrive in non-decreasing timestamp order,
// that guarantee is the merge loop's responsibility.
type EventBuilder struct {
	coincidenceWindow float64 // ns
	event             []Hit
	readyEvent        []Hit
	eventReady        bool
}

func NewEventBuilder(windowNS float64) *EventBuilder {
	return &EventBuilder{coincidenceWindow: windowNS}
}

// PushHit adds a hit to the current event. If the hit falls outside the
// window the current event is staged as ready and the hit starts the next
// one. The caller must drain a ready event before pushing hits that could
// complete another, or the staged event is overwritten.
func (b *EventBuilder) PushHit(hit Hit) {
	if len(b.event) == 0 {
		b.event = append(b.event, hit)
		return
	}

	if hit.Timestamp-b.event[0].Timestamp < b.coincidenceWindow {
		b.event = append(b.event, hit)
	} else {
		b.readyEvent = b.event
		b.eventReady = true
		b.event = []Hit{hit}
	}
}

func (b *EventBuilder) EventReady() bool {
	return b.eventReady
}

// ReadyEvent hands off the staged event and clears the ready flag.
func (b *EventBuilder) ReadyEvent() []Hit {
	b.eventReady = false
	return b.readyEvent
}
