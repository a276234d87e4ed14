package events

// RawEvent is one event as it came off the bus: the subject it was published
// on plus its undecoded JSON payload. Engine event payloads carry no type
// field, so the topic is the only way for a consumer to tell them apart.
type RawEvent struct {
	Topic string
	Data  []byte
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers events on the returned channel. Call the returned
	// cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan RawEvent, func(), error)
	Close() error
}
