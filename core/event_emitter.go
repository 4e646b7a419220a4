package orchestration

import events "github.com/koscakluka/kuber-voice/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// safeEventEmitter shields orchestration state from panicking handlers.
func safeEventEmitter(handler func(events.Event)) eventEmitter {
	if handler == nil {
		return noopEventEmitter
	}

	return func(event events.Event) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("event handler panicked", "kind", string(event.Kind()), "panic", recovered)
			}
		}()
		handler(event)
	}
}
