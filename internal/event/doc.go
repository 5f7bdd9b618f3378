/*
Package event provides a type-safe pub/sub bus for translation
lifecycle events.

Publishers emit events and subscribers react to them without direct
dependencies. The bus is built on watermill's gochannel transport
while keeping direct-call dispatch, so event payloads stay typed end
to end.

# Event Types

Translation events:
  - translation.started: a translation began
  - translation.content: accumulated visible text grew
  - translation.reasoning: accumulated reasoning text grew
  - translation.done: a translation finished
  - translation.error: a translation failed
  - translation.cancelled: a translation was cancelled

History events:
  - history.appended: a record was stored
  - history.removed: a record or the whole history was deleted

Other:
  - settings.changed: a settings value was updated
  - notification: a user-facing notification was raised

# Usage

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.TranslationDone, func(e event.Event) {
		data := e.Data.(event.TranslationDoneData)
		fmt.Println(data.Text)
	})
	defer unsubscribe()

	bus.PublishSync(event.Event{
		Type: event.TranslationDone,
		Data: event.TranslationDoneData{ID: id, Text: text},
	})

# Delivery Semantics

Publish delivers asynchronously, one goroutine per subscriber, with no
ordering guarantee across events. PublishSync delivers in the calling
goroutine and returns only after every subscriber has run; streaming
progress uses it so subscribers observe content in emission order.

Subscribers called through PublishSync must complete quickly and must
not publish re-entrantly or block on the publisher.

# Thread Safety

All bus operations are safe for concurrent use.
*/
package event
