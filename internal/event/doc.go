// Package event provides a synchronous pub-sub bus used as the observer
// mechanism between the view store and the dashboard.
//
// The store publishes one event per mutation after releasing its lock.
// Subscribers (the TUI model, the file watcher's logger) react by
// re-reading the store; events carry identifiers only, never state.
//
//	bus := event.NewBus(logger)
//	id := bus.Subscribe(event.TypeViewSelected, func(e event.Event) {
//	    sel := e.(event.ViewEvent)
//	    logger.Info("selected", "view", sel.ViewKey)
//	})
//	defer bus.Unsubscribe(id)
//
// Handlers run synchronously on the publisher's goroutine and are protected
// against panics: one failing handler does not stop delivery to the rest.
package event
