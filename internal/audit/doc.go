// Package audit relays flow outcome events to a host sink.
//
// The [Dispatcher] owns a bounded buffer and one relay goroutine. It never
// decides which events exist; the engine emits one [Event] per finished
// flow and this package only delivers it.
package audit
