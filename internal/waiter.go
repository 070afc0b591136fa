package internal

// Coordinator exposes the waiter-registration contract (spec's Waiter
// Coordinator, §4.H) as free functions over an Entry's Body, so callers
// outside this package never need to reach into Body's lock directly.

// AwaitEntry registers ch against e's Body and returns true if the
// caller must block waiting for a signal. See Body.Await for the
// late-joiner semantics.
func AwaitEntry(e *Entry, ch chan Signal) bool {
	return e.Body.Await(ch)
}

// UpdateAwaitingConsumers finalizes e's Body and wakes every registered
// waiter. Pass SignalDone once the producer has appended the last byte
// of a successful response, or SignalCancelled if the upstream fetch
// failed or was aborted before completion.
func UpdateAwaitingConsumers(e *Entry, sig Signal) {
	switch sig {
	case SignalDone:
		e.Body.Complete()
	case SignalCancelled:
		e.Body.Cancel()
	}
}
