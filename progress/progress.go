package progress

// Tracker receives progress events while an artifact moves through the pipeline.
type Tracker interface {
	OnEvent(any)
}

// NewTracker creates a Tracker from a typed callback function.
// Events of any other type are dropped, so one tracker can be handed to
// components that emit different event types.
func NewTracker[E any](fn func(E)) Tracker {
	return funcTracker(func(v any) {
		if e, ok := v.(E); ok {
			fn(e)
		}
	})
}

type funcTracker func(any)

func (f funcTracker) OnEvent(e any) { f(e) }

// Nop is a no-op tracker for callers that don't need progress.
var Nop Tracker = funcTracker(func(any) {})

// OrNop returns t, or Nop when t is nil.
func OrNop(t Tracker) Tracker {
	if t == nil {
		return Nop
	}
	return t
}
